package contacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `name,email,type,status,last_sent
Prasheetha s,prasheetha@example.com,student,Pending,
Ajay,ajay@example.com,alumni,joined,
Monisha,monisha@example.com,student,pending,2024-01-05
Kanya,kanya@example.com,student,pending,not-a-date
`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVStoreLoad(t *testing.T) {
	store, err := NewCSV(writeTable(t, sampleTable))
	require.NoError(t, err)

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)

	assert.Equal(t, Contact{
		Name:     "Prasheetha s",
		Email:    "prasheetha@example.com",
		Category: Student,
		Status:   "Pending",
	}, list[0])
	assert.True(t, list[0].IsPending())
	assert.True(t, list[1].IsJoined())
	assert.Equal(t, "2024-01-05", list[2].LastSent)
	assert.Equal(t, "not-a-date", list[3].LastSent)
}

func TestCSVStoreLoadReordersColumnsByHeader(t *testing.T) {
	store, err := NewCSV(writeTable(t, "\ufeffstatus,type,name,last_sent,email\npending,staff,Riyas,,riyas@example.com\n"))
	require.NoError(t, err)

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Riyas", list[0].Name)
	assert.Equal(t, Staff, list[0].Category)
	assert.Equal(t, "riyas@example.com", list[0].Email)
}

func TestCSVStoreLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "missing column", content: "name,email,type,status\nAjay,a@example.com,alumni,pending\n"},
		{name: "ragged row", content: "name,email,type,status,last_sent\nAjay,a@example.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewCSV(writeTable(t, tt.content))
			require.NoError(t, err)

			_, err = store.Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedTable), "unexpected error: %v", err)
		})
	}
}

func TestCSVStoreLoadMissingFile(t *testing.T) {
	store, err := NewCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCSVStoreSaveRoundTrip(t *testing.T) {
	path := writeTable(t, sampleTable)
	store, err := NewCSV(path)
	require.NoError(t, err)

	ctx := context.Background()
	list, err := store.Load(ctx)
	require.NoError(t, err)

	list[0].Status = Joined
	require.NoError(t, store.Save(ctx, list))

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, reloaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name,email,type,status,last_sent\n")
	assert.Contains(t, string(data), "Kanya,kanya@example.com,student,pending,not-a-date\n")

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".contacts-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestNewCSVRequiresPath(t *testing.T) {
	_, err := NewCSV("  ")
	assert.Error(t, err)
}

func TestOpenBackends(t *testing.T) {
	store, err := Open("", filepath.Join(t.TempDir(), "contacts.csv"))
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, store)

	_, err = Open("mongo", "x")
	assert.Error(t, err)
}
