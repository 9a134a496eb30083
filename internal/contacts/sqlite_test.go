package contacts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	list := []Contact{
		{Name: "Monisha", Email: "monisha@example.com", Category: Student, Status: "Pending"},
		{Name: "Ajay", Email: "ajay@example.com", Category: Alumni, Status: Joined, LastSent: "2024-01-05"},
		{Name: "Kanya", Email: "kanya@example.com", Category: Student, Status: Pending, LastSent: "garbage"},
	}
	require.NoError(t, store.Save(ctx, list))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, loaded)

	saved, err := Update(ctx, store, func(list []Contact) (bool, error) {
		list[0].Status = Joined
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, saved)

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "Monisha", loaded[0].Name)
	assert.True(t, loaded[0].IsJoined())
	assert.Equal(t, "Kanya", loaded[2].Name)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}
