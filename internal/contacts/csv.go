package contacts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/mitchellh/mapstructure"
)

const lockRetryDelay = 50 * time.Millisecond

// CSVStore keeps the table in a flat CSV file with a header row.
type CSVStore struct {
	path string

	mu   sync.Mutex
	lock *flock.Flock
}

// NewCSV returns a store backed by the CSV file at path.
func NewCSV(path string) (*CSVStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("contacts path is required")
	}

	return &CSVStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *CSVStore) Path() string { return s.path }

// Lock excludes other goroutines and other processes updating the same file.
func (s *CSVStore) Lock(ctx context.Context) (func(), error) {
	s.mu.Lock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !locked {
		s.mu.Unlock()
		return nil, fmt.Errorf("could not acquire %s", s.lock.Path())
	}

	return func() {
		_ = s.lock.Unlock()
		s.mu.Unlock()
	}, nil
}

func (s *CSVStore) Load(_ context.Context) ([]Contact, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return decode(file)
}

// Save writes a sibling temp file and renames it over the table.
func (s *CSVStore) Save(_ context.Context, list []Contact) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".contacts-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, list); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

func (s *CSVStore) Close() error { return nil }

func decode(r io.Reader) ([]Contact, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: header row is missing", ErrMalformedTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, column := range Columns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("%w: column %q is missing", ErrMalformedTable, column)
		}
	}

	list := make([]Contact, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}

		row := make(map[string]string, len(Columns))
		for _, column := range Columns {
			row[column] = record[index[column]]
		}

		var contact Contact
		if err := mapstructure.Decode(row, &contact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}

		list = append(list, contact)
	}

	return list, nil
}

func encode(w io.Writer, list []Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return err
	}

	for _, contact := range list {
		if err := writer.Write(contact.record()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
