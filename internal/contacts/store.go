package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTable is returned when the stored table does not have the
// expected structure.
var ErrMalformedTable = errors.New("malformed contact table")

// Store reads and rewrites the whole contact table.
type Store interface {
	Load(ctx context.Context) ([]Contact, error)
	Save(ctx context.Context, list []Contact) error
	Close() error
}

// Locker is implemented by stores that can serialise read-modify-write cycles.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Open returns the store for the named backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendCSV:
		return NewCSV(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported contacts backend: %s", backend)
	}
}

// Update loads the table, hands it to fn and saves it when fn reports a
// change. When the store implements Locker the whole cycle runs under the lock.
func Update(ctx context.Context, s Store, fn func(list []Contact) (bool, error)) (bool, error) {
	if locker, ok := s.(Locker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return false, fmt.Errorf("lock contacts: %w", err)
		}
		defer unlock()
	}

	list, err := s.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load contacts: %w", err)
	}

	changed, err := fn(list)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if err := s.Save(ctx, list); err != nil {
		return false, fmt.Errorf("save contacts: %w", err)
	}

	return true, nil
}
