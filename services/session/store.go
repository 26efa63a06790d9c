// File: services/session/store.go
package session

import (
	"context"
	"errors"
	"time"

	"moveline/models"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrSessionExists = errors.New("session already exists")
	// ErrConflict is returned by mutators that detect a concurrent commit.
	ErrConflict = errors.New("session changed concurrently")
)

// Mutator edits a private copy of a session. Returning an error discards the
// copy and leaves the stored session untouched.
type Mutator func(s *models.Session) error

// Store is the keyed session state shared by concurrent webhook handlers.
// Every mutation of one session id is serialized by the store; callers never
// see or hold its locks.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, id string, fn Mutator) (*models.Session, error)
	Remove(ctx context.Context, id string) error
	// Idle lists sessions whose last activity is before the cutoff.
	Idle(ctx context.Context, before time.Time) ([]string, error)
	List(ctx context.Context) ([]*models.Session, error)
}

// ExpectVersion wraps fn so it only runs against the version the caller
// read; otherwise it fails with ErrConflict.
func ExpectVersion(version int64, fn Mutator) Mutator {
	return func(s *models.Session) error {
		if s.Version != version {
			return ErrConflict
		}
		return fn(s)
	}
}
