package storage

import (
	"fmt"
	"strings"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
)

// Package storage provides durable persistence for the account registry,
// per-account following snapshots, and the scan checkpoint. Each write is
// atomic per key; there are no cross-key transactions and no locking beyond
// the single-process single-writer design.

// Store persists watcher state between scan cycles and process restarts.
type Store interface {
	Close() error

	// ReadRegistry returns the ordered tracked-account list. The bool is
	// false when no registry has ever been written.
	ReadRegistry() ([]domain.TrackedAccount, bool, error)
	WriteRegistry(accounts []domain.TrackedAccount) error

	// ReadSnapshot returns the last persisted following list for an account
	// id. The bool is false when the account has never been fetched.
	ReadSnapshot(accountID string) ([]domain.FollowRelation, bool, error)
	WriteSnapshot(accountID string, relations []domain.FollowRelation) error

	// ReadCheckpoint returns the scan checkpoint, or its zero value when
	// none has been written yet.
	ReadCheckpoint() (domain.Checkpoint, error)
	WriteCheckpoint(cp domain.Checkpoint) error
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// noopStore keeps nothing; useful for dry runs where re-notification is acceptable.
type noopStore struct{}

func (noopStore) Close() error                                             { return nil }
func (noopStore) ReadRegistry() ([]domain.TrackedAccount, bool, error)     { return nil, false, nil }
func (noopStore) WriteRegistry([]domain.TrackedAccount) error              { return nil }
func (noopStore) ReadSnapshot(string) ([]domain.FollowRelation, bool, error) {
	return nil, false, nil
}
func (noopStore) WriteSnapshot(string, []domain.FollowRelation) error { return nil }
func (noopStore) ReadCheckpoint() (domain.Checkpoint, error)          { return domain.Checkpoint{}, nil }
func (noopStore) WriteCheckpoint(domain.Checkpoint) error             { return nil }
