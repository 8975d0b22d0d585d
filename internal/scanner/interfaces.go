package scanner

import (
	"context"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
	"github.com/victoravtr/LEC-Ditto/pkg/notifiers"
)

// AccountResolver validates a tracked account's stored id/username against
// the remote service, returning the corrected record when they drifted.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, acct domain.TrackedAccount) (unchanged bool, updated domain.TrackedAccount, err error)
}

// FollowingFetcher returns the complete current following list of an account.
type FollowingFetcher interface {
	FetchFollowing(ctx context.Context, accountID string) ([]domain.FollowRelation, error)
}

// ExistenceChecker reports whether a username still resolves remotely.
type ExistenceChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// EventSink delivers one event to all configured channels.
type EventSink interface {
	Notify(ctx context.Context, evt notifiers.Event) (int, error)
}
