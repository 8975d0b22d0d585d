// Package scanner drives the resumable scan over the account registry: for
// each tracked account it resolves identity drift, fetches the current
// following list, diffs it against the stored snapshot, dispatches
// notifications, and advances a durable checkpoint. A restart resumes right
// after the last fully-processed account instead of starting over.
package scanner

import (
	"context"
	"fmt"

	"github.com/victoravtr/LEC-Ditto/internal/diff"
	"github.com/victoravtr/LEC-Ditto/internal/domain"
	"github.com/victoravtr/LEC-Ditto/internal/logger"
	"github.com/victoravtr/LEC-Ditto/internal/storage"
)

// Scanner walks the registry once per cycle, forever. All external errors
// (resolution, fetch, storage) are fatal and surface from Run; the process
// restarts from the checkpoint, never retrying in place.
type Scanner struct {
	store      storage.Store
	resolver   AccountResolver
	fetcher    FollowingFetcher
	dispatcher *Dispatcher
}

// New builds a Scanner from its collaborators.
func New(store storage.Store, resolver AccountResolver, fetcher FollowingFetcher, dispatcher *Dispatcher) (*Scanner, error) {
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if resolver == nil || fetcher == nil {
		return nil, fmt.Errorf("resolver and fetcher must not be nil")
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher(nil, nil, nil)
	}
	return &Scanner{
		store:      store,
		resolver:   resolver,
		fetcher:    fetcher,
		dispatcher: dispatcher,
	}, nil
}

// Run executes scan cycles until the context is cancelled. Pacing comes
// entirely from the rate-limited fetcher; there is no inter-cycle delay.
func (s *Scanner) Run(ctx context.Context) error {
	accounts, found, err := s.store.ReadRegistry()
	if err != nil {
		return err
	}
	if !found || len(accounts) == 0 {
		logger.WarnObj("no accounts in registry; scanner idle", "registry_found", found)
		<-ctx.Done()
		return nil
	}

	cp, err := s.store.ReadCheckpoint()
	if err != nil {
		return err
	}
	index := resumeIndex(accounts, cp)

	logger.InfoObj("scan loop starting", "scanner_state", map[string]any{
		"accounts_count": len(accounts),
		"resume_index":   index,
	})

	for {
		for i := index; i < len(accounts); i++ {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			if err := s.processAccount(ctx, accounts, i); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			logger.InfoObj("account processed", "scan_progress", map[string]any{
				"account":            accounts[i].Username,
				"remaining_accounts": len(accounts) - i - 1,
			})
		}

		logger.InfoObj("scan cycle finished", "accounts_count", len(accounts))
		index = 0
	}
}

// processAccount runs the full resolve-fetch-diff-notify-persist sequence
// for the account at position i. The order matters: the snapshot is only
// overwritten and the checkpoint only advanced after notifications for the
// delta have been dispatched, which keeps notification at-most-once across
// restarts.
func (s *Scanner) processAccount(ctx context.Context, accounts []domain.TrackedAccount, i int) error {
	acct := accounts[i]
	logger.InfoObj("checking account", "account", map[string]any{
		"username": acct.Username,
		"id":       acct.ID,
	})

	unchanged, updated, err := s.resolver.ResolveAccount(ctx, acct)
	if err != nil {
		return fmt.Errorf("resolve @%s: %w", acct.Username, err)
	}
	if !unchanged {
		logger.InfoObj("account identity drifted; registry updated", "account_drift", map[string]any{
			"old": acct,
			"new": updated,
		})
		accounts[i] = updated
		if err := s.store.WriteRegistry(accounts); err != nil {
			return err
		}
	}

	old, hadSnapshot, err := s.store.ReadSnapshot(updated.ID)
	if err != nil {
		return err
	}

	fresh, err := s.fetcher.FetchFollowing(ctx, updated.ID)
	if err != nil {
		return fmt.Errorf("fetch following of @%s: %w", updated.Username, err)
	}

	// Baseline seed: the first fetch for an account establishes the
	// snapshot without emitting a burst of follow events.
	if !hadSnapshot {
		logger.InfoObj("baseline snapshot seeded", "baseline", map[string]any{
			"account":   updated.Username,
			"following": len(fresh),
		})
		return s.persist(updated, fresh)
	}

	delta := diff.Compute(old, fresh)
	if !delta.Empty() {
		if err := s.dispatcher.Dispatch(ctx, updated, delta); err != nil {
			return err
		}
	}

	return s.persist(updated, fresh)
}

// persist overwrites the snapshot and then advances the checkpoint. Write
// order is load-bearing: a crash between the two re-processes this account,
// but the fresh snapshot makes the re-run's delta empty.
func (s *Scanner) persist(acct domain.TrackedAccount, relations []domain.FollowRelation) error {
	if err := s.store.WriteSnapshot(acct.ID, relations); err != nil {
		return err
	}
	return s.store.WriteCheckpoint(domain.Checkpoint{
		InProgress:    true,
		LastProcessed: acct,
	})
}

// resumeIndex locates where the scan should start. The checkpointed account
// is matched by full structural equality against the live registry; if its
// username was corrected between runs the match fails and the scan restarts
// at zero, re-fetching accounts already handled this cycle. That is safe
// (snapshot overwrites are idempotent) but costs duplicate fetches.
func resumeIndex(accounts []domain.TrackedAccount, cp domain.Checkpoint) int {
	if !cp.InProgress {
		return 0
	}
	for i, acct := range accounts {
		if acct == cp.LastProcessed {
			return i + 1
		}
	}
	return 0
}
