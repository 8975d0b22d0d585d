package scanner

import (
	"context"
	"fmt"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
	"github.com/victoravtr/LEC-Ditto/internal/logger"
	"github.com/victoravtr/LEC-Ditto/pkg/notifiers"
)

// Dispatcher applies the notification policy to a delta and hands the
// surviving events to the channel fanout. Delivery is best effort: channel
// failures are logged and never block scan progress.
type Dispatcher struct {
	blacklist Blacklist
	checker   ExistenceChecker
	sink      EventSink
}

// NewDispatcher wires the policy filters in front of the delivery fanout.
func NewDispatcher(blacklist Blacklist, checker ExistenceChecker, sink EventSink) *Dispatcher {
	if blacklist == nil {
		blacklist = Blacklist{}
	}
	return &Dispatcher{
		blacklist: blacklist,
		checker:   checker,
		sink:      sink,
	}
}

// Dispatch emits follow and unfollow events for the delta. Removed relations
// are additionally checked for existence: an account that no longer resolves
// was deactivated, and notifying about it is noise. Added relations need no
// such check since a freshly-followed account necessarily resolves.
func (d *Dispatcher) Dispatch(ctx context.Context, account domain.TrackedAccount, delta domain.Delta) error {
	for _, rel := range delta.Removed {
		if d.blacklist.Contains(rel.Username) {
			continue
		}
		if d.checker != nil {
			exists, err := d.checker.UsernameExists(ctx, rel.Username)
			if err != nil {
				return fmt.Errorf("check username @%s: %w", rel.Username, err)
			}
			if !exists {
				logger.DebugObj("unfollow suppressed for unresolvable account", "suppressed", map[string]any{
					"account":  account.Username,
					"username": rel.Username,
				})
				continue
			}
		}
		d.deliver(ctx, notifiers.NewEvent(account, rel, notifiers.ChangeUnfollow, unfollowText(account, rel)))
	}

	for _, rel := range delta.Added {
		if d.blacklist.Contains(rel.Username) {
			continue
		}
		d.deliver(ctx, notifiers.NewEvent(account, rel, notifiers.ChangeFollow, followText(account, rel)))
	}

	return nil
}

// deliver fans the event out and logs failures without propagating them.
func (d *Dispatcher) deliver(ctx context.Context, evt notifiers.Event) {
	if d.sink == nil {
		return
	}
	delivered, err := d.sink.Notify(ctx, evt)
	if err != nil {
		logger.ErrorObj("notification delivery failed", "delivery_error", map[string]any{
			"account_id": evt.AccountID,
			"change":     evt.Change,
			"delivered":  delivered,
			"error":      err.Error(),
		})
		return
	}
	logger.InfoObj("notification delivered", "delivery", map[string]any{
		"account_id": evt.AccountID,
		"change":     evt.Change,
		"channels":   delivered,
	})
}

func followText(account domain.TrackedAccount, rel domain.FollowRelation) string {
	return fmt.Sprintf("🔴 SOURCES:\n%s (@%s) followed %s (@%s) 📈",
		account.Name, account.Username, rel.Name, rel.Username)
}

func unfollowText(account domain.TrackedAccount, rel domain.FollowRelation) string {
	return fmt.Sprintf("🔴 SOURCES:\n%s (@%s) unfollowed %s (@%s) 📉",
		account.Name, account.Username, rel.Name, rel.Username)
}
