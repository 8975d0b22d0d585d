package notifiers

import (
	"time"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
)

// Change direction of a follow event.
const (
	ChangeFollow   = "follow"
	ChangeUnfollow = "unfollow"
)

// Event represents one detected follow or unfollow, ready for delivery.
// Text is the pre-formatted human-readable message; chat and post channels
// send Text, queue channels send the whole event as JSON.
type Event struct {
	AccountID       string                `json:"account_id"`
	AccountUsername string                `json:"account_username"`
	Target          domain.FollowRelation `json:"target"`
	Change          string                `json:"change"`
	Text            string                `json:"text"`
	OccurredAt      time.Time             `json:"occurred_at"`
}

// NewEvent constructs an Event for the given tracked account and relation.
func NewEvent(account domain.TrackedAccount, target domain.FollowRelation, change, text string) Event {
	return Event{
		AccountID:       account.ID,
		AccountUsername: account.Username,
		Target:          target,
		Change:          change,
		Text:            text,
		OccurredAt:      time.Now().UTC(),
	}
}
