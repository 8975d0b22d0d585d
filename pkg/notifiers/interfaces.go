package notifiers

import "context"

// Notifier delivers a follow-change event to one channel (Telegram, Twitter,
// HTTP webhook, SQS, SNS, Pub/Sub).
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt Event) error
}
