package notifiers

import (
	"context"
	"fmt"
)

// TweetPoster is the posting capability the twitter notifier delegates to.
// The app passes the shared rate-limited API client here so posting draws
// from the same quota budget as the rest of the process.
type TweetPoster interface {
	PostTweet(ctx context.Context, text string) error
}

type twitterNotifier struct {
	id     string
	typ    string
	poster TweetPoster
	log    Logger
}

// TwitterBuilder returns a Builder that emits events as tweets through the
// given poster. Registered by the app under TypeTwitter.
func TwitterBuilder(poster TweetPoster) Builder {
	return func(_ context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
		if poster == nil {
			return nil, fmt.Errorf("notifier %q requires a tweet poster", cfg.ID)
		}
		return &twitterNotifier{
			id:     cfg.ID,
			typ:    TypeTwitter,
			poster: poster,
			log:    ensureLogger(log),
		}, nil
	}
}

func (t *twitterNotifier) ID() string   { return t.id }
func (t *twitterNotifier) Type() string { return t.typ }

func (t *twitterNotifier) Notify(ctx context.Context, evt Event) error {
	if err := t.poster.PostTweet(ctx, evt.Text); err != nil {
		return fmt.Errorf("post tweet: %w", err)
	}
	t.log.DebugObj("twitter notifier delivered event", "notifier_twitter_delivery", map[string]any{
		"notifier_id": t.id,
		"change":      evt.Change,
	})
	return nil
}
