package notifiers

import (
	"context"
	"errors"
	"testing"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
)

type fakePoster struct {
	texts []string
	err   error
}

func (f *fakePoster) PostTweet(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return f.err
}

func TestTwitterNotifierPostsEventText(t *testing.T) {
	poster := &fakePoster{}
	builder := TwitterBuilder(poster)

	sink, err := builder(context.Background(), NotifierConfig{ID: "tw1", Type: TypeTwitter}, nil)
	if err != nil {
		t.Fatalf("build twitter notifier: %v", err)
	}
	if sink.ID() != "tw1" || sink.Type() != TypeTwitter {
		t.Fatalf("unexpected identity %s/%s", sink.ID(), sink.Type())
	}

	evt := NewEvent(
		domain.TrackedAccount{ID: "1", Username: "caps", Name: "Caps"},
		domain.FollowRelation{ID: "2", Username: "jankos", Name: "Jankos"},
		ChangeFollow,
		"Caps (@caps) followed Jankos (@jankos)",
	)
	if err := sink.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(poster.texts) != 1 || poster.texts[0] != evt.Text {
		t.Fatalf("poster received %v, want the event text", poster.texts)
	}
}

func TestTwitterNotifierPropagatesPostError(t *testing.T) {
	poster := &fakePoster{err: errors.New("duplicate content")}
	builder := TwitterBuilder(poster)

	sink, err := builder(context.Background(), NotifierConfig{ID: "tw1", Type: TypeTwitter}, nil)
	if err != nil {
		t.Fatalf("build twitter notifier: %v", err)
	}

	evt := NewEvent(domain.TrackedAccount{ID: "1"}, domain.FollowRelation{ID: "2"}, ChangeUnfollow, "text")
	if err := sink.Notify(context.Background(), evt); err == nil {
		t.Fatal("expected post error to propagate, got nil")
	}
}
