package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestTelegramNotifier(t *testing.T, srv *httptest.Server) *telegramNotifier {
	t.Helper()
	sink, err := newTelegramNotifier(context.Background(), NotifierConfig{
		ID:   "tg",
		Type: TypeTelegram,
		Telegram: &TelegramNotifierConfig{
			BotToken:       "123:abc",
			ChatID:         "-100",
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}
	tg := sink.(*telegramNotifier)
	tg.baseURL = srv.URL
	return tg
}

func TestTelegramNotifierSendsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot123:abc/sendMessage" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("chat_id") != "-100" || q.Get("parse_mode") != "HTML" {
			t.Fatalf("missing query params: %v", q)
		}
		if q.Get("text") != "hello\nworld" {
			t.Fatalf("text not escaped correctly: %q", q.Get("text"))
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	tg := newTestTelegramNotifier(t, srv)
	if err := tg.Notify(context.Background(), Event{Text: "hello\nworld"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestTelegramNotifierErrorOnNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	tg := newTestTelegramNotifier(t, srv)
	if err := tg.Notify(context.Background(), Event{Text: "x"}); err == nil {
		t.Fatalf("expected error when telegram reports ok=false")
	}
}
