package notifiers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/victoravtr/LEC-Ditto/pkg/httpclient"
)

const telegramDefaultBaseURL = "https://api.telegram.org"

type telegramNotifier struct {
	id       string
	typ      string
	baseURL  string
	botToken string
	chatID   string
	client   *resty.Client
	log      Logger
}

func newTelegramNotifier(_ context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.Telegram == nil {
		return nil, fmt.Errorf("notifier %q missing telegram configuration", cfg.ID)
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(cfg.Telegram.TimeoutSeconds) * time.Second)

	return &telegramNotifier{
		id:       cfg.ID,
		typ:      TypeTelegram,
		baseURL:  telegramDefaultBaseURL,
		botToken: cfg.Telegram.BotToken,
		chatID:   cfg.Telegram.ChatID,
		client:   client,
		log:      ensureLogger(log),
	}, nil
}

func (t *telegramNotifier) ID() string   { return t.id }
func (t *telegramNotifier) Type() string { return t.typ }

// Notify sends the event text through the Telegram Bot API sendMessage call.
func (t *telegramNotifier) Notify(ctx context.Context, evt Event) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"chat_id":    t.chatID,
			"parse_mode": "HTML",
			"text":       evt.Text,
		}).
		Get(fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}

	var body struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("telegram response status %d: %s", resp.StatusCode(), body.Description)
	}

	t.log.DebugObj("telegram notifier delivered message", "notifier_telegram_delivery", map[string]any{
		"notifier_id": t.id,
		"chat_id":     t.chatID,
	})
	return nil
}
