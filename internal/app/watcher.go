package app

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/victoravtr/LEC-Ditto/internal/config"
	"github.com/victoravtr/LEC-Ditto/internal/domain"
	"github.com/victoravtr/LEC-Ditto/internal/logger"
	"github.com/victoravtr/LEC-Ditto/internal/quota"
	"github.com/victoravtr/LEC-Ditto/internal/scanner"
	"github.com/victoravtr/LEC-Ditto/internal/storage"
	"github.com/victoravtr/LEC-Ditto/internal/twitter"
	"github.com/victoravtr/LEC-Ditto/pkg/notifiers"
)

// Watcher represents the follow-watcher runtime. It wires the durable store,
// the rate-limited Twitter gateway, and the notifier fanout into the scan
// loop, and owns storage cleanup.
type Watcher struct {
	cfg     *config.Config
	store   storage.Store
	fanout  *notifiers.Fanout
	scanner *scanner.Scanner
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	accounts, err := seedRegistry(store, cfg.AccountsFile)
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.InfoObj("account registry loaded", "registry_meta", map[string]any{
		"count": len(accounts),
	})

	blacklist, err := scanner.LoadBlacklist(cfg.BlacklistFile)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load blacklist: %w", err)
	}

	client := twitter.NewClient(cfg.TwitterAPIBaseURL, twitter.Credentials{
		BearerToken:       cfg.TwitterBearerToken,
		ConsumerKey:       cfg.TwitterConsumerKey,
		ConsumerSecret:    cfg.TwitterConsumerSecret,
		AccessToken:       cfg.TwitterAccessToken,
		AccessTokenSecret: cfg.TwitterAccessTokenSecret,
	}, twitter.Quotas{
		FollowingLookup: quota.NewLimiter("following_lookup", cfg.FollowingLookupQuota, cfg.QuotaWindow),
		UserLookup:      quota.NewLimiter("user_lookup", cfg.UserLookupQuota, cfg.QuotaWindow),
		Post:            quota.NewLimiter("post", cfg.PostQuota, cfg.QuotaWindow),
	})

	fanout, err := buildFanout(ctx, cfg, client)
	if err != nil {
		store.Close()
		return nil, err
	}

	dispatcher := scanner.NewDispatcher(blacklist, client, fanout)
	sc, err := scanner.New(store, client, client, dispatcher)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init scanner: %w", err)
	}

	return &Watcher{
		cfg:     cfg,
		store:   store,
		fanout:  fanout,
		scanner: sc,
	}, nil
}

// Run executes the scan loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.scanner == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.closeStore()

	logger.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"notifiers_count": w.fanout.Size(),
	})
	return w.scanner.Run(ctx)
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (w *Watcher) closeStore() {
	if w == nil || w.store == nil {
		return
	}
	if err := w.store.Close(); err != nil {
		logger.ErrorObj("storage close failed", "error", err)
	}
}

// accountsFile is the seed file structure for the account registry.
type accountsFile struct {
	Accounts []domain.TrackedAccount `json:"accounts" yaml:"accounts"`
}

// seedRegistry returns the persisted registry, importing it from the
// accounts seed file on first run. After the import the store owns the
// registry; edits to the seed file are ignored until the store is wiped.
func seedRegistry(store storage.Store, path string) ([]domain.TrackedAccount, error) {
	accounts, found, err := store.ReadRegistry()
	if err != nil {
		return nil, err
	}
	if found {
		return accounts, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	var seed accountsFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode accounts file: %w", err)
	}
	if len(seed.Accounts) == 0 {
		return nil, fmt.Errorf("accounts file %s contains no accounts", path)
	}

	if err := store.WriteRegistry(seed.Accounts); err != nil {
		return nil, err
	}
	logger.InfoObj("account registry seeded from file", "accounts_file", path)
	return seed.Accounts, nil
}

// buildFanout loads the notifier registry file and instantiates every
// enabled channel. The twitter channel shares the rate-limited API client
// so posting draws from the process-wide quota budget.
func buildFanout(ctx context.Context, cfg *config.Config, poster notifiers.TweetPoster) (*notifiers.Fanout, error) {
	noteReg, err := notifiers.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}

	enabled := noteReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no notifiers configured")
	}

	builderReg := notifiers.DefaultRegistry()
	builderReg.Register(notifiers.TypeTwitter, notifiers.TwitterBuilder(poster))

	sinks, err := notifiers.BuildAll(ctx, builderReg, enabled, objLogger{})
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, noteCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   noteCfg.ID,
			"type": noteCfg.Type,
		})
	}
	logger.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})

	return notifiers.NewFanout(sinks), nil
}

// objLogger adapts the package logger to the notifiers.Logger interface.
type objLogger struct{}

func (objLogger) InfoObj(msg, key string, obj interface{})  { logger.InfoObj(msg, key, obj) }
func (objLogger) DebugObj(msg, key string, obj interface{}) { logger.DebugObj(msg, key, obj) }
func (objLogger) WarnObj(msg, key string, obj interface{})  { logger.WarnObj(msg, key, obj) }
func (objLogger) ErrorObj(msg, key string, obj interface{}) { logger.ErrorObj(msg, key, obj) }
