package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	StorageType   string `mapstructure:"storage_type"`
	BBoltPath     string `mapstructure:"bbolt_path"`
	AccountsFile  string `mapstructure:"accounts_file"`
	NotifiersFile string `mapstructure:"notifiers_file"`
	BlacklistFile string `mapstructure:"blacklist_file"`

	TwitterAPIBaseURL        string `mapstructure:"twitter_api_base_url"`
	TwitterBearerToken       string `mapstructure:"twitter_bearer_token"`
	TwitterConsumerKey       string `mapstructure:"twitter_consumer_key"`
	TwitterConsumerSecret    string `mapstructure:"twitter_consumer_secret"`
	TwitterAccessToken       string `mapstructure:"twitter_access_key"`
	TwitterAccessTokenSecret string `mapstructure:"twitter_access_secret"`

	FollowingLookupQuota int           `mapstructure:"following_lookup_quota"`
	UserLookupQuota      int           `mapstructure:"user_lookup_quota"`
	PostQuota            int           `mapstructure:"post_quota"`
	QuotaWindowSeconds   int64         `mapstructure:"quota_window_seconds"`
	QuotaWindow          time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "lec-ditto")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/ditto.db")
	v.SetDefault("accounts_file", "./configs/accounts.yaml")
	v.SetDefault("notifiers_file", "./configs/notifiers.yaml")
	v.SetDefault("blacklist_file", "./data/blacklist")
	v.SetDefault("twitter_api_base_url", "https://api.twitter.com")
	// Credentials have no sensible defaults, but viper only resolves env
	// vars for keys it already knows about.
	v.SetDefault("twitter_bearer_token", "")
	v.SetDefault("twitter_consumer_key", "")
	v.SetDefault("twitter_consumer_secret", "")
	v.SetDefault("twitter_access_key", "")
	v.SetDefault("twitter_access_secret", "")
	// Twitter API v2 app-level quotas per 15-minute window.
	v.SetDefault("following_lookup_quota", 15)
	v.SetDefault("user_lookup_quota", 300)
	v.SetDefault("post_quota", 75)
	v.SetDefault("quota_window_seconds", 900)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TwitterBearerToken == "" {
		return nil, fmt.Errorf("twitter_bearer_token is required")
	}
	if cfg.FollowingLookupQuota <= 0 || cfg.UserLookupQuota <= 0 || cfg.PostQuota <= 0 {
		return nil, fmt.Errorf("quotas must be positive call counts")
	}
	if cfg.QuotaWindowSeconds <= 0 {
		return nil, fmt.Errorf("invalid quota_window_seconds (must be positive seconds)")
	}
	cfg.QuotaWindow = time.Duration(cfg.QuotaWindowSeconds) * time.Second

	return &cfg, nil
}
