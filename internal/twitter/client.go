// Package twitter wraps the Twitter API v2 endpoints the watcher consumes:
// account lookup, following-list pagination, and tweet posting. Every call
// acquires its operation's local quota first; remote 429 responses sleep for
// the server-specified reset time and retry. Any other remote error is
// surfaced to the caller, which treats it as fatal (crash-and-resume model).
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/victoravtr/LEC-Ditto/internal/domain"
	"github.com/victoravtr/LEC-Ditto/internal/logger"
	"github.com/victoravtr/LEC-Ditto/internal/quota"
	"github.com/victoravtr/LEC-Ditto/pkg/httpclient"
)

const (
	defaultBaseURL     = "https://api.twitter.com"
	rateLimitResetHdr  = "x-rate-limit-reset"
	followingPageLimit = 1000
)

// Credentials holds the Twitter API secrets. BearerToken authenticates
// lookups; the OAuth 1.0a quad signs tweet posting.
type Credentials struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Quotas carries the per-operation limiters. Each operation is tracked
// independently and shared across all callers of this client.
type Quotas struct {
	FollowingLookup *quota.Limiter
	UserLookup      *quota.Limiter
	Post            *quota.Limiter
}

// DefaultQuotas builds limiters with the Twitter API v2 budgets.
func DefaultQuotas() Quotas {
	return Quotas{
		FollowingLookup: quota.NewLimiter("following_lookup", quota.DefaultFollowingLookupCalls, quota.DefaultWindow),
		UserLookup:      quota.NewLimiter("user_lookup", quota.DefaultUserLookupCalls, quota.DefaultWindow),
		Post:            quota.NewLimiter("post", quota.DefaultPostCalls, quota.DefaultWindow),
	}
}

// Client is a rate-limited Twitter API v2 gateway.
type Client struct {
	baseURL string
	creds   Credentials
	quotas  Quotas
	http    *resty.Client

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a gateway against the given base URL (empty means the
// public Twitter API).
func NewClient(baseURL string, creds Credentials, quotas Quotas) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		quotas:  quotas,
		http:    httpclient.NewRestyHTTPClient(30 * time.Second),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// apiError is one entry of the `errors` array Twitter attaches to failed
// requests.
type apiError struct {
	Message string `json:"message"`
	Title   string `json:"title"`
}

// userResponse is the payload of single-user lookup endpoints.
type userResponse struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

// ResolveAccount checks that the stored id/username of a tracked account
// still match Twitter's view. It reports whether the record was unchanged
// and returns the corrected record when it was not. Accounts without an ID
// are resolved by username.
func (c *Client) ResolveAccount(ctx context.Context, acct domain.TrackedAccount) (bool, domain.TrackedAccount, error) {
	var (
		resp userResponse
		err  error
	)
	if acct.ID == "" {
		resp, err = c.lookupByUsername(ctx, acct.Username)
	} else {
		resp, err = c.lookupByID(ctx, acct.ID)
	}
	if err != nil {
		return false, acct, err
	}
	if len(resp.Errors) > 0 {
		return false, acct, fmt.Errorf("resolve account %s (@%s): %s", acct.ID, acct.Username, resp.Errors[0].Message)
	}

	if resp.Data.ID == acct.ID && resp.Data.Username == acct.Username {
		return true, acct, nil
	}
	acct.ID = resp.Data.ID
	acct.Username = resp.Data.Username
	return false, acct, nil
}

// UsernameExists reports whether a username still resolves. A remote error
// payload means the account is gone (deactivated or suspended), not a
// protocol failure.
func (c *Client) UsernameExists(ctx context.Context, username string) (bool, error) {
	resp, err := c.lookupByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return len(resp.Errors) == 0 && resp.Data.ID != "", nil
}

func (c *Client) lookupByID(ctx context.Context, id string) (userResponse, error) {
	var resp userResponse
	url := fmt.Sprintf("%s/2/users/%s", c.baseURL, id)
	if err := c.getJSON(ctx, c.quotas.UserLookup, url, &resp); err != nil {
		return resp, fmt.Errorf("lookup user %s: %w", id, err)
	}
	return resp, nil
}

func (c *Client) lookupByUsername(ctx context.Context, username string) (userResponse, error) {
	var resp userResponse
	url := fmt.Sprintf("%s/2/users/by/username/%s", c.baseURL, username)
	if err := c.getJSON(ctx, c.quotas.UserLookup, url, &resp); err != nil {
		return resp, fmt.Errorf("lookup user @%s: %w", username, err)
	}
	return resp, nil
}

// getJSON performs a bearer-authenticated GET under the operation's quota.
// A 429 from the remote limiter sleeps until the reset time in the response
// headers and retries the same request indefinitely.
func (c *Client) getJSON(ctx context.Context, limiter *quota.Limiter, url string, out any) error {
	for {
		if limiter != nil {
			if err := limiter.Acquire(ctx); err != nil {
				return err
			}
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.creds.BearerToken).
			Get(url)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}

		if resp.StatusCode() == 429 {
			wait := c.secondsUntilReset(resp.Header().Get(rateLimitResetHdr))
			logger.WarnObj("remote rate limit reached", "rate_limit", map[string]any{
				"url":          url,
				"wait_seconds": int(wait.Seconds()),
			})
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		if resp.IsError() {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// secondsUntilReset converts the x-rate-limit-reset epoch header into a wait
// duration, rounded up to whole seconds. A missing or malformed header falls
// back to one minute rather than hammering the API.
func (c *Client) secondsUntilReset(header string) time.Duration {
	epoch, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return time.Minute
	}
	remaining := time.Unix(epoch, 0).Sub(c.now())
	if remaining <= 0 {
		return time.Second
	}
	return time.Duration(math.Ceil(remaining.Seconds())) * time.Second
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
