package twitter

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/victoravtr/LEC-Ditto/internal/logger"
)

// tweetResponse is the payload of POST /2/tweets.
type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

// PostTweet publishes a tweet under the post quota. Posting requires the
// OAuth 1.0a user context; the bearer token is not enough for writes.
func (c *Client) PostTweet(ctx context.Context, text string) error {
	endpoint := c.baseURL + "/2/tweets"

	for {
		if c.quotas.Post != nil {
			if err := c.quotas.Post.Acquire(ctx); err != nil {
				return err
			}
		}

		authHeader, err := c.oauthHeader("POST", endpoint)
		if err != nil {
			return fmt.Errorf("sign tweet request: %w", err)
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Authorization", authHeader).
			SetBody(map[string]string{"text": text}).
			Post(endpoint)
		if err != nil {
			return fmt.Errorf("post tweet: %w", err)
		}

		if resp.StatusCode() == 429 {
			wait := c.secondsUntilReset(resp.Header().Get(rateLimitResetHdr))
			logger.WarnObj("remote rate limit reached", "rate_limit", map[string]any{
				"url":          endpoint,
				"wait_seconds": int(wait.Seconds()),
			})
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		var tweetResp tweetResponse
		if err := json.Unmarshal(resp.Body(), &tweetResp); err != nil {
			return fmt.Errorf("decode tweet response: %w", err)
		}
		if resp.IsError() {
			if len(tweetResp.Errors) > 0 {
				return fmt.Errorf("post tweet: %s", tweetResp.Errors[0].Message)
			}
			return fmt.Errorf("post tweet: unexpected status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
		}

		logger.InfoObj("tweet published", "tweet", map[string]any{
			"tweet_id": tweetResp.Data.ID,
			"length":   len(text),
		})
		return nil
	}
}

// oauthHeader builds an OAuth 1.0a HMAC-SHA1 authorization header for a
// request without query or form parameters (the tweet text travels in the
// JSON body, which is excluded from the signature base).
func (c *Client) oauthHeader(method, endpoint string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	nonceStr := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base64.StdEncoding.EncodeToString(nonce))

	oauthParams := map[string]string{
		"oauth_consumer_key":     c.creds.ConsumerKey,
		"oauth_nonce":            nonceStr,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(c.now().Unix(), 10),
		"oauth_token":            c.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	paramPairs := make([]string, 0, len(oauthParams))
	for k, v := range oauthParams {
		paramPairs = append(paramPairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	sort.Strings(paramPairs)
	paramString := strings.Join(paramPairs, "&")

	signatureBase := method + "&" + url.QueryEscape(endpoint) + "&" + url.QueryEscape(paramString)
	signingKey := url.QueryEscape(c.creds.ConsumerSecret) + "&" + url.QueryEscape(c.creds.AccessTokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(signatureBase))
	oauthParams["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authPairs := make([]string, 0, len(oauthParams))
	for k, v := range oauthParams {
		authPairs = append(authPairs, url.QueryEscape(k)+"=\""+url.QueryEscape(v)+"\"")
	}
	sort.Strings(authPairs)

	return "OAuth " + strings.Join(authPairs, ", "), nil
}
