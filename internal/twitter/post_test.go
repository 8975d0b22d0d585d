package twitter

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/victoravtr/LEC-Ditto/internal/quota"
)

// newTestPostClient carries the full OAuth quad so the signing path is
// exercised end to end.
func newTestPostClient(srv *httptest.Server) *Client {
	quotas := Quotas{
		Post: quota.NewLimiter("post", 1000, time.Minute),
	}
	c := NewClient(srv.URL, Credentials{
		BearerToken:       "token",
		ConsumerKey:       "consumer-key",
		ConsumerSecret:    "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-secret",
	}, quotas)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

// parseOAuthHeader splits an `OAuth k="v", ...` header into its parameters.
func parseOAuthHeader(t *testing.T, header string) map[string]string {
	t.Helper()
	if !strings.HasPrefix(header, "OAuth ") {
		t.Fatalf("authorization header %q does not use the OAuth scheme", header)
	}
	params := make(map[string]string)
	for _, pair := range strings.Split(strings.TrimPrefix(header, "OAuth "), ", ") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			t.Fatalf("malformed oauth pair %q", pair)
		}
		val, err := url.QueryUnescape(strings.Trim(v, `"`))
		if err != nil {
			t.Fatalf("unescape %q: %v", v, err)
		}
		params[k] = val
	}
	return params
}

func TestPostTweetSignsRequest(t *testing.T) {
	var (
		gotAuth string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"data":{"id":"1450","text":"hello"}}`)
	}))
	defer srv.Close()

	client := newTestPostClient(srv)
	if err := client.PostTweet(context.Background(), "hello"); err != nil {
		t.Fatalf("PostTweet: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if body["text"] != "hello" {
		t.Fatalf("request body text = %q, want %q", body["text"], "hello")
	}

	params := parseOAuthHeader(t, gotAuth)
	if params["oauth_consumer_key"] != "consumer-key" {
		t.Errorf("oauth_consumer_key = %q", params["oauth_consumer_key"])
	}
	if params["oauth_token"] != "access-token" {
		t.Errorf("oauth_token = %q", params["oauth_token"])
	}
	if params["oauth_signature_method"] != "HMAC-SHA1" {
		t.Errorf("oauth_signature_method = %q", params["oauth_signature_method"])
	}
	if params["oauth_nonce"] == "" || params["oauth_timestamp"] == "" {
		t.Errorf("missing nonce or timestamp in %v", params)
	}

	// Recompute the signature from the transmitted parameters; a drift in
	// base-string construction or key derivation shows up as a mismatch.
	base := make([]string, 0, 6)
	for _, k := range []string{
		"oauth_consumer_key", "oauth_nonce", "oauth_signature_method",
		"oauth_timestamp", "oauth_token", "oauth_version",
	} {
		base = append(base, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	signatureBase := "POST&" + url.QueryEscape(srv.URL+"/2/tweets") + "&" + url.QueryEscape(strings.Join(base, "&"))
	mac := hmac.New(sha1.New, []byte("consumer-secret&access-secret"))
	mac.Write([]byte(signatureBase))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if params["oauth_signature"] != want {
		t.Errorf("oauth_signature = %q, want %q", params["oauth_signature"], want)
	}
}

func TestPostTweetRetriesAfterRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("x-rate-limit-reset", "12345")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":{"id":"1451","text":"retry"}}`)
	}))
	defer srv.Close()

	client := newTestPostClient(srv)
	var slept time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	if err := client.PostTweet(context.Background(), "retry"); err != nil {
		t.Fatalf("PostTweet: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 requests, got %d", calls)
	}
	if slept <= 0 {
		t.Fatalf("expected a positive sleep before the retry, got %v", slept)
	}
}

func TestPostTweetFatalOnErrorsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":[{"message":"You are not permitted to perform this action.","title":"Forbidden"}]}`)
	}))
	defer srv.Close()

	client := newTestPostClient(srv)
	err := client.PostTweet(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not permitted") {
		t.Fatalf("error %q does not carry the remote message", err)
	}
}
