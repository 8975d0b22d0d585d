// Package httpclient centralizes resty client construction so every outbound
// HTTP caller shares the same timeout discipline.
package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewRestyHTTPClient returns a resty.Client with the specified timeout.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}
