// Telegram Bot API transport: implements [chat.Client] on the Bot API's JSON-over-HTTPS methods, and provides update intake (long polling and webhook registration).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/truemoder/truemoder/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

const DefaultHost = "https://api.telegram.org"

type Client struct {
	// Client is an HTTP client to use. If not set, defaults to util.RobustHTTPClient().
	Client    *http.Client
	Host      string
	Token     string
	UserAgent *string
	// Outbound request limiter (optional). The Bot API allows roughly 30 requests per second per bot.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func NewClient(token string) *Client {
	return &Client{
		Host:   DefaultHost,
		Token:  token,
		Logger: slog.Default(),
	}
}

func (c *Client) getClient() *http.Client {
	if c.Client == nil {
		return util.RobustHTTPClient()
	}
	return c.Client
}

func (c *Client) methodURL(method string) string {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	return strings.TrimSuffix(host, "/") + "/bot" + c.Token + "/" + method
}

// strips the bot token out of request errors, which quote the full URL
func (c *Client) redact(err error) error {
	var ue *url.Error
	if c.Token != "" && errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, c.Token, "<token>")
	}
	return err
}

// Calls a Bot API method with a JSON body, decoding the envelope's result in to out (if non-nil).
//
// API-level failures are returned as [*chat.Error]; anything else (network, decoding) is a plain wrapped error.
func (c *Client) Do(ctx context.Context, method string, params any, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("telegram %s: waiting for rate limiter: %w", method, err)
		}
	}

	var body io.Reader = http.NoBody
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), body)
	if err != nil {
		return c.redact(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != nil {
		req.Header.Set("User-Agent", *c.UserAgent)
	} else {
		req.Header.Set("User-Agent", "truemoder/"+versioninfo.Short())
	}

	resp, err := c.getClient().Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, c.redact(err))
	}
	defer resp.Body.Close()

	var env Response
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &httpStatusError{Method: method, StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("telegram %s: decoding response: %w", method, err)
	}
	if !env.OK {
		return errorFromResponse(resp.StatusCode, &env)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decoding result: %w", method, err)
		}
	}
	return nil
}

// Non-envelope HTTP failure (eg, from a proxy in between).
type httpStatusError struct {
	Method     string
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("telegram %s: HTTP %d", e.Method, e.StatusCode)
}
