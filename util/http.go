package util

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type LeveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l LeveledSlog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

// re-writes HTTP client DEBUG to INFO level (this is where retry is logged)
func (l LeveledSlog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

type HTTPClientOptions struct {
	// overall per-request timeout, including retries. Must exceed any long-poll timeout used with the client.
	Timeout  time.Duration
	RetryMax int
	// optional outbound proxy (http, https, or socks5 URL)
	Proxy  *url.URL
	// return the final response once retries run out, instead of an error (so API error bodies can still be read)
	PassthroughErrors bool
	Logger            *slog.Logger
}

func DefaultHTTPClientOptions() HTTPClientOptions {
	return HTTPClientOptions{
		Timeout:  20 * time.Second,
		RetryMax: 3,
		Logger:   slog.Default(),
	}
}

// Generates an HTTP client with decent general-purpose defaults around
// timeouts and retries. The returned client has the stdlib http.Client
// interface, but has Hashicorp retryablehttp logic internally.
//
// This client will retry on connection errors, 5xx status (except 501), and
// 429 Backoff requests (respecting 'Retry-After' header). It will log
// intermediate failures with WARN level. Requests are traced with OTEL.
func RobustHTTPClient() *http.Client {
	return RobustHTTPClientWith(DefaultHTTPClientOptions())
}

func RobustHTTPClientWith(opts HTTPClientOptions) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Proxy != nil {
		transport.Proxy = http.ProxyURL(opts.Proxy)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		// Create an instrumented transport for OTEL Tracing of HTTP Requests
		Transport: otelhttp.NewTransport(transport),
	}
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(LeveledSlog{logger.With("system", "http")})
	if opts.PassthroughErrors {
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	}
	client := retryClient.StandardClient()
	client.Timeout = opts.Timeout
	return client
}
