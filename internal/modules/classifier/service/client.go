package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/classifier/domain"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 500 * time.Millisecond
	DefaultTimeout     = 30 * time.Second

	userAgent       = "TelegramModerationRelay/1.0"
	maxResponseSize = 1 << 20
)

// SleepFunc waits between attempts. It returns early with the context error
// if ctx is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client calls the remote text moderation service. It never returns Go
// errors: every failure is reported through Verdict.Error.
type Client struct {
	baseURL     string
	apiKey      string
	maxAttempts int
	baseBackoff time.Duration
	timeout     time.Duration
	sleep       SleepFunc
	transport   func() http.RoundTripper
	logger      *slog.Logger

	mu         sync.Mutex
	httpClient *http.Client
}

type Option func(*Client)

// WithMaxAttempts sets the total number of tries, including the first one.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
	}
}

// WithBaseBackoff sets the delay before the first retry; each further retry
// doubles it.
func WithBaseBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.baseBackoff = d
	}
}

// WithTimeout sets the total per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

func WithTransport(transport func() http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
		timeout:     DefaultTimeout,
		sleep:       sleepContext,
		transport: func() http.RoundTripper {
			return cleanhttp.DefaultPooledTransport()
		},
		logger: slog.Default().With("subsystem", "classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// Classify submits text for moderation, retrying server errors and
// connection failures with exponential backoff.
func (c *Client) Classify(ctx context.Context, text string) domain.Verdict {
	verdict := c.classify(ctx, text)

	outcome := "flagged"
	switch {
	case verdict.Failed():
		outcome = verdict.Error.Kind.String()
	case !verdict.Flagged:
		outcome = "clean"
	}
	classifierVerdicts.WithLabelValues(outcome).Inc()

	return verdict
}

func (c *Client) classify(ctx context.Context, text string) domain.Verdict {
	if c.apiKey == "" {
		c.logger.Error("API_KEY not configured")
		return domain.Failure(domain.ErrorKindConfig, 0, "API_KEY not configured")
	}

	target, err := c.requestURL(text)
	if err != nil {
		c.logger.Error("Invalid classifier URL", "url", c.baseURL, "error", err)
		return domain.Failure(domain.ErrorKindConfig, 0, "invalid classifier URL")
	}

	client := c.session()

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		verdict, retry := c.attempt(ctx, client, target)
		if !retry {
			return verdict
		}

		c.logger.Warn("Classifier attempt failed",
			"attempt", attempt+1, "max_attempts", c.maxAttempts, "error", verdict.Error)

		if attempt == c.maxAttempts-1 {
			break
		}
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			return domain.Failure(domain.ErrorKindConnection, 0, "request cancelled")
		}
	}

	c.logger.Error("Failed to get successful response from classifier", "attempts", c.maxAttempts)
	return domain.Failure(domain.ErrorKindExhausted, 0,
		fmt.Sprintf("API call failed after %d attempts", c.maxAttempts))
}

// backoff is base * 2^attempt, attempts counted from zero.
func (c *Client) backoff(attempt int) time.Duration {
	return c.baseBackoff * time.Duration(1<<attempt)
}

// attempt performs one request. The bool reports whether the failure is
// transient and the request may be retried.
func (c *Client) attempt(ctx context.Context, client *http.Client, target string) (domain.Verdict, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Failure(domain.ErrorKindConfig, 0, err.Error()), false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	classifierAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		classifierAPICount.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return domain.Failure(domain.ErrorKindConnection, 0, "request cancelled"), false
		}
		return domain.Failure(domain.ErrorKindConnection, 0, err.Error()), true
	}
	defer resp.Body.Close()

	classifierAPICount.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.Failure(domain.ErrorKindConnection, resp.StatusCode, err.Error()), true
	}

	switch {
	case resp.StatusCode >= 500:
		return domain.Failure(domain.ErrorKindRemote, resp.StatusCode, "API server error"), true
	case resp.StatusCode >= 400:
		c.logger.Error("Classifier client error", "status", resp.StatusCode, "body", string(body))
		return domain.Failure(domain.ErrorKindClient, resp.StatusCode,
			fmt.Sprintf("API Client Error: %d", resp.StatusCode)), false
	}

	verdict := parseVerdict(body)
	if verdict.Failed() && verdict.Error.Kind == domain.ErrorKindParse {
		c.logger.Error("Classifier response is not valid JSON", "body", string(body))
	}
	return verdict, false
}

func (c *Client) requestURL(text string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host")
	}

	q := u.Query()
	q.Set("text", text)
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// session returns the shared HTTP client, creating it on first use.
func (c *Client) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: c.transport(),
			Timeout:   c.timeout,
		}
	}
	return c.httpClient
}

// Close releases pooled connections. The client may still be used afterwards;
// a new pool is created on demand.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	return nil
}

type wireVerdict struct {
	Flagged     *bool           `json:"flagged"`
	FlaggedWord *string         `json:"flagged_word"`
	Reason      *string         `json:"reason"`
	Error       json.RawMessage `json:"error"`
}

func parseVerdict(body []byte) domain.Verdict {
	var w *wireVerdict
	if err := json.Unmarshal(body, &w); err != nil || w == nil {
		return domain.Failure(domain.ErrorKindParse, 0, "API response is not valid JSON")
	}

	if remoteErr := errorText(w.Error); remoteErr != "" {
		return domain.Failure(domain.ErrorKindRemote, 0, remoteErr)
	}

	verdict := domain.Verdict{
		FlaggedWord: domain.DefaultFlaggedWord,
		Reason:      domain.DefaultReason,
	}
	if w.Flagged != nil {
		verdict.Flagged = *w.Flagged
	}
	if w.FlaggedWord != nil {
		verdict.FlaggedWord = *w.FlaggedWord
	}
	if w.Reason != nil {
		verdict.Reason = *w.Reason
	}
	return verdict
}

// errorText returns a non-empty message when the service reported an error
// in an otherwise successful response. Falsy JSON values do not count.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch e := v.(type) {
	case nil:
		return ""
	case bool:
		if !e {
			return ""
		}
	case string:
		return e
	case float64:
		if e == 0 {
			return ""
		}
	}
	return string(raw)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
