package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/classifier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func (r *recordingSleep) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

// scriptedServer replies with the given status/body pairs in order, repeating
// the last one once the script runs out.
func scriptedServer(t *testing.T, steps ...[2]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(steps) {
			n = len(steps) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(steps[n][0].(int))
		w.Write([]byte(steps[n][1].(string)))
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newTestClient(baseURL string, sleep *recordingSleep, opts ...Option) *Client {
	opts = append([]Option{WithSleep(sleep.Sleep)}, opts...)
	return New(baseURL, "secret", opts...)
}

func TestClassifyRetriesServerErrorsThenSucceeds(t *testing.T) {
	srv, calls := scriptedServer(t,
		[2]any{http.StatusServiceUnavailable, `unavailable`},
		[2]any{http.StatusServiceUnavailable, `unavailable`},
		[2]any{http.StatusOK, `{"flagged": true, "flagged_word": "x", "reason": "y"}`},
	)
	sleep := &recordingSleep{}
	c := newTestClient(srv.URL, sleep)

	verdict := c.Classify(context.Background(), "some text")

	require.False(t, verdict.Failed(), "unexpected error: %v", verdict.Error)
	assert.True(t, verdict.Flagged)
	assert.Equal(t, "x", verdict.FlaggedWord)
	assert.Equal(t, "y", verdict.Reason)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, sleep.Delays())
}

func TestClassifyClientErrorIsTerminal(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusNotFound, `not found`})
	sleep := &recordingSleep{}

	verdict := newTestClient(srv.URL, sleep).Classify(context.Background(), "text")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindClient, verdict.Error.Kind)
	assert.Equal(t, http.StatusNotFound, verdict.Error.Status)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, sleep.Delays())
}

func TestClassifyExhaustsRetries(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusBadGateway, `bad gateway`})
	sleep := &recordingSleep{}

	verdict := newTestClient(srv.URL, sleep).Classify(context.Background(), "text")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindExhausted, verdict.Error.Kind)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, sleep.Delays(),
		"no sleep after the final attempt")
}

func TestClassifyCustomAttemptsAndBackoff(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusInternalServerError, `boom`})
	sleep := &recordingSleep{}

	verdict := newTestClient(srv.URL, sleep, WithMaxAttempts(4), WithBaseBackoff(100*time.Millisecond)).
		Classify(context.Background(), "text")

	assert.Equal(t, domain.ErrorKindExhausted, verdict.Error.Kind)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}, sleep.Delays())
}

func TestClassifyMissingAPIKeyMakesNoRequest(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusOK, `{}`})

	verdict := New(srv.URL, "", WithSleep((&recordingSleep{}).Sleep)).Classify(context.Background(), "text")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindConfig, verdict.Error.Kind)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClassifyMalformedBodyIsTerminal(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `<html>oops</html>`,
		"null":         `null`,
		"array":        `[true]`,
		"wrong type":   `{"flagged": "yes"}`,
		"reason array": `{"flagged": true, "reason": ["a"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, calls := scriptedServer(t, [2]any{http.StatusOK, body})
			sleep := &recordingSleep{}

			verdict := newTestClient(srv.URL, sleep).Classify(context.Background(), "text")

			require.True(t, verdict.Failed())
			assert.Equal(t, domain.ErrorKindParse, verdict.Error.Kind)
			assert.Equal(t, int32(1), calls.Load())
			assert.Empty(t, sleep.Delays())
		})
	}
}

func TestClassifyDefaults(t *testing.T) {
	srv, _ := scriptedServer(t, [2]any{http.StatusOK, `{}`})

	verdict := newTestClient(srv.URL, &recordingSleep{}).Classify(context.Background(), "hello")

	require.False(t, verdict.Failed())
	assert.False(t, verdict.Flagged)
	assert.Equal(t, domain.DefaultFlaggedWord, verdict.FlaggedWord)
	assert.Equal(t, domain.DefaultReason, verdict.Reason)
}

func TestClassifyRemoteErrorField(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusOK, `{"error": "quota exceeded"}`})

	verdict := newTestClient(srv.URL, &recordingSleep{}).Classify(context.Background(), "hello")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindRemote, verdict.Error.Kind)
	assert.Equal(t, "quota exceeded", verdict.Error.Message)
	assert.Equal(t, int32(1), calls.Load())

	srv, _ = scriptedServer(t, [2]any{http.StatusOK, `{"error": null, "flagged": false}`})
	verdict = newTestClient(srv.URL, &recordingSleep{}).Classify(context.Background(), "hello")
	assert.False(t, verdict.Failed())
}

func TestClassifyEncodesQuery(t *testing.T) {
	var gotText, gotKey, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotText = r.URL.Query().Get("text")
		gotKey = r.URL.Query().Get("api_key")
		gotAgent = r.UserAgent()
		w.Write([]byte(`{"flagged": false}`))
	}))
	defer srv.Close()

	text := "a&b=c d?#ü"
	verdict := newTestClient(srv.URL+"/api/moderate_words/analyze", &recordingSleep{}).Classify(context.Background(), text)

	require.False(t, verdict.Failed())
	assert.Equal(t, text, gotText)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, userAgent, gotAgent)
}

func TestClassifyRetriesConnectionFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sleep := &recordingSleep{}
	verdict := newTestClient(url, sleep).Classify(context.Background(), "text")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindExhausted, verdict.Error.Kind)
	assert.Len(t, sleep.Delays(), 2)
}

func TestClassifyTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		w.Write([]byte(`{"flagged": true, "flagged_word": "w"}`))
	}))
	defer srv.Close()

	sleep := &recordingSleep{}
	verdict := newTestClient(srv.URL, sleep, WithTimeout(50*time.Millisecond)).Classify(context.Background(), "text")

	require.False(t, verdict.Failed(), "unexpected error: %v", verdict.Error)
	assert.True(t, verdict.Flagged)
	assert.Equal(t, domain.DefaultReason, verdict.Reason)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleep.Delays())
}

func TestClassifyStopsWhenContextCancelled(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusServiceUnavailable, `down`})

	ctx, cancel := context.WithCancel(context.Background())
	c := New(srv.URL, "secret", WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	verdict := c.Classify(ctx, "text")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindConnection, verdict.Error.Kind)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientSessionIsReusedAndReleased(t *testing.T) {
	srv, calls := scriptedServer(t, [2]any{http.StatusOK, `{"flagged": false}`})
	c := newTestClient(srv.URL, &recordingSleep{})

	assert.Nil(t, c.httpClient, "session is created lazily")

	c.Classify(context.Background(), "one")
	first := c.session()
	c.Classify(context.Background(), "two")
	assert.Same(t, first, c.session())

	require.NoError(t, c.Close())
	assert.Nil(t, c.httpClient)
	require.NoError(t, c.Close())

	verdict := c.Classify(context.Background(), "three")
	assert.False(t, verdict.Failed())
	assert.Equal(t, int32(3), calls.Load())
}

func TestInvalidBaseURL(t *testing.T) {
	verdict := New("not a url", "secret").Classify(context.Background(), "text")

	require.True(t, verdict.Failed())
	assert.Equal(t, domain.ErrorKindConfig, verdict.Error.Kind)
}
