package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// pointing the notifier at a test server requires swapping the API base,
// so these tests go through a notifier with a rewired client transport.
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten := *req
	u := *req.URL
	u.Scheme = "http"
	u.Host = strings.TrimPrefix(rt.target, "http://")
	rewritten.URL = &u
	return http.DefaultTransport.RoundTrip(&rewritten)
}

func newTestNotifier(serverURL string, cfg *domain.NotificationConfig) *TelegramNotifier {
	n := NewTelegramNotifier(cfg, zap.NewNop())
	n.client = &http.Client{Transport: rewriteTransport{target: serverURL}}
	return n
}

func TestTelegramSend(t *testing.T) {
	var gotChatID, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotChatID = r.Form.Get("chat_id")
		gotText = r.Form.Get("text")
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, &domain.NotificationConfig{
		Enabled:     true,
		BotToken:    "token",
		ChatID:      "42",
		MinInterval: time.Millisecond,
	})

	assert.True(t, n.Send("hello"))
	assert.Equal(t, "42", gotChatID)
	assert.Equal(t, "hello", gotText)
}

func TestTelegramSendFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, &domain.NotificationConfig{
		Enabled:     true,
		BotToken:    "token",
		ChatID:      "42",
		MinInterval: time.Millisecond,
	})

	assert.False(t, n.Send("hello"))
}

func TestTelegramDisabledSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, &domain.NotificationConfig{Enabled: false})
	assert.True(t, n.Send("hello"))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestTelegramTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, &domain.NotificationConfig{
		Enabled:  true,
		BotToken: "token",
		ChatID:   "42",
	})
	assert.NoError(t, n.TestConnection())

	// missing credentials with notifications enabled must fail fast
	n = newTestNotifier(server.URL, &domain.NotificationConfig{Enabled: true})
	assert.Error(t, n.TestConnection())

	// disabled notifier passes without touching the network
	n = newTestNotifier(server.URL, &domain.NotificationConfig{Enabled: false})
	assert.NoError(t, n.TestConnection())
}

func TestTelegramRateLimitSpacesSends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	n := newTestNotifier(server.URL, &domain.NotificationConfig{
		Enabled:     true,
		BotToken:    "token",
		ChatID:      "42",
		MinInterval: 100 * time.Millisecond,
	})

	start := time.Now()
	n.Send("first")
	n.Send("second")
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
