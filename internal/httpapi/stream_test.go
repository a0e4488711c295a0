package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adil-khursheed/mysterymessage/internal/config"
	"github.com/adil-khursheed/mysterymessage/internal/session"
)

func TestMessageStream_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)

	rec := env.do(t, http.MethodGet, "/api/message-stream", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMessageStream_DeliversOwnEvents(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)
	alice, token := env.createAccount(t, "alice", "secret1")

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/message-stream", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	require.Equal(t, "event: hello", lines.Text())

	// Someone else's inbox must not reach alice's stream.
	env.srv.bus.Publish(EventMessageReceived, "another-account")

	body := strings.NewReader(`{"username":"alice","content":"hello alice, from a stranger"}`)
	sent, err := ts.Client().Post(ts.URL+"/api/send-message", "application/json", body)
	require.NoError(t, err)
	sent.Body.Close()
	require.Equal(t, http.StatusCreated, sent.StatusCode)

	var data string
	for lines.Scan() {
		if line := lines.Text(); strings.HasPrefix(line, `data: {"type"`) {
			data = line
			break
		}
	}
	assert.Contains(t, data, EventMessageReceived)

	msgs, err := env.store.ListMessages(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEventBus_OwnerOnly(t *testing.T) {
	b := newEventBus()
	mine := b.Subscribe("a1")
	other := b.Subscribe("a2")
	defer b.Unsubscribe(mine)
	defer b.Unsubscribe(other)

	b.Publish(EventMessageReceived, "a1")
	b.Publish(EventMessageReceived, "")

	select {
	case ev := <-mine:
		assert.Equal(t, EventMessageReceived, ev.Type)
	default:
		t.Fatal("owner did not receive event")
	}
	assert.Empty(t, other)
	assert.Empty(t, mine)
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := newRateLimiter(0.001, 1)
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))

	unlimited := newRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.allow("a"))
	}
}
