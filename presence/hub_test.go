package presence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOnlineSetter struct {
	mu     sync.Mutex
	status map[string]bool
	calls  int
}

func newFakeOnlineSetter() *fakeOnlineSetter {
	return &fakeOnlineSetter{status: map[string]bool{}}
}

func (f *fakeOnlineSetter) SetOnline(ctx context.Context, id string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = online
	f.calls++
	return nil
}

func (f *fakeOnlineSetter) get(id string) (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[id], f.calls
}

func TestHubConnectionLifecycle(t *testing.T) {
	online := newFakeOnlineSetter()
	hub := NewHub(online)

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	ch1, _ := hub.AddNewConnection(ctx1, "user")
	ch2, _ := hub.AddNewConnection(ctx2, "user")
	assert.Equal(t, 2, hub.GetActiveConnectionsCount())
	assert.True(t, hub.IsOnline("user"))
	status, calls := online.get("user")
	assert.True(t, status)
	// only the first connection flips the flag
	assert.Equal(t, 1, calls)

	require.Nil(t, hub.PushToUser("user", &Notice{Type: "smile", Text: "hi"}))
	assert.Equal(t, "hi", (<-ch1).Text)
	assert.Equal(t, "hi", (<-ch2).Text)
	assert.Equal(t, ErrNoActiveConnection, hub.PushToUser("nobody", &Notice{}))

	cancel1()
	assert.Eventually(t, func() bool { return hub.GetActiveConnectionsCount() == 1 }, time.Second, 10*time.Millisecond)
	status, _ = online.get("user")
	assert.True(t, status)

	cancel2()
	assert.Eventually(t, func() bool { return !hub.IsOnline("user") }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		status, _ := online.get("user")
		return !status
	}, time.Second, 10*time.Millisecond)
}

func TestPushToSlowConnectionDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.AddNewConnection(ctx, "user")

	for i := 0; i < noticeBufferSize*2; i++ {
		require.Nil(t, hub.PushToUser("user", &Notice{Text: "spam"}))
	}
}

func TestServeWs(t *testing.T) {
	online := newFakeOnlineSetter()
	hub := NewHub(online)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWs(w, r, "user")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.Nil(t, err)
	assert.Eventually(t, func() bool { return hub.IsOnline("user") }, time.Second, 10*time.Millisecond)

	require.Nil(t, hub.PushToUser("user", &Notice{Type: "chat.message", Text: "new message", Link: "/chat/1"}))
	var notice Notice
	require.Nil(t, conn.ReadJSON(&notice))
	assert.Equal(t, "new message", notice.Text)
	assert.Equal(t, "/chat/1", notice.Link)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline("user") }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		status, _ := online.get("user")
		return !status
	}, 2*time.Second, 10*time.Millisecond)
}

// slowOfflineSetter holds offline writes until release is closed.
type slowOfflineSetter struct {
	*fakeOnlineSetter
	offlineOnce    sync.Once
	offlineStarted chan struct{}
	release        chan struct{}
}

func (s *slowOfflineSetter) SetOnline(ctx context.Context, id string, online bool) error {
	if !online {
		s.offlineOnce.Do(func() { close(s.offlineStarted) })
		<-s.release
	}
	return s.fakeOnlineSetter.SetOnline(ctx, id, online)
}

func TestReconnectDuringOfflineWriteStaysOnline(t *testing.T) {
	online := &slowOfflineSetter{
		fakeOnlineSetter: newFakeOnlineSetter(),
		offlineStarted:   make(chan struct{}),
		release:          make(chan struct{}),
	}
	hub := NewHub(online)

	ctx1, cancel1 := context.WithCancel(context.Background())
	hub.AddNewConnection(ctx1, "user")
	cancel1()
	select {
	case <-online.offlineStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("offline write never started")
	}
	assert.False(t, hub.IsOnline("user"))

	// The page reloads while the offline write of the old socket is in flight.
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	connected := make(chan struct{})
	go func() {
		hub.AddNewConnection(ctx2, "user")
		close(connected)
	}()
	close(online.release)
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect did not finish")
	}

	assert.True(t, hub.IsOnline("user"))
	status, _ := online.get("user")
	assert.True(t, status)
}
