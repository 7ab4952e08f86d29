package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeConn struct {
	mu      sync.Mutex
	inbound chan []byte
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 8), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-f.inbound:
		return 1, msg, nil
	case <-f.closed:
		return 0, nil, errors.New("closed")
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error          { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error         { return nil }
func (f *fakeConn) SetPongHandler(func(appData string) error) {}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestPublishReachesEveryConnectionOfUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	a := NewClient("farmer-1", newFakeConn())
	b := NewClient("farmer-1", newFakeConn())
	other := NewClient("farmer-2", newFakeConn())
	require.True(t, m.Add(a))
	require.True(t, m.Add(b))
	require.True(t, m.Add(other))
	waitFor(t, func() bool { return m.Connections("farmer-1") == 2 })

	m.Publish("farmer-1", MessageTypeOrderCreated, map[string]string{"id": "o-1"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg WSMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, MessageTypeOrderCreated, msg.Type)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Len(t, other.Send, 0)
}

func TestDropClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	c := NewClient("farmer-1", newFakeConn())
	require.True(t, m.Add(c))
	m.Drop(c)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("client not closed")
	}
	assert.Equal(t, 0, m.Connections("farmer-1"))
	assert.Equal(t, 0, m.SendToUser("farmer-1", []byte("x")))
}

func TestShutdownClosesClientsAndRejectsNewOnes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager()
	m.Start(ctx)

	c := NewClient("farmer-1", newFakeConn())
	require.True(t, m.Add(c))
	cancel()

	<-c.Done()
	assert.False(t, m.Add(NewClient("farmer-2", newFakeConn())))
	m.Drop(c)
}

func TestPumpsAnswerPingAndRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	conn := newFakeConn()
	c := NewClient("farmer-1", conn)
	refreshed := make(chan struct{}, 1)
	c.OnRefresh = func() { refreshed <- struct{}{} }
	require.True(t, m.Add(c))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.ReadPump(m) }()
	go func() { defer wg.Done(); c.WritePump() }()

	conn.inbound <- []byte(`{"type":"ping"}`)
	conn.inbound <- []byte(`{"type":"refresh"}`)

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("refresh hook not called")
	}
	waitFor(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) > 0
	})

	conn.Close()
	wg.Wait()

	conn.mu.Lock()
	var first WSMessage
	require.NoError(t, json.Unmarshal(conn.written[0], &first))
	conn.mu.Unlock()
	assert.Equal(t, MessageTypePong, first.Type)
}
