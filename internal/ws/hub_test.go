package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	mu       sync.Mutex
	written  []interface{}
	closed   bool
	writeErr error
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}{}, f.written...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestSendToUserDeliversToRegisteredConn(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(7, conn)

	hub.SendToUser(7, "hello")

	assert.Equal(t, []interface{}{"hello"}, conn.messages())
	assert.True(t, hub.IsOnline(7))
}

func TestSendToUserSkipsOffline(t *testing.T) {
	hub := NewHub()

	// must not panic or block
	hub.SendToUser(42, "nobody home")
	assert.False(t, hub.IsOnline(42))
}

func TestRegisterReplacesAndClosesPrevious(t *testing.T) {
	hub := NewHub()
	old := &fakeConn{}
	hub.Register(7, old)

	replacement := &fakeConn{}
	hub.Register(7, replacement)

	assert.True(t, old.isClosed())

	hub.SendToUser(7, "ping")
	assert.Empty(t, old.messages())
	assert.Equal(t, []interface{}{"ping"}, replacement.messages())
}

func TestUnregisterOnlyEvictsOwnConn(t *testing.T) {
	hub := NewHub()
	old := &fakeConn{}
	hub.Register(7, old)
	replacement := &fakeConn{}
	hub.Register(7, replacement)

	// the replaced connection's deferred unregister must not evict the new one
	hub.Unregister(7, old)
	assert.True(t, hub.IsOnline(7))

	hub.Unregister(7, replacement)
	assert.False(t, hub.IsOnline(7))
}

func TestSendToUserEvictsOnWriteError(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	hub.Register(7, conn)

	hub.SendToUser(7, "fails")

	assert.False(t, hub.IsOnline(7))
	assert.True(t, conn.isClosed())
}

func TestBroadcastDeliversToOnlineSubset(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	c := &fakeConn{}
	hub.Register(1, a)
	hub.Register(3, c)

	hub.Broadcast([]uint{1, 2, 3}, "fan-out")

	assert.Equal(t, []interface{}{"fan-out"}, a.messages())
	assert.Equal(t, []interface{}{"fan-out"}, c.messages())
}

func TestHubConcurrentUse(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := uint(i % 10)
			conn := &fakeConn{}
			hub.Register(id, conn)
			hub.SendToUser(id, i)
			hub.IsOnline(id)
			hub.Unregister(id, conn)
		}(i)
	}
	wg.Wait()
}
