package socket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	manager := &fakeConn{}
	other := &fakeConn{}
	admin := &fakeConn{}
	hub.Register("m1", false, []string{"f1"}, manager)
	hub.Register("m2", false, []string{"f2"}, other)
	hub.Register("a1", true, nil, admin)

	delivered := hub.Broadcast("f1", "checklist.updated", map[string]string{"id": "c1"})
	assert.Equal(t, 2, delivered)
	assert.Len(t, manager.frames, 1)
	assert.Empty(t, other.frames)
	assert.Len(t, admin.frames, 1)

	var event Event
	require.NoError(t, json.Unmarshal(manager.frames[0], &event))
	assert.Equal(t, "checklist.updated", event.Type)
	assert.Equal(t, "f1", event.FacilityID)
}

func TestBroadcastDropsBrokenClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	broken := &fakeConn{fail: true}
	hub.Register("m1", false, []string{"f1"}, broken)

	assert.Equal(t, 0, hub.Broadcast("f1", "checklist.completed", nil))
	assert.Equal(t, 0, hub.Count())
	assert.True(t, broken.closed)
}

func TestUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := hub.Register("m1", false, []string{"f1"}, &fakeConn{})
	require.Equal(t, 1, hub.Count())

	hub.Unregister(client)
	hub.Unregister(client)
	assert.Equal(t, 0, hub.Count())
}
