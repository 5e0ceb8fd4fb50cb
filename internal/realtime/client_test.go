package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A publisher can hold a client snapshot taken before the read pump
// tore the connection down; Send must degrade to a no-op then instead
// of writing to a closed channel.
func TestClientSend_AfterDisconnect(t *testing.T) {
	c := &Client{send: make(chan Event, 1)}
	c.closeSend()

	assert.NotPanics(t, func() {
		c.Send(Event{Name: EventMessageNew})
	})
}

func TestClientSend_BeforeDisconnect(t *testing.T) {
	c := &Client{send: make(chan Event, 2)}

	c.Send(Event{Name: EventMessageNew})
	assert.Len(t, c.send, 1)

	// drop-if-full: a saturated buffer loses frames, never blocks
	c.Send(Event{Name: EventMessageUpdated})
	c.Send(Event{Name: EventMessageDeleted})
	assert.Len(t, c.send, 2)
}

func TestClientCloseSend_Idempotent(t *testing.T) {
	c := &Client{send: make(chan Event, 1)}

	assert.NotPanics(t, func() {
		c.closeSend()
		c.closeSend()
	})

	_, open := <-c.send
	assert.False(t, open)
}
