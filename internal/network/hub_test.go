package network

import (
	"sync"
	"testing"
)

func TestReplyAfterClientDropped(t *testing.T) {
	// Setup: a client the hub has already dropped
	c := &Client{send: make(chan []byte, 1)}
	c.closeSend()
	c.closeSend() // dropping twice must be harmless

	// Act: a late reply from the read pump
	c.reply(Message{Type: MsgTypeResult, Payload: map[string]interface{}{"success": true}})

	// Assert: nothing was queued on the closed channel
	if _, ok := <-c.send; ok {
		t.Errorf("Expected no frame on a closed send channel")
	}
}

func TestRepliesDuringDisconnectDoNotPanic(t *testing.T) {
	// Setup: pumps still replying while the hub drops the client
	c := &Client{send: make(chan []byte, 4)}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.reply(Message{Type: MsgTypeResult})
			}
		}()
	}

	// Act
	c.closeSend()
	wg.Wait()
}
