package hub

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBroadcastQueuesMessage(t *testing.T) {
	h := New("test")

	h.Broadcast(NewJSONMessage([]byte(`{"ok":true}`)))

	select {
	case msg := <-h.broadcast:
		if msg.Type != JSONMessage {
			t.Errorf("type: got %v, want JSONMessage", msg.Type)
		}
		if string(msg.Data) != `{"ok":true}` {
			t.Errorf("data: got %s", msg.Data)
		}
	default:
		t.Fatal("broadcast channel empty after Broadcast")
	}
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := New("test")

	// Fill the buffer; the next Broadcast must not block.
	for i := 0; i < cap(h.broadcast); i++ {
		h.Broadcast(NewBinaryMessage(nil))
	}
	done := make(chan struct{})
	go func() {
		h.Broadcast(NewBinaryMessage(nil))
		close(done)
	}()
	<-done
}

func TestBroadcastJSONEncodes(t *testing.T) {
	h := New("test")

	if err := h.BroadcastJSON(map[string]int{"score": 1}); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}

	msg := <-h.broadcast
	var decoded map[string]int
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if decoded["score"] != 1 {
		t.Errorf("payload: got %v", decoded)
	}
}

func TestBroadcastJSONRejectsUnencodable(t *testing.T) {
	h := New("test")

	if err := h.BroadcastJSON(func() {}); err == nil {
		t.Error("expected encode error for func value")
	}
}

func TestBroadcastDropsSlowSubscriber(t *testing.T) {
	h := New("test")
	go h.Run()

	// A subscriber nobody drains: the first broadcast must drop it
	// instead of stalling the loop.
	c := &Client{hub: h, send: make(chan Message)}
	h.register <- c

	counted := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.ClientCount()
		}
		close(counted)
	}()

	h.Broadcast(NewJSONMessage([]byte(`{}`)))
	<-counted

	deadline := time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("slow subscriber was not dropped")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if _, ok := <-c.send; ok {
		t.Error("dropped subscriber's channel not closed")
	}
}

func TestClientCountStartsAtZero(t *testing.T) {
	h := New("test")
	if h.ClientCount() != 0 {
		t.Errorf("fresh hub client count: got %d, want 0", h.ClientCount())
	}
	if h.IsRunning() {
		t.Error("fresh hub must not report running")
	}
}
