package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/facegate/go-facegate/internal/log"
	"github.com/facegate/go-facegate/pkg/capture"
)

// Publisher mirrors capture events to a remote hub over a websocket.
// It implements capture.Sink and never blocks the polling loop: events
// are queued and sent from a dedicated writer goroutine; when the queue
// fills, events are dropped.
type Publisher struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects a publisher to the hub's publish endpoint,
// e.g. ws://localhost:8080/ws/publish.
func Dial(url string) (*Publisher, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("hub: dial %s: %w", url, err)
	}

	p := &Publisher{
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
	go p.writeLoop()
	return p, nil
}

// Publish implements capture.Sink.
func (p *Publisher) Publish(e capture.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	select {
	case p.send <- data:
	default:
		// Queue full - drop rather than stall the capture loop.
	}
}

// Close shuts down the publisher connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return p.conn.Close()
}

func (p *Publisher) writeLoop() {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn("hub publisher write failed", "err", err)
				return
			}
		}
	}
}
