package lobby

import (
	"errors"
	"sync"

	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

var ErrOutboxClosed = errors.New("outbox closed")
var ErrOutboxFull = errors.New("outbox full")

// Frame is one unit of work for a connection writer: either a text payload
// or a close with a code.
type Frame struct {
	Payload []byte
	Close   *types.CloseCode
}

// Outbox is the outbound queue of one connection. Only the writer reads from
// it. Closing it is how a client gets disconnected from the server side.
type Outbox struct {
	mu     sync.Mutex
	ch     chan Frame
	closed bool
}

func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 1
	}
	// two reserved slots so a close notice and frame always fit
	return &Outbox{ch: make(chan Frame, size+2)}
}

func (o *Outbox) Frames() <-chan Frame { return o.ch }

// Send queues payload without blocking. A full outbox means the client is not
// draining; it is closed and ErrOutboxFull returned.
func (o *Outbox) Send(payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOutboxClosed
	}
	if len(o.ch) >= cap(o.ch)-2 {
		o.closed = true
		close(o.ch)
		return ErrOutboxFull
	}
	o.ch <- Frame{Payload: payload}
	return nil
}

// CloseWith queues notice (if any) and a close frame with code, then closes
// the outbox.
func (o *Outbox) CloseWith(code types.CloseCode, notice []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if notice != nil {
		o.ch <- Frame{Payload: notice}
	}
	o.ch <- Frame{Close: &code}
	close(o.ch)
}

// Close ends the outbox without a close code. Safe to call repeatedly.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}

func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
