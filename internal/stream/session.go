package stream

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Session status values. Transitions are one-way: open -> closing -> closed.
const (
	StatusOpen    = "open"
	StatusClosing = "closing"
	StatusClosed  = "closed"
)

// Session tracks one live transcription connection. It is never persisted; it
// exists for logging and teardown accounting.
type Session struct {
	ID      string
	bytesIn atomic.Int64
	status  atomic.Int32
}

func newStreamSession() *Session {
	return &Session{ID: uuid.NewString()}
}

func (s *Session) addBytes(n int) { s.bytesIn.Add(int64(n)) }

// BytesReceived returns the total audio bytes accepted from the client.
func (s *Session) BytesReceived() int64 { return s.bytesIn.Load() }

// Status reports the current lifecycle phase.
func (s *Session) Status() string {
	switch s.status.Load() {
	case 2:
		return StatusClosed
	case 1:
		return StatusClosing
	default:
		return StatusOpen
	}
}

func (s *Session) markClosing() { s.status.CompareAndSwap(0, 1) }
func (s *Session) markClosed()  { s.status.Store(2) }
