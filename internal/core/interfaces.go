package core

import "errors"

// Frame is a raw wire payload (encoded JSON event).
type Frame []byte

// ErrBackpressure is returned by TrySend when a peer's send buffer is full.
// Delivery is best-effort; callers drop the frame.
var ErrBackpressure = errors.New("backpressure")

// SignalConnection abstracts the signaling transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
