// Package gate tracks whether a client's authenticated session may still be
// used to issue new requests.
package gate

import "sync/atomic"

// Status is the state held by a Gate.
type Status int32

const (
	StatusActive Status = iota
	StatusInvalidating
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInvalidating:
		return "invalidating"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Gate is a tri-state session gate. The zero value is Active.
//
// Every transition is unconditional and last-write-wins, so no call is ever
// rejected and there is no terminal state.
type Gate struct {
	status atomic.Int32
}

// New returns a Gate in the Active state.
func New() *Gate {
	return &Gate{}
}

// IsActive reports whether the session may be treated as live.
func (g *Gate) IsActive() bool {
	return g.Status() == StatusActive
}

// Status returns the current state.
func (g *Gate) Status() Status {
	return Status(g.status.Load())
}

// StartInvalidation marks a sign-out or expiry as underway.
func (g *Gate) StartInvalidation() {
	g.status.Store(int32(StatusInvalidating))
}

// Invalidate marks the session as confirmed gone.
func (g *Gate) Invalidate() {
	g.status.Store(int32(StatusInvalid))
}

// Reset reopens the gate for a new authenticated session.
func (g *Gate) Reset() {
	g.status.Store(int32(StatusActive))
}
