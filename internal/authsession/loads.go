package authsession

import (
	"encoding/json"
	"time"
)

type LoadStatus int

const (
	LoadIdle LoadStatus = iota
	LoadPending
	LoadSuccess
	LoadError
)

func (s LoadStatus) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadSuccess:
		return "success"
	case LoadError:
		return "error"
	default:
		return "idle"
	}
}

func (s LoadStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Load tracks one profile fetch.
type Load[T any] struct {
	Status    LoadStatus `json:"status"`
	Data      T          `json:"data,omitempty"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitzero"`
}

// started reports whether the load has been triggered for the current
// session. Pending and settled loads both count.
func (l *Load[T]) started() bool {
	return l.Status != LoadIdle
}

func (l *Load[T]) begin(now time.Time) {
	*l = Load[T]{Status: LoadPending, UpdatedAt: now}
}

func (l *Load[T]) succeed(data T, now time.Time) {
	*l = Load[T]{Status: LoadSuccess, Data: data, UpdatedAt: now}
}

func (l *Load[T]) fail(err error, now time.Time) {
	*l = Load[T]{Status: LoadError, Error: err.Error(), UpdatedAt: now}
}

func (l *Load[T]) reset() {
	*l = Load[T]{}
}
