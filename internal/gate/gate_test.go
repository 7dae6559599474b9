package gate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_FreshGateIsActive(t *testing.T) {
	g := New()
	assert.True(t, g.IsActive())
	assert.Equal(t, StatusActive, g.Status())

	var zero Gate
	assert.True(t, zero.IsActive())
}

func TestGate_StartInvalidation(t *testing.T) {
	g := New()
	g.StartInvalidation()

	assert.False(t, g.IsActive())
	assert.Equal(t, StatusInvalidating, g.Status())
}

func TestGate_StartInvalidationIsIdempotent(t *testing.T) {
	g := New()
	for i := 0; i < 5; i++ {
		assert.NotPanics(t, g.StartInvalidation)
		assert.False(t, g.IsActive())
	}
	assert.Equal(t, StatusInvalidating, g.Status())
}

func TestGate_InvalidateThenStartInvalidationStaysInactive(t *testing.T) {
	g := New()
	g.Invalidate()
	assert.False(t, g.IsActive())

	g.StartInvalidation()
	assert.False(t, g.IsActive())
}

func TestGate_InvalidateThenReset(t *testing.T) {
	g := New()
	g.Invalidate()
	g.Reset()

	assert.True(t, g.IsActive())
}

func TestGate_ResetAfterAnySequence(t *testing.T) {
	ops := map[string]func(*Gate){
		"start":      (*Gate).StartInvalidation,
		"invalidate": (*Gate).Invalidate,
		"reset":      (*Gate).Reset,
	}

	sequences := [][]string{
		{},
		{"start"},
		{"invalidate"},
		{"start", "invalidate"},
		{"invalidate", "start", "start"},
		{"reset", "invalidate", "start"},
		{"start", "reset", "invalidate"},
	}

	for _, seq := range sequences {
		g := New()
		for _, name := range seq {
			ops[name](g)
		}
		g.Reset()
		assert.True(t, g.IsActive(), "sequence %v", seq)
	}
}

func TestGate_ConcurrentTransitions(t *testing.T) {
	g := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); g.StartInvalidation() }()
		go func() { defer wg.Done(); g.Invalidate() }()
		go func() { defer wg.Done(); _ = g.IsActive() }()
	}
	wg.Wait()

	assert.Contains(t, []Status{StatusInvalidating, StatusInvalid}, g.Status())
	g.Reset()
	assert.True(t, g.IsActive())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "invalidating", StatusInvalidating.String())
	assert.Equal(t, "invalid", StatusInvalid.String())
	assert.Equal(t, "unknown", Status(42).String())
}
