package authsession

import (
	"context"
	"sync"
	"time"

	"finance-dashboard/internal/metrics"
)

// Registry holds one controller per client id.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	opts        Options
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		controllers: make(map[string]*Controller),
		opts:        opts,
	}
}

// GetOrCreate returns the controller for id, creating and mounting it on
// first use. ctx must carry the client's session so the persisted
// credential can be restored.
func (r *Registry) GetOrCreate(ctx context.Context, id string) (*Controller, error) {
	r.mu.Lock()
	c, ok := r.controllers[id]
	if !ok {
		c = NewController(id, r.opts)
		r.controllers[id] = c
		metrics.ActiveControllers.Set(float64(len(r.controllers)))
	}
	r.mu.Unlock()

	if err := c.Mount(ctx); err != nil {
		r.Remove(id)
		return nil, err
	}

	return c, nil
}

func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.controllers[id]
	return c, ok
}

// Remove unmounts and forgets the controller for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c, ok := r.controllers[id]
	delete(r.controllers, id)
	metrics.ActiveControllers.Set(float64(len(r.controllers)))
	r.mu.Unlock()

	if ok {
		c.Unmount()
	}
}

// Each calls fn for a snapshot of the registered controllers.
func (r *Registry) Each(fn func(*Controller)) {
	r.mu.Lock()
	snapshot := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		snapshot = append(snapshot, c)
	}
	r.mu.Unlock()

	for _, c := range snapshot {
		fn(c)
	}
}

// Sweep removes controllers without activity for longer than idle and
// returns how many were removed.
func (r *Registry) Sweep(idle time.Duration, now time.Time) int {
	var stale []string
	r.Each(func(c *Controller) {
		if now.Sub(c.LastActivity()) > idle {
			stale = append(stale, c.ID())
		}
	})

	for _, id := range stale {
		r.Remove(id)
	}

	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.controllers)
}

// Close unmounts every controller.
func (r *Registry) Close() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = make(map[string]*Controller)
	metrics.ActiveControllers.Set(0)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Unmount()
	}
}
