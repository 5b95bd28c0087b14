package movement

import "sync"

// Registry is the set of agents that flock together. Writers take the lock
// only at registration time; each tick reads one Snapshot, so removals never
// show up halfway through a pass.
type Registry struct {
	mu     sync.RWMutex
	agents []*Agent
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a. Adding the same agent twice is a no-op.
func (r *Registry) Add(a *Agent) {
	if a == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.agents {
		if x == a {
			return
		}
	}
	r.agents = append(r.agents, a)
}

// Remove deregisters a and reports whether it was present.
func (r *Registry) Remove(a *Agent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.agents {
		if x == a {
			r.agents = append(r.agents[:i:i], r.agents[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Contains(a *Agent) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, x := range r.agents {
		if x == a {
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// Snapshot returns the agents in registration order. The slice is a copy.
func (r *Registry) Snapshot() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, len(r.agents))
	copy(out, r.agents)
	return out
}
