package api

import (
	"sync"
	"time"
)

// Components reported by the health endpoint.
const (
	ComponentCorpus = "corpus"
	ComponentLLM    = "llm"
)

// ComponentStatus is the last known state of one dependency.
type ComponentStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	Message     string    `json:"message,omitempty"`
}

// Health records the outcome of corpus reloads and LLM calls. It is safe for
// concurrent use.
type Health struct {
	mu         sync.RWMutex
	components map[string]ComponentStatus
	now        func() time.Time
}

// NewHealth creates an empty tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]ComponentStatus),
		now:        time.Now,
	}
}

// Record stores the outcome of a check on component. A nil err marks it
// healthy.
func (h *Health) Record(component string, err error, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	st := h.components[component]
	st.LastCheck = now
	if err != nil {
		st.Healthy = false
		st.Message = err.Error()
	} else {
		st.Healthy = true
		st.LastSuccess = now
		st.Message = message
	}
	h.components[component] = st
}

// Status returns the state of component and whether it has been recorded.
func (h *Health) Status(component string) (ComponentStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.components[component]
	return st, ok
}

// Snapshot returns a copy of every recorded component.
func (h *Health) Snapshot() map[string]ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]ComponentStatus, len(h.components))
	for name, st := range h.components {
		out[name] = st
	}
	return out
}

// Healthy reports whether every recorded component is healthy. A component
// that was never checked does not count against it.
func (h *Health) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, st := range h.components {
		if !st.Healthy {
			return false
		}
	}
	return true
}
