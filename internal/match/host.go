package match

import (
	"fmt"
	"sync"
)

// Builder produces the setup of a new match from a layout generator name.
// Asset and generator failures are returned as-is.
type Builder func(generator string) (Setup, error)

// Host owns the current match and replaces it only when a new one starts
// cleanly; a failed start leaves the previous match in place.
type Host struct {
	mu      sync.Mutex
	build   Builder
	current *Match
}

func NewHost(build Builder) *Host {
	return &Host{build: build}
}

// Current returns the running or most recently concluded match, or nil.
func (h *Host) Current() *Match {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Start builds and starts a match unless one is still active.
func (h *Host) Start(generator string) (*Match, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil && h.current.Active() {
		return nil, ErrAlreadyRunning
	}
	setup, err := h.build(generator)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", generator, err)
	}
	if setup.Name == "" {
		setup.Name = generator
	}
	m, err := New(setup)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", generator, err)
	}
	h.current = m
	return m, nil
}
