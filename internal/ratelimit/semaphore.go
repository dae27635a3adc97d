package ratelimit

import "sync"

// Semaphores is a named set of bounded concurrency gates, replacing the
// original's process-wide semaphore_manager singleton per the
// re-architecture notes: this type is an explicit component carried in a
// process Context, not a package-level singleton.
type Semaphores struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

// NewSemaphores builds a Semaphores set from name->capacity pairs.
func NewSemaphores(capacities map[string]int) *Semaphores {
	gates := make(map[string]chan struct{}, len(capacities))
	for name, cap := range capacities {
		gates[name] = make(chan struct{}, cap)
	}
	return &Semaphores{gates: gates}
}

// Acquire blocks until a slot in the named gate is free and returns a
// release function. If name is unknown, Acquire is a no-op (unlimited).
func (s *Semaphores) Acquire(name string) func() {
	s.mu.Lock()
	gate, ok := s.gates[name]
	s.mu.Unlock()
	if !ok {
		return func() {}
	}
	gate <- struct{}{}
	return func() { <-gate }
}

// DefaultSemaphoreCapacities names the two gates this bot uses: database
// writes (bulk saves, batch deletes) and outbound platform sends.
var DefaultSemaphoreCapacities = map[string]int{
	"database_write": 10,
	"platform_send":  20,
}
