package common

import (
	"sync"
)

// BusyGate is the shared busy flag: one user mutation at a time, and none
// while a dashboard pipeline is loading. Callers are rejected, never queued.
type BusyGate struct {
	mu        sync.Mutex
	mutating  bool
	pipelines int
}

func NewBusyGate() *BusyGate {
	return &BusyGate{}
}

// TryBeginMutation claims the gate. It returns false when a mutation or a
// pipeline is already in flight.
func (g *BusyGate) TryBeginMutation() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutating || g.pipelines > 0 {
		return false
	}
	g.mutating = true
	return true
}

func (g *BusyGate) EndMutation() {
	g.mu.Lock()
	g.mutating = false
	g.mu.Unlock()
}

// BeginPipeline marks a pipeline run as in flight. The returned func ends it
// and is safe to call more than once.
func (g *BusyGate) BeginPipeline() func() {
	g.mu.Lock()
	g.pipelines++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.pipelines--
			g.mu.Unlock()
		})
	}
}

func (g *BusyGate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mutating || g.pipelines > 0
}
