package search

import "sync/atomic"

// Progress tracks a running driver's state with atomics so the API layer
// can poll it without a lock, the same atomic-counter shape a block
// scanner uses to report height/tx progress.
type Progress struct {
	running    atomic.Bool
	level      atomic.Int64
	evaluated  atomic.Int64
	considered atomic.Int64
}

// Snapshot is the point-in-time, JSON-friendly view of a Progress.
type Snapshot struct {
	Running    bool  `json:"running"`
	Level      int64 `json:"level"`
	Evaluated  int64 `json:"evaluated"`
	Considered int64 `json:"considered"`
}

// Snapshot returns the current progress state.
func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		Running:    p.running.Load(),
		Level:      p.level.Load(),
		Evaluated:  p.evaluated.Load(),
		Considered: p.considered.Load(),
	}
}

func (p *Progress) start()         { p.running.Store(true) }
func (p *Progress) stop()          { p.running.Store(false) }
func (p *Progress) setLevel(l int) { p.level.Store(int64(l)) }
func (p *Progress) addEvaluated()  { p.evaluated.Add(1) }
func (p *Progress) addConsidered() { p.considered.Add(1) }
