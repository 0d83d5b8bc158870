package forces

import (
	"sync"
	"time"

	"github.com/vanderheijden86/orbweave/pkg/debug"
	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
)

// StopReason says why a relaxation run ended. A deadline exit is a normal
// termination path, not an error.
type StopReason string

const (
	ReasonConverged  StopReason = "converged"
	ReasonDeadline   StopReason = "deadline"
	ReasonSuperseded StopReason = "superseded"
)

// RunConfig controls one relaxation run's pacing and exits.
type RunConfig struct {
	// TickInterval is the delay between solver steps. Zero means run steps
	// back to back (useful for headless export and tests).
	TickInterval time.Duration `yaml:"tick_interval"`

	// Deadline is the hard wall-clock ceiling for a run. The run stops at
	// the deadline even if the solver never converges, so the view cannot
	// hang in perpetual motion on pathological inputs.
	Deadline time.Duration `yaml:"deadline"`

	// ConvergenceThreshold is the mean per-node displacement below which
	// the run counts as settled.
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`

	// SettleTicks is how many consecutive sub-threshold steps are required
	// before declaring convergence.
	SettleTicks int `yaml:"settle_ticks"`
}

// DefaultRunConfig returns the reference pacing.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		TickInterval:         16 * time.Millisecond,
		Deadline:             6 * time.Second,
		ConvergenceThreshold: 0.12,
		SettleTicks:          3,
	}
}

// TickFunc observes intermediate positions. Called once per solver step
// with the node/link set the run owns.
type TickFunc func(nodes []*model.LayoutNode, links []model.Link)

// SettledFunc observes final positions, exactly once per run that was not
// superseded.
type SettledFunc func(nodes []*model.LayoutNode, reason StopReason)

// Relaxer drives a Solver until convergence or deadline. Starting a new run
// supersedes any run in flight: each run captures a generation number, and
// callbacks whose generation no longer matches become no-ops. At most one
// run mutates positions at a time: every solver step runs under stepMu, and
// Start/Stop take stepMu before bumping the generation, so once either
// returns the superseded run never writes another position.
type Relaxer struct {
	mu         sync.Mutex
	solver     Solver
	cfg        RunConfig
	generation uint64
	running    bool

	// stepMu serializes solver steps with Start/Stop. Lock order is always
	// stepMu before mu.
	stepMu sync.Mutex
}

// NewRelaxer builds a relaxer around the given solver.
func NewRelaxer(solver Solver, cfg RunConfig) *Relaxer {
	return &Relaxer{solver: solver, cfg: cfg}
}

// Generation returns the current run generation. Mostly for tests.
func (r *Relaxer) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Start begins relaxing the given node/link set. Any in-flight run is
// superseded first, and any step it has in flight completes before Start
// returns. onTick and onSettled may be nil.
func (r *Relaxer) Start(nodes []*model.LayoutNode, links []model.Link, onTick TickFunc, onSettled SettledFunc) {
	r.stepMu.Lock()
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.running = true
	r.mu.Unlock()
	r.stepMu.Unlock()

	go r.run(gen, nodes, links, onTick, onSettled)
}

// Stop supersedes the current run, if any, blocking until an in-flight
// solver step has finished. After Stop returns the superseded run writes no
// more positions. Idempotent: stopping an already-stopped relaxer is a
// no-op.
func (r *Relaxer) Stop() {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.generation++
	r.running = false
}

// alive reports whether the given generation still owns the relaxer.
func (r *Relaxer) alive(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation == gen
}

// finish marks the run done if it still owns the relaxer; the return value
// says whether this call won (and so whether callbacks may fire).
func (r *Relaxer) finish(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return false
	}
	r.running = false
	return true
}

func (r *Relaxer) run(gen uint64, nodes []*model.LayoutNode, links []model.Link, onTick TickFunc, onSettled SettledFunc) {
	defer metrics.Timer(metrics.Relaxation)()

	deadline := time.Now().Add(r.cfg.Deadline)
	settled := 0
	steps := 0

	for {
		if time.Now().After(deadline) {
			if r.finish(gen) && onSettled != nil {
				debug.Log("relaxation run %d hit deadline after %d steps", gen, steps)
				onSettled(nodes, ReasonDeadline)
			}
			return
		}

		// The liveness check and the step share one critical section so a
		// superseded run cannot slip in a step after Start/Stop returned.
		// The tick callback runs outside it: it may block on the UI message
		// queue, and Stop must never wait on that.
		r.stepMu.Lock()
		if !r.alive(gen) {
			r.stepMu.Unlock()
			// Superseded: a newer run owns the node positions now. No
			// callbacks; the old pass simply evaporates.
			debug.Log("relaxation run %d superseded after %d steps", gen, steps)
			return
		}
		moved := r.solver.Step(nodes, links)
		r.stepMu.Unlock()
		steps++

		if onTick != nil && r.alive(gen) {
			onTick(nodes, links)
		}

		if moved <= r.cfg.ConvergenceThreshold {
			settled++
			if settled >= r.cfg.SettleTicks {
				if r.finish(gen) && onSettled != nil {
					debug.Log("relaxation run %d converged after %d steps", gen, steps)
					onSettled(nodes, ReasonConverged)
				}
				return
			}
		} else {
			settled = 0
		}

		if r.cfg.TickInterval > 0 {
			time.Sleep(r.cfg.TickInterval)
		}
	}
}
