package stride

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/internal"
)

// budgetWindow is the number of substep cost samples averaged.
const budgetWindow = 30

// budget keeps a rolling window of per-substep wall cost, in seconds. Only the
// scheduler thread touches it.
type budget struct {
	samples *internal.CircularQueue[float64]
}

func newBudget() *budget {
	return &budget{samples: internal.NewCircularQueue[float64](budgetWindow)}
}

func (b *budget) add(seconds float64) {
	b.samples.Push(seconds)
}

// average returns the rolling mean cost, or 0 before any sample lands. A GC
// pause or debugger stall leaves a single huge sample in the window; anything
// beyond two deviations of the median is dropped before averaging.
func (b *budget) average() float64 {
	if b.samples.Len() == 0 {
		return 0
	}
	window := make([]float64, 0, b.samples.Len())
	for s := range b.samples.Iter() {
		window = append(window, s)
	}

	med := game.Median(window)
	if dev := game.StandardDeviation(window); dev > 0 {
		kept := window[:0]
		for _, s := range window {
			if math.Abs(s-med) <= 2*dev {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			window = kept
		}
	}
	return game.Mean(window)
}

// substepPlan decides how many fixed substeps the tick runs and at what dt.
// When recent substeps cost close to a full timestep of wall time, the plan
// clamps to a single substep and stretches dt so the simulation does not fall
// further behind. When substeps are cheap the backlog is drained, capped at
// MaxSubsteps.
func (c *Core) substepPlan() (numSteps int, dt float32) {
	dt = c.cfg.PhysicsDt
	target := int(c.timeAccum / dt)
	if target < 1 {
		return 0, dt
	}

	allowed := target
	cost := c.syncBudget.average()
	if async := c.asyncBudget.average(); async > cost {
		cost = async
	}
	if cost > 0 {
		ratio := cost / float64(dt)
		switch {
		case ratio > 0.95:
			allowed = 1
		case ratio < 0.5:
			ceiling := int(math32.Ceil(float32(1 / ratio)))
			if allowed > ceiling {
				allowed = ceiling
			}
		}
	}
	if allowed > c.cfg.MaxSubsteps {
		allowed = c.cfg.MaxSubsteps
	}
	if allowed < 1 {
		allowed = 1
	}

	if allowed < target {
		// Stretch the timestep so the clamped substeps still consume the
		// backlog, never shrinking below the configured dt.
		stretched := c.timeAccum / float32(allowed+1)
		if stretched > dt {
			dt = stretched
		}
	}
	return allowed, dt
}
