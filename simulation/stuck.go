package simulation

import (
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/settings"
)

// StuckState carries the per-actor stuck counters between pre-step passes.
type StuckState struct {
	// Frames counts consecutive overlapping frames without progress.
	Frames int
	// LastPos is where the overlap streak started.
	LastPos mgl32.Vec3
}

// Unstick detects geometric overlap of the shape with the static world and
// searches a small offset space for the minimum displacement that reduces it.
// pos is the collision shape's center; the returned position replaces it when
// moved is true. Runs before the substep loop, only for actors that intend to
// move.
func Unstick(eng phys.Engine, log *slog.Logger, body phys.BodyID, shape phys.Shape, pos mgl32.Vec3, st StuckState, cfg *settings.Settings) (mgl32.Vec3, StuckState, bool) {
	filter := phys.Filter{Mask: phys.MaskStuckRecovery, Exclude: []phys.BodyID{body}}
	contacts := eng.CollideShape(shape, pos, filter)

	deepest := float32(0)
	for _, c := range contacts {
		deepest = math32.Max(deepest, c.Depth)
	}
	if len(contacts) == 0 || deepest <= cfg.AllowedPenetration {
		return pos, StuckState{}, false
	}

	if st.Frames == 0 {
		st.LastPos = pos
	}
	st.Frames++
	if st.Frames > game.StuckBailFrames && pos.Sub(st.LastPos).Len() < game.StuckBailDistance {
		// Recovery cannot win here; clamp the counter and let the caller treat
		// the actor as standing on flat ground so animation keeps running.
		st.Frames = game.StuckBailFrames + 1
		if log != nil {
			log.Debug(game.ErrorStuckBailout, "body", uint32(body), "frames", st.Frames)
		}
		return pos, st, false
	}

	// Sum the signed penetration deltas, clamped per axis by the largest single
	// penetration seen, so opposing contacts do not cancel into a huge shove.
	var delta, axisMax mgl32.Vec3
	for _, c := range contacts {
		d := c.Normal.Mul(c.Depth)
		delta = delta.Add(d)
		for i := 0; i < 3; i++ {
			axisMax[i] = math32.Max(axisMax[i], math32.Abs(d[i]))
		}
	}
	for i := 0; i < 3; i++ {
		delta[i] = game.ClampFloat(delta[i], -axisMax[i], axisMax[i])
	}

	base := overlapAmount(contacts)
	attempt := func(d mgl32.Vec3) (mgl32.Vec3, bool) {
		trial := pos.Add(d)
		if overlapAmount(eng.CollideShape(shape, trial, filter)) < base {
			return trial, true
		}
		return pos, false
	}

	if moved, ok := attempt(delta); ok {
		return moved, st, true
	}
	if moved, ok := attempt(mgl32.Vec3{0, 0, math32.Abs(delta[2])}); ok {
		return moved, st, true
	}
	if moved, ok := attempt(mgl32.Vec3{0, 0, game.StuckLiftBump}); ok {
		return moved, st, true
	}
	return pos, st, false
}

func overlapAmount(contacts []phys.Contact) float32 {
	total := float32(0)
	for _, c := range contacts {
		total += c.Depth
	}
	return total
}
