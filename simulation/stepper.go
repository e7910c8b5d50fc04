package simulation

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/settings"
)

// stepUp surmounts small obstacles without visible climbing: raise the shape by
// the step height, re-sweep the blocked move from up there, then drop until the
// ground catches it. Returns the landing position and the fraction of the move
// the forward sweep consumed.
func stepUp(fd *entity.FrameData, tr *phys.Tracer, cfg *settings.Settings, pos, velocity mgl32.Vec3, remaining float32) (mgl32.Vec3, float32, bool) {
	up := mgl32.Vec3{0, 0, cfg.StepSizeUp}
	upHit := tr.Trace(fd.Body, fd.Shape, pos, pos.Add(up), fd.CollisionMask)
	lift := cfg.StepSizeUp * upHit.Fraction
	if upHit.Fraction < 1 {
		lift -= cfg.CollisionMargin
		if lift <= 0 {
			return pos, 0, false
		}
	}
	raised := pos
	raised[2] += lift

	forward := velocity.Mul(remaining)
	fwdHit := tr.Trace(fd.Body, fd.Shape, raised, raised.Add(forward), fd.CollisionMask)
	if fwdHit.Fraction < 1e-3 {
		// Blocked even from the raised position; this is a wall, not a step.
		return pos, 0, false
	}
	landing := fwdHit.EndPos
	if fwdHit.Fraction < 1 {
		landing = landing.Sub(velocity.Normalize().Mul(cfg.CollisionMargin))
	}

	downDist := lift + cfg.GroundOffset
	downHit := tr.Trace(fd.Body, fd.Shape, landing, landing.Sub(mgl32.Vec3{0, 0, downDist}), fd.CollisionMask)
	if downHit.Fraction >= 1 {
		// Nothing to land on within the step; falling off here would turn a
		// step into a launch.
		return pos, 0, false
	}
	if downHit.Layer == phys.LayerActor {
		return pos, 0, false
	}
	if !game.IsWalkableNormal(downHit.Normal, cfg.WalkableSlopeDot) {
		return pos, 0, false
	}

	end := downHit.EndPos
	if end[2] < pos[2]-1e-3 {
		return pos, 0, false
	}
	return end, fwdHit.Fraction, true
}
