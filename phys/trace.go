package phys

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/game"
)

// Tracer wraps the external engine's sweep and ray primitives with the policies
// the movement solver relies on: backface handling, self-ignore, grazing-hit
// rejection and the actor-overlap push-out rule.
type Tracer struct {
	eng Engine
	// MinCollisionDot rejects non-actor sweep contacts whose normal does not
	// oppose the motion direction by at least this much.
	MinCollisionDot float32

	// nonSolid holds actor bodies other movers pass through. The bodies still
	// sweep against the world themselves.
	mu       sync.RWMutex
	nonSolid map[BodyID]struct{}
}

// NewTracer returns a Tracer over the given engine.
func NewTracer(eng Engine) *Tracer {
	return &Tracer{
		eng:             eng,
		MinCollisionDot: game.MinCollisionDot,
		nonSolid:        make(map[BodyID]struct{}),
	}
}

// SetNonSolid marks or unmarks an actor body as passable for other movers.
func (t *Tracer) SetNonSolid(id BodyID, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on {
		t.nonSolid[id] = struct{}{}
	} else {
		delete(t.nonSolid, id)
	}
}

func (t *Tracer) isNonSolid(id BodyID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.nonSolid[id]
	return ok
}

// Engine exposes the wrapped engine for operations the adapter does not mediate
// (impulses, body inspection).
func (t *Tracer) Engine() Engine { return t.eng }

// rejection retries before the sweep gives up and reports a miss.
const maxRejectedHits = 4

// Trace sweeps the body's own shape from one center position to another. A miss
// reports Fraction 1, EndPos at the target and an upward normal. Triangle-mesh
// world geometry ignores backfaces; convex pairs collide against them so
// overlapping actors resolve properly.
func (t *Tracer) Trace(body BodyID, shape Shape, from, to mgl32.Vec3, mask Layer) Hit {
	motion := to.Sub(from)
	filter := Filter{Mask: mask, Exclude: []BodyID{body}}

	for i := 0; i < maxRejectedHits; i++ {
		hit, ok := t.eng.CastShape(shape, from, to, filter)
		if !ok {
			break
		}
		if t.acceptHit(body, from, motion, &hit) {
			return hit
		}
		filter.Exclude = append(filter.Exclude, hit.Body)
	}
	return missAt(to)
}

// RayCast fires a thin ray. dir carries both direction and length.
func (t *Tracer) RayCast(from, dir mgl32.Vec3, mask Layer, backfaces bool) (Hit, bool) {
	return t.eng.CastRay(from, dir, Filter{Mask: mask, Backfaces: backfaces})
}

// acceptHit applies the adapter's hit policies. It may rewrite the hit normal
// for actor overlaps.
func (t *Tracer) acceptHit(self BodyID, from, motion mgl32.Vec3, hit *Hit) bool {
	if hit.Layer == LayerActor {
		if t.isNonSolid(hit.Body) {
			return false
		}
		if hit.Fraction > 0 {
			return true
		}
		// Overlapping at the start of the sweep: synthesize a horizontal
		// push-out normal from the two centers and only block when the actor is
		// actually moving toward the other one. Standing close must not block.
		otherPos, ok := t.eng.Position(hit.Body)
		if !ok {
			return false
		}
		delta := mgl32.Vec3{from[0] - otherPos[0], from[1] - otherPos[1], 0}
		if delta.LenSqr() < 1e-10 {
			delta = mgl32.Vec3{0, 0, 1}
		} else {
			delta = delta.Normalize()
		}
		if motion.Dot(delta) >= 0 {
			return false
		}
		hit.Normal = delta
		hit.EndPos = from
		return true
	}

	if motion.LenSqr() < 1e-10 {
		return true
	}
	// Ignore rear-face grazing contacts: a real blocking contact has its normal
	// opposing the motion.
	return motion.Normalize().Dot(hit.Normal) < -t.MinCollisionDot
}

func missAt(to mgl32.Vec3) Hit {
	return Hit{
		Fraction: 1,
		EndPos:   to,
		Normal:   mgl32.Vec3{0, 0, 1},
	}
}
