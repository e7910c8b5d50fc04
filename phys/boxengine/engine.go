// Package boxengine is an axis-aligned reference implementation of the
// external engine contract. Every convex shape collides as its bounding box
// and heightfields are sampled analytically. It backs the test suite and
// headless tools; production builds bind a real rigid-body engine instead.
package boxengine

import (
	"sync"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/serror"
)

type body struct {
	id     phys.BodyID
	shape  phys.Shape
	pos    mgl32.Vec3
	vel    mgl32.Vec3
	layer  phys.Layer
	motion phys.MotionKind
	// gravityFactor scales engine gravity for dynamic bodies.
	gravityFactor float32
	mass          float32
	userData      uint64
}

// box returns the body's world-space bounding box. HalfSpace and HeightField
// bodies have no meaningful box and report ok false.
func (b *body) box() (cube.BBox, bool) {
	switch b.shape.(type) {
	case phys.HalfSpace, phys.HeightField:
		return cube.BBox{}, false
	}
	he := b.shape.HalfExtents()
	return cube.Box(
		b.pos[0]-he[0], b.pos[1]-he[1], b.pos[2]-he[2],
		b.pos[0]+he[0], b.pos[1]+he[1], b.pos[2]+he[2],
	), true
}

// Engine implements phys.Engine over a flat body registry. Bodies are iterated
// in creation order so queries are deterministic.
type Engine struct {
	mu     sync.RWMutex
	bodies map[phys.BodyID]*body
	order  []phys.BodyID
	nextID phys.BodyID

	listener phys.ContactListener

	// Gravity is the world acceleration applied to dynamic bodies, in units
	// per second squared.
	Gravity mgl32.Vec3
}

var _ phys.Engine = (*Engine)(nil)

// New returns an empty engine with default gravity.
func New() *Engine {
	return &Engine{
		bodies:  make(map[phys.BodyID]*body),
		Gravity: mgl32.Vec3{0, 0, -game.Gravity * game.UnitsPerMeter},
	}
}

// AddBody registers a body and returns its id.
func (e *Engine) AddBody(def phys.BodyDef) (phys.BodyID, error) {
	if def.Shape == nil {
		return phys.InvalidBody, serror.ErrInvalidBody
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	b := &body{
		id:            e.nextID,
		shape:         def.Shape,
		pos:           def.Position,
		layer:         def.Layer,
		motion:        def.Motion,
		gravityFactor: def.GravityFactor,
		mass:          def.Mass,
		userData:      def.UserData,
	}
	if b.mass <= 0 {
		b.mass = 1
	}
	e.bodies[b.id] = b
	e.order = append(e.order, b.id)
	return b.id, nil
}

// RemoveBody destroys a body. Removing an unknown id is a no-op.
func (e *Engine) RemoveBody(id phys.BodyID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.bodies[id]; !ok {
		return
	}
	delete(e.bodies, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *Engine) Position(id phys.BodyID) (mgl32.Vec3, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bodies[id]
	if !ok {
		return mgl32.Vec3{}, false
	}
	return b.pos, true
}

func (e *Engine) SetPosition(id phys.BodyID, pos mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		b.pos = pos
	}
}

func (e *Engine) Velocity(id phys.BodyID) (mgl32.Vec3, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bodies[id]
	if !ok {
		return mgl32.Vec3{}, false
	}
	return b.vel, true
}

func (e *Engine) SetVelocity(id phys.BodyID, vel mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		b.vel = vel
	}
}

// AddImpulse applies an instantaneous velocity change scaled by mass.
func (e *Engine) AddImpulse(id phys.BodyID, impulse mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		b.vel = b.vel.Add(impulse.Mul(1 / b.mass))
	}
}

func (e *Engine) UserData(id phys.BodyID) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if b, ok := e.bodies[id]; ok {
		return b.userData
	}
	return 0
}

func (e *Engine) SetUserData(id phys.BodyID, v uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		b.userData = v
	}
}

func (e *Engine) BodyShape(id phys.BodyID) (phys.Shape, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bodies[id]
	if !ok {
		return nil, false
	}
	return b.shape, true
}

func (e *Engine) BodyLayer(id phys.BodyID) (phys.Layer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bodies[id]
	if !ok {
		return 0, false
	}
	return b.layer, true
}

func (e *Engine) SetContactListener(l phys.ContactListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// CastShape sweeps shape between two center positions and returns the nearest
// hit.
func (e *Engine) CastShape(shape phys.Shape, from, to mgl32.Vec3, filter phys.Filter) (phys.Hit, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.castLocked(shape.HalfExtents(), from, to.Sub(from), filter)
}

// CastRay casts a thin ray; dir carries direction and length.
func (e *Engine) CastRay(from, dir mgl32.Vec3, filter phys.Filter) (phys.Hit, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.castLocked(mgl32.Vec3{}, from, dir, filter)
}

// castLocked runs the sweep against every eligible body and keeps the nearest
// hit. Caller holds at least the read lock.
func (e *Engine) castLocked(he, from, motion mgl32.Vec3, filter phys.Filter) (phys.Hit, bool) {
	best := phys.Hit{Fraction: 2}
	found := false
	for _, id := range e.order {
		b := e.bodies[id]
		if b.layer&filter.Mask == 0 || filter.Excludes(id) {
			continue
		}
		hit, ok := sweepBody(b, he, from, motion)
		if !ok || hit.Fraction >= best.Fraction {
			continue
		}
		hit.Body = b.id
		hit.Layer = b.layer
		best = hit
		found = true
	}
	if !found {
		return phys.Hit{}, false
	}
	return best, true
}

// CollideShape enumerates every body overlapping the shape placed at pos.
func (e *Engine) CollideShape(shape phys.Shape, pos mgl32.Vec3, filter phys.Filter) []phys.Contact {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.collideLocked(shape.HalfExtents(), pos, filter)
}

func (e *Engine) collideLocked(he, pos mgl32.Vec3, filter phys.Filter) []phys.Contact {
	var out []phys.Contact
	for _, id := range e.order {
		b := e.bodies[id]
		if b.layer&filter.Mask == 0 || filter.Excludes(id) {
			continue
		}
		c, ok := overlapBody(b, he, pos)
		if !ok {
			continue
		}
		c.Body = b.id
		c.Layer = b.layer
		out = append(out, c)
	}
	return out
}

// Step integrates dynamic bodies, resolves linear-cast sweeps through the
// contact listener and reports kinematic overlap contacts. Listener callbacks
// run without the body lock held, so they may query the engine freely.
func (e *Engine) Step(dt float32) {
	e.mu.Lock()
	listener := e.listener
	var casts, movers []phys.BodyID
	for _, id := range e.order {
		b := e.bodies[id]
		switch b.motion {
		case phys.MotionDynamic:
			b.vel = b.vel.Add(e.Gravity.Mul(b.gravityFactor * dt))
			b.pos = b.pos.Add(b.vel.Mul(dt))
		case phys.MotionLinearCast:
			b.vel = b.vel.Add(e.Gravity.Mul(b.gravityFactor * dt))
			casts = append(casts, id)
		case phys.MotionKinematic:
			movers = append(movers, id)
		}
	}
	e.mu.Unlock()

	for _, id := range casts {
		e.stepLinearCast(id, dt, listener)
	}
	if listener != nil {
		e.reportOverlaps(movers, listener)
	}
}

// stepLinearCast sweeps a projectile along its velocity, skipping past
// rejected contacts, and stops it on the first accepted one.
func (e *Engine) stepLinearCast(id phys.BodyID, dt float32, listener phys.ContactListener) {
	e.mu.RLock()
	b, ok := e.bodies[id]
	if !ok {
		e.mu.RUnlock()
		return
	}
	pos, vel, he := b.pos, b.vel, b.shape.HalfExtents()
	e.mu.RUnlock()

	motion := vel.Mul(dt)
	if motion.LenSqr() == 0 {
		return
	}
	filter := phys.Filter{Mask: phys.MaskStatics | phys.MaskMoving | phys.LayerWater, Exclude: []phys.BodyID{id}}

	for {
		e.mu.RLock()
		hit, found := e.castLocked(he, pos, motion, filter)
		e.mu.RUnlock()
		if !found {
			e.SetPosition(id, pos.Add(motion))
			return
		}
		if listener != nil && !listener.OnContactValidate(id, hit.Body) {
			filter.Exclude = append(filter.Exclude, hit.Body)
			continue
		}
		e.SetPosition(id, hit.EndPos)
		e.SetVelocity(id, mgl32.Vec3{})
		if listener != nil {
			listener.OnContactAdded(id, hit.Body, hit.Point, hit.Normal)
			listener.OnContactAdded(hit.Body, id, hit.Point, hit.Normal.Mul(-1))
		}
		return
	}
}

// reportOverlaps fires contact callbacks for kinematic bodies overlapping
// matrix-collidable neighbors.
func (e *Engine) reportOverlaps(movers []phys.BodyID, listener phys.ContactListener) {
	for _, id := range movers {
		e.mu.RLock()
		b, ok := e.bodies[id]
		if !ok {
			e.mu.RUnlock()
			continue
		}
		layer := b.layer
		contacts := e.collideLocked(b.shape.HalfExtents(), b.pos, phys.Filter{Mask: phys.MaskAll, Exclude: []phys.BodyID{id}})
		e.mu.RUnlock()

		for _, c := range contacts {
			if !phys.Collides(layer, c.Layer) {
				continue
			}
			if !listener.OnContactValidate(id, c.Body) {
				continue
			}
			listener.OnContactAdded(id, c.Body, c.Point, c.Normal)
			listener.OnContactAdded(c.Body, id, c.Point, c.Normal.Mul(-1))
		}
	}
}
