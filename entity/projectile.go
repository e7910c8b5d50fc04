package entity

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"

	"github.com/stride-engine/stride/phys"
)

// ProjectileDef describes an in-flight projectile: a dynamic sphere with
// gravity disabled and linear-cast motion quality.
type ProjectileDef struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Radius   float32
	// Caster is the body the projectile can never hit.
	Caster phys.BodyID
	// ValidTargets restricts actor hits to the listed bodies. Empty means any
	// actor is a valid target.
	ValidTargets []phys.BodyID
}

// ProjectileHit is the contact recorded on the projectile's first accepted
// collision, reported to the subscriber on teardown.
type ProjectileHit struct {
	Target   phys.BodyID
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	HitWater bool
}

// Projectile resolves its first accepted contact under lock-free activation
// semantics: the active flag transitions true to false exactly once, whichever
// engine thread wins the race.
type Projectile struct {
	id   Handle
	body phys.BodyID

	active   atomic.Bool
	hitWater atomic.Bool

	caster       phys.BodyID
	validTargets []phys.BodyID

	// hitMu guards the hit record written by the winning contact.
	hitMu       sync.Mutex
	hitTarget   phys.BodyID
	hitPosition mgl32.Vec3
	hitNormal   mgl32.Vec3
}

// NewProjectile builds a projectile record. The body id is attached by the
// core once the external body exists.
func NewProjectile(handle Handle, def ProjectileDef) *Projectile {
	p := &Projectile{
		id:           handle,
		caster:       def.Caster,
		validTargets: def.ValidTargets,
	}
	p.active.Store(true)
	return p
}

func (p *Projectile) Kind() Kind        { return KindProjectile }
func (p *Projectile) Handle() Handle    { return p.id }
func (p *Projectile) Body() phys.BodyID { return p.body }

// AttachBody links the external-engine body. Called once on creation.
func (p *Projectile) AttachBody(id phys.BodyID) { p.body = id }

// Active reports whether the projectile is still in flight.
func (p *Projectile) Active() bool { return p.active.Load() }

// Caster returns the body the projectile ignores.
func (p *Projectile) Caster() phys.BodyID { return p.caster }

func (p *Projectile) isValidTarget(body phys.BodyID) bool {
	if len(p.validTargets) == 0 {
		return true
	}
	for _, t := range p.validTargets {
		if t == body {
			return true
		}
	}
	return false
}

// OnContactValidate filters candidate pairs: the caster never hits itself,
// spent projectiles hit nothing, and actor hits must be on the valid-target
// list.
func (p *Projectile) OnContactValidate(other Holder) bool {
	if !p.active.Load() {
		return false
	}
	if other == nil {
		// Body mid-teardown; skip rather than hit a ghost.
		return false
	}
	if other.Body() == p.caster {
		return false
	}
	switch o := other.(type) {
	case *Projectile:
		return o.active.Load() && p.isValidTarget(o.Body()) && o.isValidTarget(p.body)
	case *Actor:
		return p.isValidTarget(other.Body())
	default:
		return true
	}
}

// OnContactAdded records the first accepted contact. The compare-and-swap on
// the active flag decides the winner; losers return without touching the hit
// record.
func (p *Projectile) OnContactAdded(other Holder, point, normal mgl32.Vec3) {
	if !p.active.CompareAndSwap(true, false) {
		return
	}

	p.hitMu.Lock()
	if other != nil {
		p.hitTarget = other.Body()
	}
	p.hitPosition = point
	p.hitNormal = normal
	p.hitMu.Unlock()

	if other == nil {
		return
	}
	switch o := other.(type) {
	case *Projectile:
		// Mirror the hit so both projectiles expire on the same contact.
		if o.active.CompareAndSwap(true, false) {
			o.hitMu.Lock()
			o.hitTarget = p.body
			o.hitPosition = point
			o.hitNormal = normal.Mul(-1)
			o.hitMu.Unlock()
		}
	case *Water:
		p.hitWater.Store(true)
	}
}

// Hit returns the recorded contact. Valid once Active reports false.
func (p *Projectile) Hit() ProjectileHit {
	p.hitMu.Lock()
	defer p.hitMu.Unlock()
	return ProjectileHit{
		Target:   p.hitTarget,
		Position: p.hitPosition,
		Normal:   p.hitNormal,
		HitWater: p.hitWater.Load(),
	}
}
