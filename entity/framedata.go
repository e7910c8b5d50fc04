package entity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
)

// FrameData is the immutable-per-tick snapshot of an actor handed to worker
// jobs. Jobs mutate only their own FrameData; the authoritative Actor record is
// merged on the scheduler thread at final sync.
type FrameData struct {
	Handle Handle
	Body   phys.BodyID
	Shape  phys.Shape

	// Position is the feet-origin position; the solver lifts it by HalfExtentsZ
	// for sweeps and restores it on write-back.
	Position mgl32.Vec3
	// PrevPosition tracks the position at the end of the previous completed
	// substep, for render interpolation.
	PrevPosition mgl32.Vec3
	Rotation     mgl32.Vec2
	Movement     mgl32.Vec3
	Inertia      mgl32.Vec3

	HalfExtentsZ float32
	WaterLevel   float32
	// SwimLevel is the z below which the shape center counts as submerged.
	SwimLevel float32

	Flying       bool
	Inert        bool
	Aquatic      bool
	WaterWalking bool
	IsPlayer     bool
	OnGround     bool
	OnSlope      bool
	SlowFall     float32

	IsInStorm      bool
	StormDirection mgl32.Vec3

	CollisionMask          phys.Layer
	SkipCollisionDetection bool

	// Skip marks actors the solver leaves untouched this tick: teleports being
	// applied, or idle grounded actors with nothing to do.
	Skip bool
	// Teleported marks that a scheduled offset was applied this snapshot; the
	// scheduler must resync the external body.
	Teleported bool

	// Outputs.
	StandingOn     phys.BodyID
	WalkingOnWater bool
	FallHeight     float32
	Landed         bool
	Moved          bool
}

// Reset clears a pooled FrameData for reuse.
func (fd *FrameData) Reset() {
	*fd = FrameData{}
}

// Snapshot fills fd from the actor record and applies any pending scheduled
// offset. swimScale is the fraction of the shape height below which the actor
// counts as submerged. Called on the scheduler thread under the actor's mutex.
func (a *Actor) Snapshot(fd *FrameData, waterLevel, swimScale float32, stormDir mgl32.Vec3, inStorm bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	skip := false
	teleported := false
	if a.hasScheduledOffset {
		teleported = true
		a.position = a.position.Add(a.scheduledOffset)
		a.previousPosition = a.position
		a.scheduledOffset = mgl32.Vec3{}
		a.hasScheduledOffset = false
		a.skipSimulation = true
	}
	if a.skipSimulation {
		skip = true
		a.skipSimulation = false
	}
	// Idle grounded actors have nothing to solve.
	if !skip && a.onGround && !a.onSlope &&
		game.Vec3ApproxZero(a.movement) && game.Vec3ApproxZero(a.inertia) {
		skip = true
	}

	hz := a.halfExtents[2]
	fd.Handle = a.handle
	fd.Body = a.body
	fd.Shape = a.shape
	fd.Position = a.position
	fd.PrevPosition = a.position
	fd.Rotation = a.rotation
	fd.Movement = a.movement
	fd.Inertia = a.inertia
	fd.HalfExtentsZ = hz
	fd.WaterLevel = waterLevel
	fd.SwimLevel = waterLevel - hz*swimScale
	fd.Flying = a.flying
	fd.Inert = a.inert
	fd.Aquatic = a.aquatic
	fd.WaterWalking = a.waterWalking
	fd.IsPlayer = a.isPlayer
	fd.OnGround = a.onGround
	fd.OnSlope = a.onSlope
	fd.SlowFall = a.slowFall
	fd.IsInStorm = inStorm
	fd.StormDirection = stormDir
	fd.CollisionMask = a.collisionMask
	fd.SkipCollisionDetection = a.skipCollisionDetection
	fd.Skip = skip
	fd.Teleported = teleported
	fd.FallHeight = a.fallHeight

	// The link below the actor is rediscovered every tick from geometry.
	fd.StandingOn = phys.InvalidBody
	fd.WalkingOnWater = false
	fd.Landed = false
	fd.Moved = false
	a.standingOn = phys.InvalidBody
}

// ApplyFrame merges a completed FrameData back into the record and writes the
// interpolated render position. Called on the scheduler thread under the
// actor's mutex.
func (a *Actor) ApplyFrame(fd *FrameData, interpFactor float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.previousPosition = fd.PrevPosition
	a.position = fd.Position
	a.inertia = fd.Inertia
	a.onGround = fd.OnGround
	a.onSlope = fd.OnSlope
	a.walkingOnWater = fd.WalkingOnWater
	a.standingOn = fd.StandingOn
	a.fallHeight = fd.FallHeight
	if fd.Landed {
		a.landed = true
	}
	a.renderPosition = game.Lerp(a.previousPosition, a.position, interpFactor)
}

// StuckState returns the stuck counters used by pre-step recovery.
func (a *Actor) StuckState() (frames int, lastPos mgl32.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stuckFrames, a.lastStuckPos
}

// SetStuckState stores the stuck counters after pre-step recovery.
func (a *Actor) SetStuckState(frames int, lastPos mgl32.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stuckFrames = frames
	a.lastStuckPos = lastPos
}

// UpdateRender refreshes the interpolated render position without running a
// substep; used when the accumulated time is below one fixed step.
func (a *Actor) UpdateRender(interpFactor float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderPosition = game.Lerp(a.previousPosition, a.position, interpFactor)
}

// ConsumeLandEvent reports and clears a landing that happened during the last
// tick, returning the fall height it ended.
func (a *Actor) ConsumeLandEvent() (fallHeight float32, landed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.landed {
		return 0, false
	}
	a.landed = false
	return a.fallHeight, true
}
