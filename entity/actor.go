package entity

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
)

// ActorDef describes an actor to register with the core.
type ActorDef struct {
	Position mgl32.Vec3
	// Rotation is pitch (X) and yaw (Y) in degrees.
	Rotation mgl32.Vec2
	// HalfExtents are the unscaled collision half extents. If zero, MeshBounds
	// is used to synthesize a box; if that is empty too the actor is rejected.
	HalfExtents mgl32.Vec3
	// MeshBounds is the actor mesh's bounding half extents, used as a fallback
	// collision shape and for the rendering extents adjustment.
	MeshBounds mgl32.Vec3
	// MeshTranslation is the offset from the feet origin to the collision shape
	// center, before scaling.
	MeshTranslation mgl32.Vec3
	Scale           mgl32.Vec3
	// AdjustRendering keeps renderingHalfExtents at the mesh bounds instead of
	// the collision extents, for classes flagged that way.
	AdjustRendering bool

	IsPlayer bool
	Flying   bool
	Aquatic  bool
	// WaterWalking lets the actor treat the water surface as ground.
	WaterWalking bool
	// SlowFall below 1 damps falling; 1 means no effect.
	SlowFall float32

	CollisionMask phys.Layer
}

// Actor is the authoritative per-actor record. Only the scheduler thread
// mutates it outside the per-actor mutex; workers operate on FrameData copies.
type Actor struct {
	mu sync.Mutex

	handle Handle
	body   phys.BodyID
	shape  phys.Shape

	// position is the world position of the actor's feet origin.
	position mgl32.Vec3
	// previousPosition is the position at the end of the previous completed
	// substep. Used only for render interpolation.
	previousPosition mgl32.Vec3
	// renderPosition is the interpolated position written at final sync.
	renderPosition mgl32.Vec3
	// rotation is pitch (X) and yaw (Y) in degrees.
	rotation mgl32.Vec2
	// inertia is carried-over velocity across substeps, distinct from the
	// per-tick intended movement.
	inertia mgl32.Vec3

	// movement is the queued intended movement vector; QueueMovement overwrites
	// any prior entry.
	movement mgl32.Vec3

	scale                mgl32.Vec3
	originalHalfExtents  mgl32.Vec3
	halfExtents          mgl32.Vec3
	renderingHalfExtents mgl32.Vec3
	meshTranslation      mgl32.Vec3

	onGround       bool
	onSlope        bool
	walkingOnWater bool
	// standingOn is the body most recently found directly beneath the actor.
	// Stored as an id, never as an owning pointer.
	standingOn phys.BodyID

	// scheduledOffset is applied atomically at the next snapshot boundary.
	scheduledOffset    mgl32.Vec3
	hasScheduledOffset bool
	// skipSimulation carries through one tick after a scheduled offset so the
	// solver does not fight a script teleport.
	skipSimulation bool

	// stuckFrames increases monotonically while the actor overlaps world
	// geometry and resets the first frame it does not.
	stuckFrames  int
	lastStuckPos mgl32.Vec3

	fallHeight float32
	landed     bool

	collisionMask          phys.Layer
	skipCollisionDetection bool
	nonSolid               bool

	isPlayer     bool
	flying       bool
	aquatic      bool
	waterWalking bool
	inert        bool
	slowFall     float32

	nopContact
}

// NewActor builds an actor record. The body id is attached by the core once the
// external body exists.
func NewActor(handle Handle, def ActorDef) *Actor {
	scale := def.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	half := def.HalfExtents
	if half == (mgl32.Vec3{}) {
		half = def.MeshBounds
	}
	scaled := mgl32.Vec3{half[0] * scale[0], half[1] * scale[1], half[2] * scale[2]}

	rendering := scaled
	if def.AdjustRendering && def.MeshBounds != (mgl32.Vec3{}) {
		rendering = mgl32.Vec3{
			def.MeshBounds[0] * scale[0],
			def.MeshBounds[1] * scale[1],
			def.MeshBounds[2] * scale[2],
		}
	}

	slowFall := def.SlowFall
	if slowFall == 0 {
		slowFall = 1
	}
	mask := def.CollisionMask
	if mask == 0 {
		mask = phys.MaskActorDefault
	}

	return &Actor{
		handle:               handle,
		position:             def.Position,
		previousPosition:     def.Position,
		renderPosition:       def.Position,
		rotation:             def.Rotation,
		scale:                scale,
		originalHalfExtents:  half,
		halfExtents:          scaled,
		renderingHalfExtents: rendering,
		meshTranslation:      def.MeshTranslation,
		shape:                phys.Box{Extents: scaled},
		collisionMask:        mask,
		isPlayer:             def.IsPlayer,
		flying:               def.Flying,
		aquatic:              def.Aquatic,
		waterWalking:         def.WaterWalking,
		slowFall:             slowFall,
	}
}

func (a *Actor) Kind() Kind     { return KindActor }
func (a *Actor) Handle() Handle { return a.handle }

func (a *Actor) Body() phys.BodyID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.body
}

// AttachBody links the external-engine body. Called once on creation.
func (a *Actor) AttachBody(id phys.BodyID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.body = id
}

// Shape returns the actor's collision shape.
func (a *Actor) Shape() phys.Shape {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shape
}

// Position returns the authoritative feet-origin position.
func (a *Actor) Position() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

// SetPosition overwrites the authoritative position and the interpolation
// anchor. Used for initial placement, not per-tick movement.
func (a *Actor) SetPosition(pos mgl32.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = pos
	a.previousPosition = pos
	a.renderPosition = pos
}

// CollisionObjectPosition is where the external body's center sits for the
// current position: position + rotation·(meshTranslation⊙scale). The collision
// shape never pitches, so only yaw applies.
func (a *Actor) CollisionObjectPosition() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collisionObjectPositionLocked()
}

func (a *Actor) collisionObjectPositionLocked() mgl32.Vec3 {
	offset := mgl32.Vec3{
		a.meshTranslation[0] * a.scale[0],
		a.meshTranslation[1] * a.scale[1],
		a.meshTranslation[2] * a.scale[2],
	}
	return a.position.Add(game.RotateYaw(offset, a.rotation[1]))
}

// PreviousPosition returns the position at the end of the previous completed
// substep.
func (a *Actor) PreviousPosition() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.previousPosition
}

// RenderPosition returns the last interpolated render-time position.
func (a *Actor) RenderPosition() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renderPosition
}

// Rotation returns pitch and yaw in degrees.
func (a *Actor) Rotation() mgl32.Vec2 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rotation
}

// SetRotation sets pitch and yaw in degrees.
func (a *Actor) SetRotation(rot mgl32.Vec2) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rotation = rot
}

// HalfExtents returns the scaled collision half extents.
func (a *Actor) HalfExtents() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.halfExtents
}

// RenderingHalfExtents returns the extents the renderer should use; these can
// differ from the collision extents for adjusted classes.
func (a *Actor) RenderingHalfExtents() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renderingHalfExtents
}

// QueueMovement overwrites the queued intended movement vector.
func (a *Actor) QueueMovement(move mgl32.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.movement = move
}

// ScheduleOffset accumulates an offset applied at the next snapshot boundary.
func (a *Actor) ScheduleOffset(offset mgl32.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scheduledOffset = a.scheduledOffset.Add(offset)
	a.hasScheduledOffset = true
}

// OnGround reports whether the last ground test found walkable support.
func (a *Actor) OnGround() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.onGround
}

// OnSlope reports whether the actor stands on an unwalkable incline.
func (a *Actor) OnSlope() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.onSlope
}

// WalkingOnWater reports whether the last ground test hit the water layer.
func (a *Actor) WalkingOnWater() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.walkingOnWater
}

// StandingOn returns the body id beneath the actor, if any.
func (a *Actor) StandingOn() phys.BodyID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.standingOn
}

// Inertia returns the carried-over velocity.
func (a *Actor) Inertia() mgl32.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inertia
}

// SetInertia overwrites the carried-over velocity. Knockback effects use this.
func (a *Actor) SetInertia(v mgl32.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inertia = v
}

// FallHeight returns the accumulated fall distance since the actor left the
// ground.
func (a *Actor) FallHeight() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fallHeight
}

// StuckFrames returns the consecutive frames the actor has overlapped world
// geometry.
func (a *Actor) StuckFrames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stuckFrames
}

// SetInert marks the actor dead; dead submerged actors float to the surface.
func (a *Actor) SetInert(inert bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inert = inert
}

// SetFlying toggles flight.
func (a *Actor) SetFlying(flying bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flying = flying
}

// SetWaterWalking toggles walking on the water surface.
func (a *Actor) SetWaterWalking(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.waterWalking = on
}

// SetSlowFall sets the slow-fall factor; values below 1 damp falling.
func (a *Actor) SetSlowFall(f float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slowFall = f
}

// ToggleCollisionMode flips noclip and returns the new state.
func (a *Actor) ToggleCollisionMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipCollisionDetection = !a.skipCollisionDetection
	return a.skipCollisionDetection
}

// SetNonSolid stops other movers from colliding with this actor without
// disabling its own collision.
func (a *Actor) SetNonSolid(nonSolid bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nonSolid = nonSolid
}

// NonSolid reports the non-solid toggle.
func (a *Actor) NonSolid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nonSolid
}

// CollisionMask returns the layers the actor sweeps against.
func (a *Actor) CollisionMask() phys.Layer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collisionMask
}
