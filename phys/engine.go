// Package phys holds the narrow contract the movement core consumes from the
// external rigid-body engine, plus the shape-cast adapter layered on top of it.
package phys

import "github.com/go-gl/mathgl/mgl32"

// BodyID identifies a body inside the external engine. Zero is never a valid
// body.
type BodyID uint32

// InvalidBody is the zero BodyID.
const InvalidBody BodyID = 0

// MotionKind determines how the external engine advances a body.
type MotionKind uint8

const (
	// MotionStatic bodies never move.
	MotionStatic MotionKind = iota
	// MotionKinematic bodies are repositioned by the core, never by the engine.
	MotionKinematic
	// MotionDynamic bodies integrate velocity and respond to impulses.
	MotionDynamic
	// MotionLinearCast bodies sweep their shape along their velocity each step
	// and stop on the first accepted contact. Used for projectiles.
	MotionLinearCast
)

// Shape is a collision shape handed to the external engine. The core only ever
// constructs shapes; it never inspects the engine's internal representation.
type Shape interface {
	// HalfExtents returns the shape's axis-aligned half extents, used to center
	// sweeps and derive bounding volumes.
	HalfExtents() mgl32.Vec3
}

// Box is an axis-aligned box shape.
type Box struct {
	Extents mgl32.Vec3
}

func (b Box) HalfExtents() mgl32.Vec3 { return b.Extents }

// Sphere is a ball shape, used for projectiles.
type Sphere struct {
	Radius float32
}

func (s Sphere) HalfExtents() mgl32.Vec3 { return mgl32.Vec3{s.Radius, s.Radius, s.Radius} }

// Capsule is a vertical capsule: a cylinder of half-height HalfHeight capped by
// hemispheres of Radius.
type Capsule struct {
	Radius     float32
	HalfHeight float32
}

func (c Capsule) HalfExtents() mgl32.Vec3 {
	return mgl32.Vec3{c.Radius, c.Radius, c.HalfHeight + c.Radius}
}

// HalfSpace is an infinite solid below the plane Normal·x = Offset.
type HalfSpace struct {
	Normal mgl32.Vec3
	Offset float32
}

func (h HalfSpace) HalfExtents() mgl32.Vec3 { return mgl32.Vec3{} }

// HeightField is one terrain tile: a Size×Size grid of heights spaced CellSize
// apart, anchored at Origin.
type HeightField struct {
	MinHeight float32
	MaxHeight float32
	Size      int
	CellSize  float32
	Origin    mgl32.Vec3
	Verts     []float32
}

func (h HeightField) HalfExtents() mgl32.Vec3 {
	half := float32(h.Size-1) * h.CellSize * 0.5
	return mgl32.Vec3{half, half, (h.MaxHeight - h.MinHeight) * 0.5}
}

// BodyDef describes a body to create in the external engine.
type BodyDef struct {
	Shape    Shape
	Position mgl32.Vec3
	Layer    Layer
	Motion   MotionKind
	// GravityFactor scales engine gravity for dynamic bodies. Projectiles use 0.
	GravityFactor float32
	Mass          float32
	UserData      uint64
}

// Hit is the first intersection found by a cast.
type Hit struct {
	// Fraction is where along the sweep the hit occurred, in [0, 1]. A miss is
	// reported as Fraction 1.
	Fraction float32
	// EndPos is the shape's center position at the moment of contact.
	EndPos mgl32.Vec3
	// Normal is the contact plane normal, pointing back toward the swept shape.
	Normal mgl32.Vec3
	// Point is the contact point on the hit body.
	Point mgl32.Vec3
	Body  BodyID
	Layer Layer
}

// Contact is one overlap reported by CollideShape.
type Contact struct {
	Body  BodyID
	Layer Layer
	// Normal is the direction that pushes the queried shape out of the body.
	Normal mgl32.Vec3
	Depth  float32
	Point  mgl32.Vec3
}

// Filter narrows casts and overlap queries.
type Filter struct {
	// Mask selects which layers the query collides with.
	Mask Layer
	// Exclude suppresses hits against the listed bodies, the caster's own body
	// first among them.
	Exclude []BodyID
	// Backfaces makes triangle-mesh tests collide against backfaces. Convex
	// pairs always do.
	Backfaces bool
}

// Excludes reports whether id is suppressed by the filter.
func (f Filter) Excludes(id BodyID) bool {
	for _, e := range f.Exclude {
		if e == id {
			return true
		}
	}
	return false
}

// ContactListener receives contact callbacks from the external engine while it
// steps. Either body's user data may already be zeroed by teardown.
type ContactListener interface {
	// OnContactValidate is called per candidate pair and may reject the contact.
	OnContactValidate(self, other BodyID) bool
	// OnContactAdded is called once per contact that passed validation.
	OnContactAdded(self, other BodyID, point, normal mgl32.Vec3)
}

// Engine is the narrow interface the core consumes from the external rigid-body
// engine. All methods are safe for concurrent use; reads take short-lived body
// locks internally.
type Engine interface {
	AddBody(def BodyDef) (BodyID, error)
	RemoveBody(id BodyID)

	// Position returns false if the body id is no longer valid.
	Position(id BodyID) (mgl32.Vec3, bool)
	SetPosition(id BodyID, pos mgl32.Vec3)
	Velocity(id BodyID) (mgl32.Vec3, bool)
	SetVelocity(id BodyID, vel mgl32.Vec3)
	AddImpulse(id BodyID, impulse mgl32.Vec3)

	// UserData returns 0 for invalid bodies and for bodies mid-teardown.
	UserData(id BodyID) uint64
	SetUserData(id BodyID, v uint64)

	BodyShape(id BodyID) (Shape, bool)
	BodyLayer(id BodyID) (Layer, bool)

	// CastShape sweeps shape from one center position to another and returns the
	// first hit.
	CastShape(shape Shape, from, to mgl32.Vec3, filter Filter) (Hit, bool)
	// CastRay casts a thin ray along dir (direction and length combined).
	CastRay(from, dir mgl32.Vec3, filter Filter) (Hit, bool)
	// CollideShape enumerates all bodies currently overlapping the shape placed
	// at pos.
	CollideShape(shape Shape, pos mgl32.Vec3, filter Filter) []Contact

	// Step advances the world by one fixed timestep, integrating dynamic bodies
	// and resolving linear-cast contacts through the registered listener.
	Step(dt float32)
	SetContactListener(l ContactListener)
}
