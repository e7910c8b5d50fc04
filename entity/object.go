package entity

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/phys"
)

// ObjectDef describes a kinematic static or animated collider: doors, trees,
// compound furniture shapes.
type ObjectDef struct {
	Shape    phys.Shape
	Position mgl32.Vec3
	// Layer defaults to the world layer; doors go on the door layer.
	Layer    phys.Layer
	Animated bool
}

// Object is a kinematic collider. Animated objects are repositioned by the
// scene between ticks; the core never moves them itself.
type Object struct {
	mu sync.Mutex

	handle   Handle
	body     phys.BodyID
	shape    phys.Shape
	position mgl32.Vec3
	layer    phys.Layer
	animated bool

	// scriptCollides mirrors the script-visible collision flag; scripts read it
	// through GetCollisions.
	scriptCollides bool

	nopContact
}

// NewObject builds an object record.
func NewObject(handle Handle, def ObjectDef) *Object {
	layer := def.Layer
	if layer == 0 {
		layer = phys.LayerWorld
	}
	return &Object{
		handle:   handle,
		shape:    def.Shape,
		position: def.Position,
		layer:    layer,
		animated: def.Animated,
	}
}

func (o *Object) Kind() Kind     { return KindObject }
func (o *Object) Handle() Handle { return o.handle }

func (o *Object) Body() phys.BodyID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.body
}

// AttachBody links the external-engine body. Called once on creation.
func (o *Object) AttachBody(id phys.BodyID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.body = id
}

// Shape returns the collider shape.
func (o *Object) Shape() phys.Shape {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shape
}

// Layer returns the collision layer the object lives on.
func (o *Object) Layer() phys.Layer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.layer
}

// Position returns the collider position.
func (o *Object) Position() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

// SetPosition moves the collider; the core mirrors it to the external body at
// the next tick boundary.
func (o *Object) SetPosition(pos mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = pos
}

// Animated reports whether the collider follows an animation.
func (o *Object) Animated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.animated
}

func (o *Object) OnContactAdded(other Holder, point, normal mgl32.Vec3) {
	o.mu.Lock()
	o.scriptCollides = true
	o.mu.Unlock()
}

// ConsumeScriptCollision reports and clears the script-visible collision flag.
func (o *Object) ConsumeScriptCollision() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	hit := o.scriptCollides
	o.scriptCollides = false
	return hit
}
