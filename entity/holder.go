// Package entity holds the gameplay-side records the movement core simulates:
// actors, kinematic objects, projectiles, terrain tiles and water volumes. Each
// record owns its external-engine body for its whole lifetime.
package entity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/phys"
)

// Handle is the stable, opaque per-entity key handed out by the core. It round
// trips through the external engine's per-body user data; a zero user data
// value marks a body mid-teardown.
type Handle uint64

// Kind tags the variants of a holder.
type Kind uint8

const (
	KindActor Kind = iota + 1
	KindObject
	KindProjectile
	KindHeightfield
	KindWater
)

// Holder is the common face of every entity record. Contact callbacks arriving
// from the external engine are dispatched onto it.
type Holder interface {
	Kind() Kind
	Handle() Handle
	Body() phys.BodyID

	// OnContactValidate may reject a candidate contact pair before it is
	// resolved. The other holder may be nil when its body is mid-teardown.
	OnContactValidate(other Holder) bool
	// OnContactAdded is invoked once per contact that passed validation.
	OnContactAdded(other Holder, point, normal mgl32.Vec3)
}

// nopContact provides the default accept-and-ignore contact behavior.
type nopContact struct{}

func (nopContact) OnContactValidate(Holder) bool                 { return true }
func (nopContact) OnContactAdded(Holder, mgl32.Vec3, mgl32.Vec3) {}
