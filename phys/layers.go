package phys

// Layer is a collision layer bitmask. Bodies live on exactly one layer; query
// masks combine several.
type Layer uint16

const (
	LayerWorld Layer = 1 << iota
	LayerHeightmap
	LayerDoor
	LayerActor
	LayerProjectile
	LayerDynamic
	LayerWater
	LayerDebris
	LayerSensor
	LayerCameraOnly
	LayerVisualOnly
)

const (
	// MaskStatics covers everything an actor cannot push through.
	MaskStatics = LayerWorld | LayerHeightmap | LayerDoor
	// MaskMoving covers simulated movers.
	MaskMoving = LayerActor | LayerProjectile | LayerDynamic
	// MaskActorDefault is what actor sweeps collide against.
	MaskActorDefault = MaskStatics | MaskMoving | LayerWater
	// MaskLOSObstacles is what line-of-sight rays are blocked by.
	MaskLOSObstacles = MaskStatics
	// MaskStuckRecovery is what stuck recovery pushes actors out of.
	MaskStuckRecovery = MaskStatics
	MaskAll           = ^Layer(0)
)

// collisionMatrix maps each layer to the set of layers it physically collides
// with. The matrix is symmetric by construction.
var collisionMatrix = map[Layer]Layer{
	LayerWorld:      MaskMoving | LayerDebris,
	LayerHeightmap:  MaskMoving | LayerDebris,
	LayerDoor:       MaskMoving,
	LayerActor:      MaskStatics | MaskMoving | LayerWater | LayerSensor,
	LayerProjectile: MaskStatics | MaskMoving | LayerWater | LayerSensor,
	LayerDynamic:    MaskStatics | MaskMoving,
	LayerWater:      LayerActor | LayerProjectile,
	LayerDebris:     LayerWorld | LayerHeightmap,
	LayerSensor:     LayerActor | LayerProjectile | LayerSensor,
	LayerCameraOnly: 0,
	LayerVisualOnly: 0,
}

// Collides reports whether two layers interact physically.
func Collides(a, b Layer) bool {
	return collisionMatrix[a]&b != 0
}
