package game

import "time"

const (
	// DefaultPhysicsDt is the fixed timestep every substep advances the world by.
	DefaultPhysicsDt = float32(1.0 / 60.0)

	StepSizeUp      = float32(36)
	StepSizeDown    = float32(36)
	GroundOffset    = float32(1)
	CollisionMargin = float32(1)
	// AllowedPenetration is the overlap depth below which stuck recovery does nothing.
	AllowedPenetration = float32(1)

	Gravity       = float32(9.8)
	UnitsPerMeter = float32(70)

	MaxIterations = 8
	MaxSubsteps   = 10

	// WalkableSlopeDot is the minimum vertical component of a contact normal for
	// the surface to count as walkable ground. cos(49 degrees).
	WalkableSlopeDot = float32(0.6560590)

	// MinCollisionDot rejects grazing sweep contacts whose normal does not
	// oppose the motion direction.
	MinCollisionDot = float32(0)

	// SwimFloatVelocity is the fixed upward speed dead actors float at while
	// fully submerged.
	SwimFloatVelocity = float32(25)
	SwimHeightScale   = float32(0.89)

	StormWalkMult = float32(0.25)

	PushStrength = float32(0.5)
	MinImpulse   = float32(50)
	MaxImpulse   = float32(500)
	ActorMass    = float32(80)

	// StuckBailFrames is how many consecutive overlapping frames without
	// positional progress are tolerated before recovery gives up.
	StuckBailFrames = 10
	// StuckBailDistance is the displacement below which a stuck frame counts as
	// "no progress".
	StuckBailDistance = float32(10)
	// StuckLiftBump is the last-resort upward nudge applied when no recovery
	// delta reduces the overlap.
	StuckLiftBump = float32(10)

	LOSKeepInactive = 2 * time.Second
)
