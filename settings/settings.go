// Package settings holds every tunable of the movement core, loadable from a
// TOML file.
package settings

import (
	"runtime"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/stride-engine/stride/game"
)

// Settings contains all tunables of the movement and collision core.
type Settings struct {
	// PhysicsDt is the fixed timestep in seconds.
	PhysicsDt   float32 `toml:"physics_dt"`
	MaxSubsteps int     `toml:"max_substeps"`
	// Workers is the job pool size. Values below 2 run everything inline with
	// locks elided.
	Workers int `toml:"workers"`

	MaxIterations int `toml:"max_iterations"`

	StepSizeUp         float32 `toml:"step_size_up"`
	StepSizeDown       float32 `toml:"step_size_down"`
	GroundOffset       float32 `toml:"ground_offset"`
	CollisionMargin    float32 `toml:"collision_margin"`
	AllowedPenetration float32 `toml:"allowed_penetration"`

	// Gravity is in meters per second squared; world-space acceleration is
	// Gravity multiplied by UnitsPerMeter.
	Gravity       float32 `toml:"gravity"`
	UnitsPerMeter float32 `toml:"units_per_meter"`

	WalkableSlopeDot float32 `toml:"walkable_slope_dot"`
	MinCollisionDot  float32 `toml:"min_collision_dot"`
	SwimHeightScale  float32 `toml:"swim_height_scale"`
	StormWalkMult    float32 `toml:"storm_walk_mult"`

	PushStrength float32 `toml:"push_strength"`
	MinImpulse   float32 `toml:"min_impulse"`
	MaxImpulse   float32 `toml:"max_impulse"`
	ActorMass    float32 `toml:"actor_mass"`

	// LOSKeepInactive is how long an unqueried line-of-sight entry survives.
	LOSKeepInactive time.Duration `toml:"los_keep_inactive"`
}

// Default returns the settings every tunable ships with.
func Default() *Settings {
	return &Settings{
		PhysicsDt:          game.DefaultPhysicsDt,
		MaxSubsteps:        game.MaxSubsteps,
		Workers:            runtime.NumCPU(),
		MaxIterations:      game.MaxIterations,
		StepSizeUp:         game.StepSizeUp,
		StepSizeDown:       game.StepSizeDown,
		GroundOffset:       game.GroundOffset,
		CollisionMargin:    game.CollisionMargin,
		AllowedPenetration: game.AllowedPenetration,
		Gravity:            game.Gravity,
		UnitsPerMeter:      game.UnitsPerMeter,
		WalkableSlopeDot:   game.WalkableSlopeDot,
		MinCollisionDot:    game.MinCollisionDot,
		SwimHeightScale:    game.SwimHeightScale,
		StormWalkMult:      game.StormWalkMult,
		PushStrength:       game.PushStrength,
		MinImpulse:         game.MinImpulse,
		MaxImpulse:         game.MaxImpulse,
		ActorMass:          game.ActorMass,
		LOSKeepInactive:    game.LOSKeepInactive,
	}
}

// Load reads settings from a TOML file, filling unset fields with defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := tree.Unmarshal(s); err != nil {
		return nil, err
	}
	return s, nil
}

// GravityUnits returns gravity acceleration in world units per second squared.
func (s *Settings) GravityUnits() float32 {
	return s.Gravity * s.UnitsPerMeter
}
