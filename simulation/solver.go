// Package simulation contains the per-actor movement solver and the pre-step
// stuck recovery. The solver is a pure function over a FrameData snapshot; it
// never touches the authoritative actor records.
package simulation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/settings"
)

const (
	// minRemainingTime ends the sweep-slide loop once the leftover substep time
	// is negligible.
	minRemainingTime = 1e-4
	// minMoveDistSqr ends the loop once the intended move is negligible.
	minMoveDistSqr = 1e-4
)

// Solve advances one actor's FrameData by a single substep of length dt,
// resolving collisions against the world through the tracer.
func Solve(fd *entity.FrameData, tr *phys.Tracer, cfg *settings.Settings, dt float32) {
	if fd.Skip {
		return
	}

	startFeet := fd.Position

	if fd.SkipCollisionDetection {
		move := game.RotatePitchYaw(fd.Movement, fd.Rotation[0], fd.Rotation[1])
		fd.Position = fd.Position.Add(move.Mul(dt))
		fd.Moved = !game.Vec3ApproxZero(fd.Position.Sub(startFeet))
		return
	}

	// Water is a trigger, not an obstacle, unless the actor can walk on it.
	if !fd.WaterWalking {
		fd.CollisionMask &^= phys.LayerWater
	}

	// Sweeps are centered on the collision shape while the game treats the
	// position as feet origin. The lift is subtracted back before write-back;
	// gameplay depends on this exact offset.
	pos := fd.Position
	pos[2] += fd.HalfExtentsZ

	velocity, inertia := deriveVelocity(fd, pos, cfg)

	pos, _ = sweepSlide(fd, tr, cfg, pos, velocity, dt)

	onGround, onSlope, walkingOnWater := false, false, false
	standingOn := phys.InvalidBody
	if inertia[2] <= 0.01 && pos[2] >= fd.SwimLevel && !fd.Flying {
		pos, onGround, onSlope, walkingOnWater, standingOn = detectGround(fd, tr, cfg, pos)
	}

	// Gravity and slow fall operate on inertia only; the per-tick movement
	// vector is rebuilt from intent every tick.
	switch {
	case onGround || walkingOnWater:
		inertia = mgl32.Vec3{}
	case pos[2] < fd.SwimLevel || fd.Flying:
		inertia = mgl32.Vec3{}
	default:
		inertia[2] -= dt * cfg.GravityUnits()
		if fd.SlowFall < 1 {
			if inertia[2] < 0 {
				inertia[2] *= fd.SlowFall
			}
			inertia[0] *= fd.SlowFall
			inertia[1] *= fd.SlowFall
		}
	}

	pos[2] -= fd.HalfExtentsZ

	if onGround {
		if !fd.OnGround {
			fd.Landed = true
		} else if !fd.Landed {
			fd.FallHeight = 0
		}
	} else if drop := startFeet[2] - pos[2]; drop > 0 {
		fd.FallHeight += drop
	}

	fd.Position = pos
	fd.Inertia = inertia
	fd.OnGround = onGround || walkingOnWater
	fd.OnSlope = onSlope
	fd.WalkingOnWater = walkingOnWater
	fd.StandingOn = standingOn
	fd.Moved = !game.Vec3ApproxZero(pos.Sub(startFeet))
}

// deriveVelocity turns the intended movement, rotation and carried inertia into
// the substep's world-space velocity.
func deriveVelocity(fd *entity.FrameData, pos mgl32.Vec3, cfg *settings.Settings) (velocity, inertia mgl32.Vec3) {
	inertia = fd.Inertia
	underwater := pos[2] < fd.SwimLevel

	switch {
	case fd.Inert && underwater:
		// Dead actors float to the surface.
		velocity = mgl32.Vec3{0, 0, game.SwimFloatVelocity}
	case underwater || fd.Flying:
		velocity = game.RotatePitchYaw(fd.Movement, fd.Rotation[0], fd.Rotation[1])
	default:
		velocity = game.RotateYaw(fd.Movement, fd.Rotation[1])
		if fd.OnGround && !fd.OnSlope && velocity[2] > 0 {
			// A jump converts the push into carried inertia.
			inertia = velocity
		}
		if !fd.OnGround || fd.OnSlope {
			velocity = velocity.Add(inertia)
		}
	}

	if fd.IsInStorm && !game.Vec3ApproxZero(velocity) {
		angle := game.AngleBetweenDeg(fd.StormDirection, velocity)
		velocity = velocity.Mul(1 - cfg.StormWalkMult*(angle/180))
	}
	return velocity, inertia
}

// sweepSlide is the iterative collide-and-slide loop. It returns the final
// center position and whether the actor touched walkable ground on the way.
func sweepSlide(fd *entity.FrameData, tr *phys.Tracer, cfg *settings.Settings, pos, velocity mgl32.Vec3, dt float32) (mgl32.Vec3, bool) {
	remaining := dt
	origVelocity := velocity
	seenGround := fd.OnGround

	var prevNormal, prevPrevNormal mgl32.Vec3
	havePrev, havePrevPrev := false, false
	usedSeamLogic := false

	for it := 0; it < cfg.MaxIterations && remaining > minRemainingTime; it++ {
		next := pos.Add(velocity.Mul(remaining))

		// Swimmers stay at the surface instead of breaching it.
		if !fd.Flying && pos[2] < fd.SwimLevel && next[2] > fd.SwimLevel && velocity[2] > 0 {
			velocity[2] = 0
			continue
		}
		if next.Sub(pos).LenSqr() < minMoveDistSqr {
			break
		}

		hit := tr.Trace(fd.Body, fd.Shape, pos, next, fd.CollisionMask)
		if hit.Fraction >= 1 {
			pos = hit.EndPos
			break
		}

		if hit.Layer == phys.LayerDynamic {
			pushDynamic(tr.Engine(), hit.Body, velocity, cfg)
		}

		hitHeight := hit.Point[2] - hit.EndPos[2] + fd.HalfExtentsZ
		if hit.Layer != phys.LayerActor && hitHeight < cfg.StepSizeUp {
			if stepped, consumed, ok := stepUp(fd, tr, cfg, pos, velocity, remaining); ok {
				pos = stepped
				seenGround = true
				remaining *= 1 - consumed
				continue
			}
		}

		// Advance to the contact, backed off along the motion so the next sweep
		// does not start in contact.
		vhat := velocity.Normalize()
		pos = hit.EndPos.Sub(vhat.Mul(cfg.CollisionMargin))

		n := hit.Normal
		if game.IsWalkableNormal(n, cfg.WalkableSlopeDot) {
			seenGround = true
		} else if seenGround {
			// Near the floor, unwalkable normals are flattened so downward
			// facing lips do not snag a grounded actor.
			flat := mgl32.Vec3{n[0], n[1], 0}
			if flat.LenSqr() > 1e-10 {
				n = flat.Normalize()
			}
		}

		newVelocity := game.ProjectOntoPlane(velocity, n)

		// Two mutually acute contact planes form a crevice; sliding against one
		// pushes into the other and oscillates. Move along their intersection
		// line instead, nudged off the seam by the averaged normals.
		if havePrev {
			partner, haveSeam := prevNormal, prevNormal.Dot(n) <= 0
			if !haveSeam && havePrevPrev && prevNormal.Dot(prevPrevNormal) <= 0 {
				partner, haveSeam = prevPrevNormal, prevPrevNormal.Dot(n) <= 0
			}
			if haveSeam {
				if seamDir := partner.Cross(n); seamDir.LenSqr() > 1e-10 {
					seamDir = seamDir.Normalize()
					newVelocity = game.ProjectOntoLine(velocity, seamDir)
					pos = pos.Add(partner.Add(n).Mul(0.25))
					usedSeamLogic = true
				}
			}
		}

		// Air control must not let actors climb sheer slopes.
		airborne := !seenGround && !fd.Flying && pos[2] >= fd.SwimLevel
		if airborne && !game.IsWalkableNormal(hit.Normal, cfg.WalkableSlopeDot) && !usedSeamLogic && newVelocity[2] > velocity[2] {
			newVelocity[2] = velocity[2]
		}

		if newVelocity.Dot(origVelocity) <= 0 {
			mostlyVertical := true
			if havePrev {
				if cross := prevNormal.Cross(n); cross.LenSqr() > 1e-10 {
					mostlyVertical = math32.Abs(cross[2]) >= cross.Len()*0.707
				}
			}
			if mostlyVertical {
				break
			}
		}

		prevPrevNormal, havePrevPrev = prevNormal, havePrev
		prevNormal, havePrev = n, true
		velocity = newVelocity
		remaining *= 1 - hit.Fraction
	}

	return pos, seenGround
}

// detectGround runs the post-loop downsweep that decides the actor's support
// state and seats it a ground offset above the surface.
func detectGround(fd *entity.FrameData, tr *phys.Tracer, cfg *settings.Settings, pos mgl32.Vec3) (mgl32.Vec3, bool, bool, bool, phys.BodyID) {
	drop := 2 * cfg.GroundOffset
	if fd.OnGround {
		drop += cfg.StepSizeDown
	}
	to := pos
	to[2] -= drop

	hit := tr.Trace(fd.Body, fd.Shape, pos, to, fd.CollisionMask)
	if hit.Fraction >= 1 {
		return pos, false, false, false, phys.InvalidBody
	}

	if hit.Layer == phys.LayerActor {
		// Actors can stand on actors, but never get pulled down through one.
		if game.IsWalkableNormal(hit.Normal, cfg.WalkableSlopeDot) {
			return pos, true, false, false, hit.Body
		}
		return pos, false, false, false, phys.InvalidBody
	}

	walkable := game.IsWalkableNormal(hit.Normal, cfg.WalkableSlopeDot)
	walkingOnWater := hit.Layer == phys.LayerWater

	target := hit.EndPos[2] + cfg.GroundOffset
	if pos[2]-target > cfg.GroundOffset {
		pos[2] = target
	} else if math32.Abs(pos[2]-target) <= cfg.GroundOffset {
		pos[2] = (pos[2] + target) * 0.5
	}

	return pos, walkable, !walkable, walkingOnWater, hit.Body
}

// pushDynamic hands a clamped impulse to a pushable body the actor walked into.
func pushDynamic(eng phys.Engine, body phys.BodyID, velocity mgl32.Vec3, cfg *settings.Settings) {
	speed := velocity.Len()
	if speed < 1e-6 {
		return
	}
	impulse := game.ClampFloat(speed*cfg.ActorMass*cfg.PushStrength, cfg.MinImpulse, cfg.MaxImpulse)
	eng.AddImpulse(body, velocity.Mul(impulse/speed))
}
