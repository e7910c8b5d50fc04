package stride

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/simulation"
)

// maxAccumulatedTime caps how far the simulation falls behind rendered time;
// anything beyond is dropped, not simulated.
const maxAccumulatedTime = float32(0.5)

// StepSimulation is the tick entry point. It accumulates real time internally
// and advances the world in fixed-dt substeps: snapshot, pre-step stuck
// recovery, fork-join movement jobs, external world step, write-back, LOS
// refresh and final sync. Errors are recovered locally; callers never see them.
func (c *Core) StepSimulation(dtReal float32) {
	if dtReal < 0 {
		return
	}
	c.processPending()
	c.mirrorObjects()

	c.timeAccum += dtReal
	if c.timeAccum > maxAccumulatedTime {
		c.timeAccum = maxAccumulatedTime
	}

	numSteps, dt := c.substepPlan()
	if numSteps == 0 {
		c.updateRenderOnly(dt)
		return
	}

	syncStart := time.Now()
	frames := c.snapshot()
	var asyncTotal time.Duration

	completed := 0
	for s := 0; s < numSteps; s++ {
		c.preStep(frames)

		jobs := c.moveJobs(frames, dt)
		asyncStart := time.Now()
		if err := c.pool.Run(jobs); err != nil {
			// A failed barrier aborts the substep: the external world is not
			// advanced and previous positions stand. Next tick retries.
			c.log.Error(game.ErrorSubstepAborted, "substep", s, "err", err)
			break
		}
		c.eng.Step(dt)
		asyncTotal += time.Since(asyncStart)

		c.writeBack(frames)
		completed++
	}

	c.refreshSight(dtReal)

	c.timeAccum -= float32(completed) * dt
	if c.timeAccum < 0 {
		c.timeAccum = 0
	}
	factor := game.ClampFloat(c.timeAccum/dt, 0, 1)

	c.rlock()
	for _, fd := range frames {
		if a, ok := c.actors.Get(fd.Handle); ok {
			a.ApplyFrame(fd, factor)
		}
		fd.Reset()
		c.framePool.Put(fd)
	}
	c.runlock()
	c.frames = frames[:0]

	if completed > 0 {
		c.asyncBudget.add(asyncTotal.Seconds() / float64(completed))
		c.syncBudget.add((time.Since(syncStart) - asyncTotal).Seconds() / float64(completed))
	}
}

// processPending tears down removed entities and spent projectiles at the tick
// boundary.
func (c *Core) processPending() {
	c.lock()
	defer c.unlock()

	for _, h := range c.pendingRemove {
		c.removeNow(h)
	}
	c.pendingRemove = c.pendingRemove[:0]

	var spent []entity.Handle
	for el := c.projectiles.Front(); el != nil; el = el.Next() {
		if !el.Value.Active() {
			spent = append(spent, el.Key)
		}
	}
	for _, h := range spent {
		c.removeNow(h)
	}
}

// mirrorObjects pushes animated collider positions to the external engine.
func (c *Core) mirrorObjects() {
	c.rlock()
	defer c.runlock()
	for el := c.objects.Front(); el != nil; el = el.Next() {
		o := el.Value
		if !o.Animated() {
			continue
		}
		if cur, ok := c.eng.Position(o.Body()); !ok || cur != o.Position() {
			c.eng.SetPosition(o.Body(), o.Position())
		}
	}
}

// snapshot copies every actor record into pooled frame data.
func (c *Core) snapshot() []*entity.FrameData {
	c.rlock()
	defer c.runlock()

	frames := c.frames[:0]
	for el := c.actors.Front(); el != nil; el = el.Next() {
		fd := c.framePool.Get().(*entity.FrameData)
		fd.Reset()
		el.Value.Snapshot(fd, c.waterLevel, c.cfg.SwimHeightScale, c.stormDir, c.inStorm)
		if fd.Teleported {
			center := fd.Position
			center[2] += fd.HalfExtentsZ
			c.eng.SetPosition(fd.Body, center)
		}
		frames = append(frames, fd)
	}
	return frames
}

// preStep runs stuck recovery for every actor that intends to move, under each
// actor's write lock.
func (c *Core) preStep(frames []*entity.FrameData) {
	c.rlock()
	defer c.runlock()

	for _, fd := range frames {
		if fd.Skip || game.Vec3ApproxZero(fd.Movement) {
			continue
		}
		a, ok := c.actors.Get(fd.Handle)
		if !ok {
			continue
		}

		center := fd.Position
		center[2] += fd.HalfExtentsZ
		stFrames, stPos := a.StuckState()
		st := simulation.StuckState{Frames: stFrames, LastPos: stPos}

		moved, st2, recovered := simulation.Unstick(c.eng, c.log, fd.Body, fd.Shape, center, st, c.cfg)
		a.SetStuckState(st2.Frames, st2.LastPos)

		if recovered {
			moved[2] -= fd.HalfExtentsZ
			fd.Position = moved
			c.eng.SetPosition(fd.Body, mgl32.Vec3{moved[0], moved[1], moved[2] + fd.HalfExtentsZ})
		} else if st2.Frames > game.StuckBailFrames {
			// Irrecoverable: pretend flat ground so animation keeps running.
			fd.OnGround = true
			fd.OnSlope = false
		}
	}
}

// moveJobs builds one movement-solver job per actor frame. Each job records the
// pre-substep position for interpolation before solving.
func (c *Core) moveJobs(frames []*entity.FrameData, dt float32) []func() {
	jobs := make([]func(), 0, len(frames))
	for _, fd := range frames {
		fd := fd
		jobs = append(jobs, func() {
			fd.PrevPosition = fd.Position
			simulation.Solve(fd, c.tracer, c.cfg, dt)
		})
	}
	return jobs
}

// writeBack repositions the external bodies of every actor the solver moved.
func (c *Core) writeBack(frames []*entity.FrameData) {
	c.rlock()
	defer c.runlock()
	for _, fd := range frames {
		if !fd.Moved {
			continue
		}
		center := fd.Position
		center[2] += fd.HalfExtentsZ
		c.eng.SetPosition(fd.Body, center)
	}
}

// refreshSight fans the LOS cache refresh across the pool and culls stale
// entries.
func (c *Core) refreshSight(dtReal float32) {
	c.los.BeginRefresh()
	workers := c.pool.Workers()
	if workers < 1 {
		workers = 1
	}
	jobs := make([]func(), workers)
	for i := range jobs {
		jobs[i] = func() { c.los.RefreshWorker(dtReal) }
	}
	if err := c.pool.Run(jobs); err != nil {
		c.log.Debug("los refresh aborted", "err", err)
	}
	c.los.Cull()
}

// updateRenderOnly advances interpolation when no substep is due.
func (c *Core) updateRenderOnly(dt float32) {
	factor := game.ClampFloat(c.timeAccum/dt, 0, 1)
	c.rlock()
	defer c.runlock()
	for el := c.actors.Front(); el != nil; el = el.Next() {
		el.Value.UpdateRender(factor)
	}
}

// standingOnHandle resolves the body an actor stands on to a handle, if it
// belongs to the core.
func (c *Core) standingOnHandle(body phys.BodyID) (entity.Handle, bool) {
	if body == phys.InvalidBody {
		return 0, false
	}
	ud := c.eng.UserData(body)
	if ud == 0 {
		return 0, false
	}
	return entity.Handle(ud), true
}

// StandingOn returns the handle of whatever the actor currently stands on.
func (c *Core) StandingOn(h entity.Handle) (entity.Handle, bool) {
	a, ok := c.Actor(h)
	if !ok {
		return 0, false
	}
	c.rlock()
	defer c.runlock()
	return c.standingOnHandle(a.StandingOn())
}
