package stride

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/phys/boxengine"
	"github.com/stride-engine/stride/settings"
)

var testExtents = mgl32.Vec3{30, 30, 60}

func newTestCore(t *testing.T, workers int) *Core {
	t.Helper()
	cfg := settings.Default()
	cfg.Workers = workers
	c := New(boxengine.New(), cfg, nil)
	t.Cleanup(c.Close)
	return c
}

func addFloor(t *testing.T, c *Core) entity.Handle {
	t.Helper()
	h, err := c.AddObject(entity.ObjectDef{
		Shape: phys.HalfSpace{Normal: mgl32.Vec3{0, 0, 1}},
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	return h
}

func addTestActor(t *testing.T, c *Core, pos mgl32.Vec3) entity.Handle {
	t.Helper()
	h, err := c.AddActor(entity.ActorDef{Position: pos, HalfExtents: testExtents})
	if err != nil {
		t.Fatalf("AddActor: %v", err)
	}
	return h
}

func stepSeconds(c *Core, seconds float32) {
	dt := c.cfg.PhysicsDt
	for t := float32(0); t < seconds; t += dt {
		c.StepSimulation(dt)
	}
}

func TestAddActorRequiresShape(t *testing.T) {
	c := newTestCore(t, 1)
	if _, err := c.AddActor(entity.ActorDef{}); err == nil {
		t.Fatal("expected shapeless actor to be rejected")
	}

	// Mesh bounds alone are an acceptable fallback.
	if _, err := c.AddActor(entity.ActorDef{MeshBounds: testExtents}); err != nil {
		t.Fatalf("mesh-bounds actor rejected: %v", err)
	}
}

func TestCoreWalkOnFloor(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	h := addTestActor(t, c, mgl32.Vec3{0, 0, 1})

	c.QueueMovement(h, mgl32.Vec3{0, 200, 0})
	stepSeconds(c, 1)

	a, _ := c.Actor(h)
	pos := a.Position()
	if pos[1] < 150 {
		t.Fatalf("actor barely moved: %v", pos)
	}
	if pos[2] < 0 || pos[2] > c.cfg.GroundOffset+0.01 {
		t.Fatalf("actor left the ground band: %v", pos)
	}
	if !a.OnGround() {
		t.Fatal("expected ground contact")
	}
}

func TestCoreIdleActorStaysPut(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	h := addTestActor(t, c, mgl32.Vec3{7, 9, 1})

	stepSeconds(c, 1)

	a, _ := c.Actor(h)
	pos := a.Position()
	if pos[0] != 7 || pos[1] != 9 {
		t.Fatalf("idle actor drifted horizontally: %v", pos)
	}
	if pos[2] < 0 || pos[2] > c.cfg.GroundOffset+0.01 {
		t.Fatalf("idle actor left the ground band: %v", pos)
	}
}

func TestAdjustPositionAppliesAtomically(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	h := addTestActor(t, c, mgl32.Vec3{0, 0, 1})
	stepSeconds(c, 0.1)

	a, _ := c.Actor(h)
	before := a.Position()
	offset := mgl32.Vec3{1000, 0, 0}
	c.AdjustPosition(h, offset)

	c.StepSimulation(c.cfg.PhysicsDt)
	after := a.Position()
	want := before.Add(offset)
	if after != want {
		t.Fatalf("expected %v after the offset, got %v", want, after)
	}
	// The solver must not have fought the teleport within the same tick.
	if a.PreviousPosition() != want {
		t.Fatalf("teleport must reset the interpolation anchor, got %v", a.PreviousPosition())
	}
}

func TestToggleCollisionModeRoundTrip(t *testing.T) {
	c := newTestCore(t, 1)
	h := addTestActor(t, c, mgl32.Vec3{})

	if !c.ToggleCollisionMode(h) {
		t.Fatal("first toggle must enable noclip")
	}
	if c.ToggleCollisionMode(h) {
		t.Fatal("second toggle must disable noclip")
	}
}

func TestInterpolatedPositionBetweenSubsteps(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	h := addTestActor(t, c, mgl32.Vec3{0, 0, 1})
	c.QueueMovement(h, mgl32.Vec3{0, 600, 0})

	// One and a half timesteps: one substep runs, half remains accumulated.
	c.StepSimulation(c.cfg.PhysicsDt * 1.5)

	a, _ := c.Actor(h)
	render, ok := c.InterpolatedPosition(h)
	if !ok {
		t.Fatal("expected a render position")
	}
	prev, cur := a.PreviousPosition(), a.Position()
	if render[1] < prev[1] || render[1] > cur[1] {
		t.Fatalf("render position %v outside [%v, %v]", render[1], prev[1], cur[1])
	}
	if prev[1] == cur[1] {
		t.Fatal("expected the substep to move the actor")
	}
}

func TestProjectileHitsWall(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	wallH, err := c.AddObject(entity.ObjectDef{
		Shape:    phys.Box{Extents: mgl32.Vec3{10, 500, 500}},
		Position: mgl32.Vec3{500, 0, 500},
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	var gotHandle entity.Handle
	var gotHit entity.ProjectileHit
	hits := 0
	c.OnProjectileHit(func(h entity.Handle, hit entity.ProjectileHit) {
		gotHandle, gotHit = h, hit
		hits++
	})

	ph, err := c.AddProjectile(entity.ProjectileDef{
		Position: mgl32.Vec3{0, 0, 100},
		Velocity: mgl32.Vec3{2000, 0, 0},
		Radius:   5,
	})
	if err != nil {
		t.Fatalf("AddProjectile: %v", err)
	}

	stepSeconds(c, 1)

	if hits != 1 {
		t.Fatalf("expected exactly one hit report, got %d", hits)
	}
	if gotHandle != ph {
		t.Fatalf("expected projectile %d reported, got %d", ph, gotHandle)
	}
	wall, _ := c.holders[wallH]
	if gotHit.Target != wall.Body() {
		t.Fatalf("expected the wall body %d, got %d", wall.Body(), gotHit.Target)
	}
	if gotHit.HitWater {
		t.Fatal("wall hit must not be flagged as water")
	}
}

func TestProjectileIgnoresCasterBody(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	casterH := addTestActor(t, c, mgl32.Vec3{0, 0, 1})
	caster, _ := c.Actor(casterH)

	hits := 0
	c.OnProjectileHit(func(entity.Handle, entity.ProjectileHit) { hits++ })

	// Fired from inside the caster's own box into open space.
	if _, err := c.AddProjectile(entity.ProjectileDef{
		Position: mgl32.Vec3{0, 0, 60},
		Velocity: mgl32.Vec3{0, 2000, 0},
		Caster:   caster.Body(),
	}); err != nil {
		t.Fatalf("AddProjectile: %v", err)
	}

	stepSeconds(c, 0.5)
	if hits != 0 {
		t.Fatalf("projectile must pass through its caster, got %d hits", hits)
	}
}

func TestGetLineOfSight(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	a := addTestActor(t, c, mgl32.Vec3{0, 0, 1})
	b := addTestActor(t, c, mgl32.Vec3{1000, 0, 1})

	if !c.GetLineOfSight(a, b) {
		t.Fatal("open field must have line of sight")
	}

	// A wall between them blocks a fresh pair.
	if _, err := c.AddObject(entity.ObjectDef{
		Shape:    phys.Box{Extents: mgl32.Vec3{10, 500, 500}},
		Position: mgl32.Vec3{500, 300, 500},
	}); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	blocked := addTestActor(t, c, mgl32.Vec3{1000, 600, 1})
	if c.GetLineOfSight(a, blocked) {
		t.Fatal("wall must block line of sight")
	}
}

func TestGetCollisions(t *testing.T) {
	c := newTestCore(t, 1)
	a, err := c.AddObject(entity.ObjectDef{
		Shape:    phys.Box{Extents: mgl32.Vec3{50, 50, 50}},
		Position: mgl32.Vec3{0, 0, 50},
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	b, err := c.AddObject(entity.ObjectDef{
		Shape:    phys.Box{Extents: mgl32.Vec3{50, 50, 50}},
		Position: mgl32.Vec3{60, 0, 50},
	})
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	got := c.GetCollisions(a, 0, phys.MaskAll)
	if len(got) != 1 || got[0] != b {
		t.Fatalf("expected [%d], got %v", b, got)
	}
}

func TestRemoveActor(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	h := addTestActor(t, c, mgl32.Vec3{0, 0, 1})

	c.Remove(h)
	c.StepSimulation(c.cfg.PhysicsDt)

	if _, ok := c.Actor(h); ok {
		t.Fatal("removed actor still registered")
	}
	if _, ok := c.InterpolatedPosition(h); ok {
		t.Fatal("removed actor still queryable")
	}
}

func TestConcurrentWorkers(t *testing.T) {
	c := newTestCore(t, 4)
	addFloor(t, c)

	handles := make([]entity.Handle, 8)
	for i := range handles {
		handles[i] = addTestActor(t, c, mgl32.Vec3{float32(i) * 200, 0, 1})
		c.QueueMovement(handles[i], mgl32.Vec3{0, 100, 0})
	}

	stepSeconds(c, 1)

	for i, h := range handles {
		a, ok := c.Actor(h)
		if !ok {
			t.Fatalf("actor %d lost", i)
		}
		pos := a.Position()
		if pos[1] < 50 {
			t.Fatalf("actor %d barely moved: %v", i, pos)
		}
		if pos[2] < 0 || pos[2] > c.cfg.GroundOffset+0.01 {
			t.Fatalf("actor %d left the ground band: %v", i, pos)
		}
	}
}

func TestMarkAsNonSolidLetsMoversThrough(t *testing.T) {
	c := newTestCore(t, 1)
	addFloor(t, c)
	blocker := addTestActor(t, c, mgl32.Vec3{0, 100, 1})
	mover := addTestActor(t, c, mgl32.Vec3{0, 0, 1})

	c.MarkAsNonSolid(blocker, true)
	c.QueueMovement(mover, mgl32.Vec3{0, 100, 0})
	stepSeconds(c, 2)

	a, _ := c.Actor(mover)
	pos := a.Position()
	if pos[1] < 150 {
		t.Fatalf("mover must pass through the non-solid actor, stopped at %v", pos)
	}
	if pos[2] < 0 || pos[2] > c.cfg.GroundOffset+0.01 {
		t.Fatalf("mover left the ground band: %v", pos)
	}

	// Solid again: a fresh mover stops short of the blocker.
	c.MarkAsNonSolid(blocker, false)
	second := addTestActor(t, c, mgl32.Vec3{0, 0, 1})
	c.QueueMovement(second, mgl32.Vec3{0, 100, 0})
	stepSeconds(c, 2)

	b, _ := c.Actor(second)
	if y := b.Position()[1]; y > 100 {
		t.Fatalf("solid actor must block the mover, reached y=%v", y)
	}
}

func TestSubstepPlanBacklog(t *testing.T) {
	c := newTestCore(t, 1)

	c.timeAccum = c.cfg.PhysicsDt * 3.5
	n, dt := c.substepPlan()
	if n != 3 {
		t.Fatalf("expected 3 substeps for 3.5 steps of backlog, got %d", n)
	}
	if dt != c.cfg.PhysicsDt {
		t.Fatalf("unclamped plan must keep the configured dt, got %v", dt)
	}

	// Mid-range cost drains the backlog at the configured dt.
	for i := 0; i < 30; i++ {
		c.syncBudget.add(float64(c.cfg.PhysicsDt) * 0.7)
	}
	c.timeAccum = c.cfg.PhysicsDt * 3.5
	n, dt = c.substepPlan()
	if n != 3 {
		t.Fatalf("mid-range cost must keep the backlog target, got %d", n)
	}
	if dt != c.cfg.PhysicsDt {
		t.Fatalf("mid-range plan must keep the configured dt, got %v", dt)
	}

	// Expensive substeps force a single stretched step.
	c.syncBudget = newBudget()
	for i := 0; i < 30; i++ {
		c.syncBudget.add(float64(c.cfg.PhysicsDt))
	}
	c.timeAccum = c.cfg.PhysicsDt * 6
	n, dt = c.substepPlan()
	if n != 1 {
		t.Fatalf("overloaded plan must clamp to one substep, got %d", n)
	}
	if dt <= c.cfg.PhysicsDt {
		t.Fatalf("clamped plan must stretch dt, got %v", dt)
	}

	// Cheap substeps cap the drain at ceil(1/ratio).
	c.syncBudget = newBudget()
	for i := 0; i < 30; i++ {
		c.syncBudget.add(float64(c.cfg.PhysicsDt) * 0.25)
	}
	c.timeAccum = c.cfg.PhysicsDt * 8
	n, _ = c.substepPlan()
	if n != 4 {
		t.Fatalf("cheap plan must cap at ceil(1/ratio)=4, got %d", n)
	}
}

func TestBudgetRejectsOutliers(t *testing.T) {
	b := newBudget()
	for i := 0; i < 29; i++ {
		b.add(0.001)
	}
	b.add(10) // GC-pause shaped spike

	if avg := b.average(); avg > 0.002 {
		t.Fatalf("a single spike must not dominate the average, got %v", avg)
	}

	// Identical samples pass through untouched.
	b = newBudget()
	for i := 0; i < 30; i++ {
		b.add(0.5)
	}
	if avg := b.average(); avg != 0.5 {
		t.Fatalf("expected 0.5, got %v", avg)
	}
}
