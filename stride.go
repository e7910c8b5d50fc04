// Package stride is the character movement and collision core of a 3D
// action-RPG engine. Each simulation tick it advances every animate entity
// from an intended movement vector to a new position that respects world
// collision, gravity, water, slopes, stairs and inter-actor contact,
// cooperating with an external rigid-body engine through shape casts.
package stride

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/game"
	"github.com/stride-engine/stride/phys"
	"github.com/stride-engine/stride/serror"
	"github.com/stride-engine/stride/settings"
	"github.com/stride-engine/stride/sight"
	"github.com/stride-engine/stride/worker"
)

// waterSlabHalfExtent is how far the trigger slab of a water volume reaches
// horizontally; effectively unbounded for any playable cell.
const waterSlabHalfExtent = float32(1 << 20)

// waterSlabThickness is the trigger slab's vertical half extent.
const waterSlabThickness = float32(1)

// Core owns the tick loop, the entity registry and the job pool. All entity
// management happens on the caller's thread between ticks; queries are safe
// from any thread.
type Core struct {
	log    *slog.Logger
	eng    phys.Engine
	tracer *phys.Tracer
	cfg    *settings.Settings
	pool   *worker.Pool
	los    *sight.Cache

	// mu is the global simulation mutex: shared for queries and merges,
	// exclusive for structural mutation. Elided entirely with one worker.
	mu      sync.RWMutex
	noLocks bool

	actors      *orderedmap.OrderedMap[entity.Handle, *entity.Actor]
	objects     *orderedmap.OrderedMap[entity.Handle, *entity.Object]
	projectiles *orderedmap.OrderedMap[entity.Handle, *entity.Projectile]
	holders     map[entity.Handle]entity.Holder

	nextHandle atomic.Uint64

	pendingRemove []entity.Handle
	projectileSub func(entity.Handle, entity.ProjectileHit)

	timeAccum  float32
	waterLevel float32
	stormDir   mgl32.Vec3
	inStorm    bool

	frames    []*entity.FrameData
	framePool sync.Pool

	syncBudget  *budget
	asyncBudget *budget
}

// New builds a core over the external engine. A nil cfg uses defaults, a nil
// logger discards.
func New(eng phys.Engine, cfg *settings.Settings, log *slog.Logger) *Core {
	if cfg == nil {
		cfg = settings.Default()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	tracer := phys.NewTracer(eng)
	tracer.MinCollisionDot = cfg.MinCollisionDot

	c := &Core{
		log:         log,
		eng:         eng,
		tracer:      tracer,
		cfg:         cfg,
		pool:        worker.NewPool(cfg.Workers),
		actors:      orderedmap.NewOrderedMap[entity.Handle, *entity.Actor](),
		objects:     orderedmap.NewOrderedMap[entity.Handle, *entity.Object](),
		projectiles: orderedmap.NewOrderedMap[entity.Handle, *entity.Projectile](),
		holders:     make(map[entity.Handle]entity.Holder),
		waterLevel:  -math32.MaxFloat32,
		syncBudget:  newBudget(),
		asyncBudget: newBudget(),
		framePool: sync.Pool{New: func() any {
			return &entity.FrameData{}
		}},
	}
	c.noLocks = !c.pool.Concurrent()
	c.los = sight.New(tracer, c.resolveEye, cfg.LOSKeepInactive)
	eng.SetContactListener(contactDispatcher{c})
	return c
}

// Close releases the job pool. The engine stays with the caller.
func (c *Core) Close() {
	c.pool.Close()
}

func (c *Core) lock() {
	if !c.noLocks {
		c.mu.Lock()
	}
}

func (c *Core) unlock() {
	if !c.noLocks {
		c.mu.Unlock()
	}
}

func (c *Core) rlock() {
	if !c.noLocks {
		c.mu.RLock()
	}
}

func (c *Core) runlock() {
	if !c.noLocks {
		c.mu.RUnlock()
	}
}

func (c *Core) newHandle() entity.Handle {
	return entity.Handle(c.nextHandle.Inc())
}

// AddActor registers an actor and creates its kinematic body. Actors without
// half-extents fall back to their mesh bounds; with neither they are rejected.
func (c *Core) AddActor(def entity.ActorDef) (entity.Handle, error) {
	if def.HalfExtents == (mgl32.Vec3{}) && def.MeshBounds == (mgl32.Vec3{}) {
		c.log.Error(game.ErrorMissingCollisionShape)
		return 0, serror.ErrMissingCollisionShape
	}

	h := c.newHandle()
	a := entity.NewActor(h, def)

	body, err := c.eng.AddBody(phys.BodyDef{
		Shape:    a.Shape(),
		Position: a.CollisionObjectPosition(),
		Layer:    phys.LayerActor,
		Motion:   phys.MotionKinematic,
		Mass:     c.cfg.ActorMass,
		UserData: uint64(h),
	})
	if err != nil {
		return 0, fmt.Errorf(game.ErrorBodyCreation, err)
	}
	a.AttachBody(body)

	c.lock()
	defer c.unlock()
	c.actors.Set(h, a)
	c.holders[h] = a
	return h, nil
}

// AddObject registers a kinematic collider.
func (c *Core) AddObject(def entity.ObjectDef) (entity.Handle, error) {
	h := c.newHandle()
	o := entity.NewObject(h, def)

	body, err := c.eng.AddBody(phys.BodyDef{
		Shape:    o.Shape(),
		Position: o.Position(),
		Layer:    o.Layer(),
		Motion:   phys.MotionKinematic,
		UserData: uint64(h),
	})
	if err != nil {
		return 0, fmt.Errorf(game.ErrorBodyCreation, err)
	}
	o.AttachBody(body)

	c.lock()
	defer c.unlock()
	c.objects.Set(h, o)
	c.holders[h] = o
	return h, nil
}

// AddProjectile registers a linear-cast sphere with gravity disabled. The hit
// recorded on its first accepted contact is reported to the projectile
// subscriber when the projectile is removed.
func (c *Core) AddProjectile(def entity.ProjectileDef) (entity.Handle, error) {
	h := c.newHandle()
	p := entity.NewProjectile(h, def)

	body, err := c.eng.AddBody(phys.BodyDef{
		Shape:         phys.Sphere{Radius: def.Radius},
		Position:      def.Position,
		Layer:         phys.LayerProjectile,
		Motion:        phys.MotionLinearCast,
		GravityFactor: 0,
		UserData:      uint64(h),
	})
	if err != nil {
		return 0, fmt.Errorf(game.ErrorBodyCreation, err)
	}
	p.AttachBody(body)
	c.eng.SetVelocity(body, def.Velocity)

	c.lock()
	defer c.unlock()
	c.projectiles.Set(h, p)
	c.holders[h] = p
	return h, nil
}

// AddHeightfield registers one immutable terrain tile.
func (c *Core) AddHeightfield(shape phys.HeightField) (entity.Handle, error) {
	h := c.newHandle()
	hf := entity.NewHeightfield(h, shape)

	body, err := c.eng.AddBody(phys.BodyDef{
		Shape:    shape,
		Position: shape.Origin,
		Layer:    phys.LayerHeightmap,
		Motion:   phys.MotionStatic,
		UserData: uint64(h),
	})
	if err != nil {
		return 0, fmt.Errorf(game.ErrorBodyCreation, err)
	}
	hf.AttachBody(body)

	c.lock()
	defer c.unlock()
	c.holders[h] = hf
	return h, nil
}

// AddWater places the water trigger slab at the given surface level and makes
// it the level swim logic uses.
func (c *Core) AddWater(level float32) (entity.Handle, error) {
	h := c.newHandle()
	w := entity.NewWater(h, level)

	body, err := c.eng.AddBody(phys.BodyDef{
		Shape:    phys.Box{Extents: mgl32.Vec3{waterSlabHalfExtent, waterSlabHalfExtent, waterSlabThickness}},
		Position: mgl32.Vec3{0, 0, level},
		Layer:    phys.LayerWater,
		Motion:   phys.MotionStatic,
		UserData: uint64(h),
	})
	if err != nil {
		return 0, fmt.Errorf(game.ErrorBodyCreation, err)
	}
	w.AttachBody(body)

	c.lock()
	defer c.unlock()
	c.holders[h] = w
	c.waterLevel = level
	return h, nil
}

// SetWaterLevel overrides the swim level without placing a trigger slab.
func (c *Core) SetWaterLevel(level float32) {
	c.lock()
	defer c.unlock()
	c.waterLevel = level
}

// SetStorm sets the world storm state; walking against the storm direction is
// slowed.
func (c *Core) SetStorm(dir mgl32.Vec3, active bool) {
	c.lock()
	defer c.unlock()
	c.stormDir = dir
	c.inStorm = active
}

// OnProjectileHit registers the subscriber projectile teardown reports to.
func (c *Core) OnProjectileHit(fn func(entity.Handle, entity.ProjectileHit)) {
	c.lock()
	defer c.unlock()
	c.projectileSub = fn
}

// Remove schedules an entity for removal at the next tick boundary.
func (c *Core) Remove(h entity.Handle) {
	c.lock()
	defer c.unlock()
	c.pendingRemove = append(c.pendingRemove, h)
}

// removeNow destroys a holder's body. User data is cleared first so stray
// contact callbacks can detect the teardown. Caller holds the exclusive lock.
func (c *Core) removeNow(h entity.Handle) {
	holder, ok := c.holders[h]
	if !ok {
		return
	}
	if p, isProjectile := holder.(*entity.Projectile); isProjectile && c.projectileSub != nil {
		c.projectileSub(h, p.Hit())
	}
	body := holder.Body()
	if body != phys.InvalidBody {
		c.tracer.SetNonSolid(body, false)
		c.eng.SetUserData(body, 0)
		c.eng.RemoveBody(body)
	}
	delete(c.holders, h)
	c.actors.Delete(h)
	c.objects.Delete(h)
	c.projectiles.Delete(h)
}

// Actor returns the live actor record for a handle.
func (c *Core) Actor(h entity.Handle) (*entity.Actor, bool) {
	c.rlock()
	defer c.runlock()
	return c.actors.Get(h)
}

// QueueMovement overwrites the actor's queued movement vector for the next
// tick.
func (c *Core) QueueMovement(h entity.Handle, movement mgl32.Vec3) {
	if a, ok := c.Actor(h); ok {
		a.QueueMovement(movement)
	}
}

// AdjustPosition applies an atomic offset at the next snapshot boundary.
func (c *Core) AdjustPosition(h entity.Handle, offset mgl32.Vec3) {
	if a, ok := c.Actor(h); ok {
		a.ScheduleOffset(offset)
	}
}

// ToggleCollisionMode flips an actor's noclip state and returns the new value.
func (c *Core) ToggleCollisionMode(h entity.Handle) bool {
	a, ok := c.Actor(h)
	if !ok {
		return false
	}
	return a.ToggleCollisionMode()
}

// MarkAsNonSolid stops other movers from colliding with the actor. The actor
// itself keeps colliding with the world.
func (c *Core) MarkAsNonSolid(h entity.Handle, nonSolid bool) {
	if a, ok := c.Actor(h); ok {
		a.SetNonSolid(nonSolid)
		c.tracer.SetNonSolid(a.Body(), nonSolid)
	}
}

// InterpolatedPosition returns the render-time position produced by the last
// final sync.
func (c *Core) InterpolatedPosition(h entity.Handle) (mgl32.Vec3, bool) {
	a, ok := c.Actor(h)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return a.RenderPosition(), true
}

// HalfExtents returns the collision half extents for a handle.
func (c *Core) HalfExtents(h entity.Handle) (mgl32.Vec3, bool) {
	a, ok := c.Actor(h)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return a.HalfExtents(), true
}

// CastRay fires a thin ray through the external engine. Thread-safe; sees the
// world as of the most recent world step.
func (c *Core) CastRay(from, dir mgl32.Vec3, mask phys.Layer, backfaces bool) (phys.Hit, bool) {
	c.rlock()
	defer c.runlock()
	return c.tracer.RayCast(from, dir, mask, backfaces)
}

// CastSphere sweeps a sphere between two points.
func (c *Core) CastSphere(radius float32, from, to mgl32.Vec3, mask phys.Layer) phys.Hit {
	c.rlock()
	defer c.runlock()
	return c.tracer.Trace(phys.InvalidBody, phys.Sphere{Radius: radius}, from, to, mask)
}

// GetLineOfSight answers whether two actors can see each other, served from
// the bounded pair cache.
func (c *Core) GetLineOfSight(a, b entity.Handle) bool {
	return c.los.Query(a, b)
}

// GetCollisions enumerates the handles currently in contact with the entity.
// group is the querying object's layer for matrix filtering; mask selects the
// layers to collect.
func (c *Core) GetCollisions(h entity.Handle, group, mask phys.Layer) []entity.Handle {
	c.rlock()
	defer c.runlock()

	holder, ok := c.holders[h]
	if !ok {
		return nil
	}
	body := holder.Body()
	shape, okShape := c.eng.BodyShape(body)
	pos, okPos := c.eng.Position(body)
	if !okShape || !okPos {
		return nil
	}

	contacts := c.eng.CollideShape(shape, pos, phys.Filter{Mask: mask, Exclude: []phys.BodyID{body}})
	out := make([]entity.Handle, 0, len(contacts))
	for _, contact := range contacts {
		if group != 0 && !phys.Collides(group, contact.Layer) {
			continue
		}
		ud := c.eng.UserData(contact.Body)
		if ud == 0 {
			continue
		}
		out = append(out, entity.Handle(ud))
	}
	return out
}

// resolveEye maps an actor handle to its current eye position for LOS rays.
func (c *Core) resolveEye(h entity.Handle) (mgl32.Vec3, bool) {
	a, ok := c.Actor(h)
	if !ok {
		return mgl32.Vec3{}, false
	}
	pos := a.Position()
	pos[2] += a.HalfExtents()[2] * 1.8
	return pos, true
}
