// Package sight services the line-of-sight queries AI issues against the
// physics world, caching pair results across ticks.
package sight

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/phys"
)

// RayCaster is the thin ray primitive the cache recomputes entries with.
// *phys.Tracer satisfies it.
type RayCaster interface {
	RayCast(from, dir mgl32.Vec3, mask phys.Layer, backfaces bool) (phys.Hit, bool)
}

// Resolver maps an actor handle to its current eye position. ok is false once
// the actor is gone; entries referencing it are culled.
type Resolver func(h entity.Handle) (eye mgl32.Vec3, ok bool)

type entry struct {
	key    uint64
	a, b   entity.Handle
	result bool
	// age is seconds since the entry was last queried.
	age   float32
	stale bool
}

// Cache is a bounded set of pair queries with age-out and stale removal. Reads
// and appends take the mutex; the parallel refresh pass holds it shared while
// an atomic cursor hands each entry to exactly one worker.
type Cache struct {
	caster  RayCaster
	resolve Resolver
	// keep is how long an unqueried entry survives, in seconds.
	keep float32

	mu      sync.RWMutex
	entries []*entry

	cursor atomic.Int64
}

// New builds an empty cache.
func New(caster RayCaster, resolve Resolver, keep time.Duration) *Cache {
	return &Cache{
		caster:  caster,
		resolve: resolve,
		keep:    float32(keep.Seconds()),
	}
}

func pairKey(a, b entity.Handle) uint64 {
	if b < a {
		a, b = b, a
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(a))
	binary.LittleEndian.PutUint64(buf[8:], uint64(b))
	return xxh3.Hash(buf[:])
}

// Query returns whether a and b can see each other, computing and caching the
// answer on a miss. Hits reset the entry's age.
func (c *Cache) Query(a, b entity.Handle) bool {
	key := pairKey(a, b)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.key == key && !e.stale {
			e.age = 0
			return e.result
		}
	}

	result := c.compute(a, b)
	c.entries = append(c.entries, &entry{key: key, a: a, b: b, result: result})
	return result
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !e.stale {
			n++
		}
	}
	return n
}

// BeginRefresh arms the refresh cursor for a new parallel pass. dt is the time
// to age every entry by.
func (c *Cache) BeginRefresh() {
	c.cursor.Store(0)
}

// RefreshWorker drains the refresh cursor, recomputing one entry at a time
// until none are left. Run one call per pool worker after the movement barrier.
// Each entry is touched by exactly one worker, so a shared lock suffices.
func (c *Cache) RefreshWorker(dt float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for {
		i := int(c.cursor.Inc()) - 1
		if i >= len(c.entries) {
			return
		}
		c.refreshEntry(c.entries[i], dt)
	}
}

func (c *Cache) refreshEntry(e *entry, dt float32) {
	if e.stale {
		return
	}
	e.age += dt
	if e.age > c.keep {
		e.stale = true
		return
	}
	if _, ok := c.resolve(e.a); !ok {
		e.stale = true
		return
	}
	if _, ok := c.resolve(e.b); !ok {
		e.stale = true
		return
	}
	e.result = c.compute(e.a, e.b)
}

// Cull removes stale entries. The scheduler calls this between ticks.
func (c *Cache) Cull() {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.entries[:0]
	for _, e := range c.entries {
		if !e.stale {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

func (c *Cache) compute(a, b entity.Handle) bool {
	eyeA, okA := c.resolve(a)
	eyeB, okB := c.resolve(b)
	if !okA || !okB {
		return false
	}
	dir := eyeB.Sub(eyeA)
	hit, blocked := c.caster.RayCast(eyeA, dir, phys.MaskLOSObstacles, true)
	if !blocked {
		return true
	}
	return hit.Fraction >= 1
}
