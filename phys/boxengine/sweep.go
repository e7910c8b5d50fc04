package boxengine

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/phys"
)

// sweepBody sweeps an axis-aligned box of half extents he from a center
// position along motion against one body. A zero-extent box is a ray.
func sweepBody(b *body, he, from, motion mgl32.Vec3) (phys.Hit, bool) {
	switch s := b.shape.(type) {
	case phys.HalfSpace:
		return sweepHalfSpace(s, he, from, motion)
	case phys.HeightField:
		return sweepHeightField(b, s, he, from, motion)
	}

	target, _ := b.box()
	// Minkowski expansion reduces the box sweep to a ray against the target
	// grown by the moving half extents.
	expanded := cube.Box(
		target.Min().X()-he[0], target.Min().Y()-he[1], target.Min().Z()-he[2],
		target.Max().X()+he[0], target.Max().Y()+he[1], target.Max().Z()+he[2],
	)
	frac, normal, ok := rayBox(from, motion, expanded)
	if !ok {
		return phys.Hit{}, false
	}
	end := from.Add(motion.Mul(frac))
	return phys.Hit{
		Fraction: frac,
		EndPos:   end,
		Normal:   normal,
		Point:    clampToBox(end, target),
	}, true
}

// rayBox is a slab test of a ray (origin plus full-length motion) against an
// AABB. It reports the entry fraction in [0, 1] and the entry face normal; a
// ray starting inside reports fraction 0 with a minimum-penetration normal.
func rayBox(from, motion mgl32.Vec3, box cube.BBox) (float32, mgl32.Vec3, bool) {
	bmin := mgl32.Vec3{box.Min().X(), box.Min().Y(), box.Min().Z()}
	bmax := mgl32.Vec3{box.Max().X(), box.Max().Y(), box.Max().Z()}

	tEntry := float32(-math32.MaxFloat32)
	tExit := float32(math32.MaxFloat32)
	entryAxis := -1
	entrySign := float32(0)

	for i := 0; i < 3; i++ {
		if motion[i] == 0 {
			if from[i] < bmin[i] || from[i] > bmax[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		t1 := (bmin[i] - from[i]) / motion[i]
		t2 := (bmax[i] - from[i]) / motion[i]
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tEntry {
			tEntry = t1
			entryAxis = i
			entrySign = sign
		}
		tExit = math32.Min(tExit, t2)
	}

	if tEntry > tExit || tEntry > 1 || tExit < 0 {
		return 0, mgl32.Vec3{}, false
	}
	if tEntry < 0 {
		// Started inside: push out along the shallowest face.
		normal, _ := minPenetrationNormal(from, box)
		return 0, normal, true
	}
	var normal mgl32.Vec3
	normal[entryAxis] = entrySign
	return tEntry, normal, true
}

// minPenetrationNormal returns the push-out direction and depth for a point
// inside a box.
func minPenetrationNormal(p mgl32.Vec3, box cube.BBox) (mgl32.Vec3, float32) {
	bmin := mgl32.Vec3{box.Min().X(), box.Min().Y(), box.Min().Z()}
	bmax := mgl32.Vec3{box.Max().X(), box.Max().Y(), box.Max().Z()}

	best := float32(math32.MaxFloat32)
	var normal mgl32.Vec3
	for i := 0; i < 3; i++ {
		if d := p[i] - bmin[i]; d < best {
			best = d
			normal = mgl32.Vec3{}
			normal[i] = -1
		}
		if d := bmax[i] - p[i]; d < best {
			best = d
			normal = mgl32.Vec3{}
			normal[i] = 1
		}
	}
	return normal, best
}

func clampToBox(p mgl32.Vec3, box cube.BBox) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Min(math32.Max(p[0], box.Min().X()), box.Max().X()),
		math32.Min(math32.Max(p[1], box.Min().Y()), box.Max().Y()),
		math32.Min(math32.Max(p[2], box.Min().Z()), box.Max().Z()),
	}
}

// support is the extent of an axis-aligned box along a plane normal.
func support(he, n mgl32.Vec3) float32 {
	return math32.Abs(n[0])*he[0] + math32.Abs(n[1])*he[1] + math32.Abs(n[2])*he[2]
}

// sweepHalfSpace sweeps a box against the infinite solid below the plane.
func sweepHalfSpace(s phys.HalfSpace, he, from, motion mgl32.Vec3) (phys.Hit, bool) {
	n := s.Normal
	if n.LenSqr() == 0 {
		return phys.Hit{}, false
	}
	n = n.Normalize()
	sup := support(he, n)

	// Signed distance of the box's deepest point above the surface, at both
	// ends of the sweep.
	d0 := n.Dot(from) - sup - s.Offset
	d1 := n.Dot(from.Add(motion)) - sup - s.Offset
	if d0 < 0 {
		return phys.Hit{
			Fraction: 0,
			EndPos:   from,
			Normal:   n,
			Point:    from.Sub(n.Mul(sup)),
		}, true
	}
	if d1 >= 0 || d0 == d1 {
		return phys.Hit{}, false
	}
	frac := d0 / (d0 - d1)
	end := from.Add(motion.Mul(frac))
	return phys.Hit{
		Fraction: frac,
		EndPos:   end,
		Normal:   n,
		Point:    end.Sub(n.Mul(sup)),
	}, true
}

// overlapBody tests a box of half extents he at pos for overlap with one body.
func overlapBody(b *body, he, pos mgl32.Vec3) (phys.Contact, bool) {
	switch s := b.shape.(type) {
	case phys.HalfSpace:
		return overlapHalfSpace(s, he, pos)
	case phys.HeightField:
		return overlapHeightField(b, s, he, pos)
	}

	target, _ := b.box()
	query := cube.Box(
		pos[0]-he[0], pos[1]-he[1], pos[2]-he[2],
		pos[0]+he[0], pos[1]+he[1], pos[2]+he[2],
	)
	if !query.IntersectsWith(target) {
		return phys.Contact{}, false
	}

	// Per-axis overlap of the two boxes; the shallowest axis is the push-out.
	best := float32(math32.MaxFloat32)
	var normal mgl32.Vec3
	for i := 0; i < 3; i++ {
		qMin, qMax := pos[i]-he[i], pos[i]+he[i]
		tMin, tMax := b.pos[i]-b.shape.HalfExtents()[i], b.pos[i]+b.shape.HalfExtents()[i]
		if d := qMax - tMin; d < best {
			best = d
			normal = mgl32.Vec3{}
			normal[i] = -1
		}
		if d := tMax - qMin; d < best {
			best = d
			normal = mgl32.Vec3{}
			normal[i] = 1
		}
	}
	if best <= 0 {
		return phys.Contact{}, false
	}
	return phys.Contact{
		Normal: normal,
		Depth:  best,
		Point:  clampToBox(pos, target),
	}, true
}

func overlapHalfSpace(s phys.HalfSpace, he, pos mgl32.Vec3) (phys.Contact, bool) {
	n := s.Normal
	if n.LenSqr() == 0 {
		return phys.Contact{}, false
	}
	n = n.Normalize()
	sup := support(he, n)
	d := n.Dot(pos) - sup - s.Offset
	if d >= 0 {
		return phys.Contact{}, false
	}
	return phys.Contact{
		Normal: n,
		Depth:  -d,
		Point:  pos.Sub(n.Mul(sup)),
	}, true
}
