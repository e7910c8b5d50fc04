package boxengine

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/phys"
)

// heightfield queries sample the grid analytically: the tile is anchored at
// the body position, spans (Size-1)*CellSize in x and y around it, and stores
// heights row-major, Verts[iy*Size+ix], relative to the anchor's z.

// heightAt returns the bilinearly interpolated terrain height at a world x, y.
// ok is false outside the tile.
func heightAt(anchor mgl32.Vec3, s phys.HeightField, x, y float32) (float32, bool) {
	half := float32(s.Size-1) * s.CellSize * 0.5
	fx := (x - (anchor[0] - half)) / s.CellSize
	fy := (y - (anchor[1] - half)) / s.CellSize
	if fx < 0 || fy < 0 || fx > float32(s.Size-1) || fy > float32(s.Size-1) {
		return 0, false
	}

	ix := int(fx)
	iy := int(fy)
	if ix >= s.Size-1 {
		ix = s.Size - 2
	}
	if iy >= s.Size-1 {
		iy = s.Size - 2
	}
	tx := fx - float32(ix)
	ty := fy - float32(iy)

	h00 := s.Verts[iy*s.Size+ix]
	h10 := s.Verts[iy*s.Size+ix+1]
	h01 := s.Verts[(iy+1)*s.Size+ix]
	h11 := s.Verts[(iy+1)*s.Size+ix+1]

	h := h00*(1-tx)*(1-ty) + h10*tx*(1-ty) + h01*(1-tx)*ty + h11*tx*ty
	return anchor[2] + h, true
}

// normalAt derives the surface normal from central height differences.
func normalAt(anchor mgl32.Vec3, s phys.HeightField, x, y float32) mgl32.Vec3 {
	d := s.CellSize * 0.5
	hxp, okxp := heightAt(anchor, s, x+d, y)
	hxm, okxm := heightAt(anchor, s, x-d, y)
	hyp, okyp := heightAt(anchor, s, x, y+d)
	hym, okym := heightAt(anchor, s, x, y-d)
	if !okxp || !okxm || !okyp || !okym {
		return mgl32.Vec3{0, 0, 1}
	}
	n := mgl32.Vec3{-(hxp - hxm) / (2 * d), -(hyp - hym) / (2 * d), 1}
	return n.Normalize()
}

// sweepHeightField marches a box sweep across the tile and stops at the first
// sample whose bottom face dips below the surface.
func sweepHeightField(b *body, s phys.HeightField, he, from, motion mgl32.Vec3) (phys.Hit, bool) {
	if s.Size < 2 || len(s.Verts) < s.Size*s.Size {
		return phys.Hit{}, false
	}

	length := motion.Len()
	step := s.CellSize * 0.25
	if step <= 0 {
		step = 1
	}
	samples := int(length/step) + 1

	prev := float32(0)
	for i := 0; i <= samples; i++ {
		t := float32(i) / float32(samples)
		if t > 1 {
			t = 1
		}
		p := from.Add(motion.Mul(t))
		h, ok := heightAt(b.pos, s, p[0], p[1])
		if !ok {
			prev = t
			continue
		}
		if p[2]-he[2] < h {
			// Refine to the last clear sample, then report the surface there.
			end := from.Add(motion.Mul(prev))
			return phys.Hit{
				Fraction: prev,
				EndPos:   end,
				Normal:   normalAt(b.pos, s, p[0], p[1]),
				Point:    mgl32.Vec3{p[0], p[1], h},
			}, true
		}
		prev = t
	}
	return phys.Hit{}, false
}

// overlapHeightField reports how far a box's bottom face sits below the
// surface under its center.
func overlapHeightField(b *body, s phys.HeightField, he, pos mgl32.Vec3) (phys.Contact, bool) {
	if s.Size < 2 || len(s.Verts) < s.Size*s.Size {
		return phys.Contact{}, false
	}
	h, ok := heightAt(b.pos, s, pos[0], pos[1])
	if !ok {
		return phys.Contact{}, false
	}
	depth := h - (pos[2] - he[2])
	if depth <= 0 {
		return phys.Contact{}, false
	}
	n := normalAt(b.pos, s, pos[0], pos[1])
	return phys.Contact{
		Normal: n,
		Depth:  depth * math32.Max(n[2], 0.1),
		Point:  mgl32.Vec3{pos[0], pos[1], h},
	}, true
}
