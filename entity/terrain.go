package entity

import (
	"github.com/stride-engine/stride/phys"
)

// Heightfield is one immutable terrain tile.
type Heightfield struct {
	handle Handle
	body   phys.BodyID
	shape  phys.HeightField

	nopContact
}

// NewHeightfield builds a terrain tile record from pre-built height data.
func NewHeightfield(handle Handle, shape phys.HeightField) *Heightfield {
	return &Heightfield{handle: handle, shape: shape}
}

func (h *Heightfield) Kind() Kind                { return KindHeightfield }
func (h *Heightfield) Handle() Handle            { return h.handle }
func (h *Heightfield) Body() phys.BodyID         { return h.body }
func (h *Heightfield) AttachBody(id phys.BodyID) { h.body = id }
func (h *Heightfield) Shape() phys.HeightField   { return h.shape }

// Water is a thin horizontal trigger slab used only to detect water entry.
type Water struct {
	handle Handle
	body   phys.BodyID
	level  float32

	nopContact
}

// NewWater builds a water volume at the given surface level.
func NewWater(handle Handle, level float32) *Water {
	return &Water{handle: handle, level: level}
}

func (w *Water) Kind() Kind                { return KindWater }
func (w *Water) Handle() Handle            { return w.handle }
func (w *Water) Body() phys.BodyID         { return w.body }
func (w *Water) AttachBody(id phys.BodyID) { w.body = id }

// Level returns the water surface height.
func (w *Water) Level() float32 { return w.level }
