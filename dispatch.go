package stride

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-engine/stride/entity"
	"github.com/stride-engine/stride/phys"
)

// contactDispatcher routes engine contact callbacks to holder records. The
// engine may call it from its own worker threads during Step, so lookups go
// through user data alone and never touch the registry maps directly.
type contactDispatcher struct {
	c *Core
}

// holderByBody resolves a body to its holder. A zero user data value means the
// entity was torn down while the contact was in flight.
func (d contactDispatcher) holderByBody(body phys.BodyID) entity.Holder {
	ud := d.c.eng.UserData(body)
	if ud == 0 {
		return nil
	}
	d.c.rlock()
	defer d.c.runlock()
	return d.c.holders[entity.Handle(ud)]
}

// OnContactValidate rejects contacts whose self entity is already torn down and
// otherwise defers to the holder's own eligibility rules.
func (d contactDispatcher) OnContactValidate(self, other phys.BodyID) bool {
	h := d.holderByBody(self)
	if h == nil {
		return false
	}
	return h.OnContactValidate(d.holderByBody(other))
}

// OnContactAdded forwards an accepted contact to the self holder.
func (d contactDispatcher) OnContactAdded(self, other phys.BodyID, point, normal mgl32.Vec3) {
	h := d.holderByBody(self)
	if h == nil {
		return
	}
	h.OnContactAdded(d.holderByBody(other), point, normal)
}
