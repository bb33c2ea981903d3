package systems

import (
	"fmt"

	"github.com/pthm-cable/replicants/components"
)

// Arena is the fixed rectangle on the X/Z plane that units must stay inside.
// It is set once at startup and never mutated.
type Arena struct {
	MinX, MinZ float32
	MaxX, MaxZ float32
}

// NewArena returns the arena spanning the given extents.
func NewArena(minX, minZ, maxX, maxZ float32) (Arena, error) {
	if minX >= maxX || minZ >= maxZ {
		return Arena{}, fmt.Errorf("arena: invalid bounds min=(%g,%g) max=(%g,%g)", minX, minZ, maxX, maxZ)
	}
	return Arena{MinX: minX, MinZ: minZ, MaxX: maxX, MaxZ: maxZ}, nil
}

// Contains reports whether p lies inside the arena expanded by eps.
func (a Arena) Contains(p components.Vec3, eps float32) bool {
	return p.X >= a.MinX-eps && p.X <= a.MaxX+eps &&
		p.Z >= a.MinZ-eps && p.Z <= a.MaxZ+eps
}

// Width returns the X extent.
func (a Arena) Width() float32 { return a.MaxX - a.MinX }

// Depth returns the Z extent.
func (a Arena) Depth() float32 { return a.MaxZ - a.MinZ }
