package systems

import (
	"github.com/mlange-42/ark/ecs"
)

// SpatialGrid buckets entities into square cells over the arena floor for
// broad-phase contact queries.
type SpatialGrid struct {
	cellSize   float32
	cols, rows int
	minX, minZ float32
	cells      [][]ecs.Entity
}

// NewSpatialGrid creates a grid covering arena.
func NewSpatialGrid(arena Arena, cellSize float32) *SpatialGrid {
	cols := int(arena.Width()/cellSize) + 1
	rows := int(arena.Depth()/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		minX:     arena.MinX,
		minZ:     arena.MinZ,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity at (x, z). Positions outside the arena land in the
// nearest edge cell.
func (g *SpatialGrid) Insert(e ecs.Entity, x, z float32) {
	idx := g.cellIndex(x, z)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryInto appends every entity in cells within radius of (x, z) to dst.
// Results are candidates only; callers do the exact test.
func (g *SpatialGrid) QueryInto(dst []ecs.Entity, x, z, radius float32) []ecs.Entity {
	c0, r0 := g.cell(x-radius, z-radius)
	c1, r1 := g.cell(x+radius, z+radius)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// cell returns the clamped column and row for a position.
func (g *SpatialGrid) cell(x, z float32) (col, row int) {
	col = int((x - g.minX) / g.cellSize)
	row = int((z - g.minZ) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, z float32) int {
	col, row := g.cell(x, z)
	return row*g.cols + col
}
