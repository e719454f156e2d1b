package physics

import (
	"fmt"
	"iter"
	"math"
)

// SpatialGrid is a uniform grid for broad-phase neighbor queries in a bounded world.
// Each cell holds the ids of the particles currently inside it. Ids are back-references
// only; particle data lives in the particle store.
//
// Unlike a per-frame rebuild, the grid is maintained incrementally: callers move
// ids between cells with Relocate as positions change, so a cell only sees
// traffic when a particle actually crosses a cell border.
//
// Cell size should be >= the interaction distance so that all potential contacts
// are found within the 3x3 neighborhood.
type SpatialGrid struct {
	cellSize float32
	width    float32
	height   float32
	cols     int
	rows     int
	cells    []gridCell
	count    int
}

// gridCell stores the ids of particles that fall within a grid cell.
// Order is irrelevant; removal swaps with the last element.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a spatial grid covering [0,worldW) x [0,worldH).
// The grid has ceil(worldW/cellSize) x ceil(worldH/cellSize) cells.
func NewSpatialGrid(worldW, worldH, cellSize float32) (*SpatialGrid, error) {
	if !isFinite(worldW) || !isFinite(worldH) || !isFinite(cellSize) ||
		worldW <= 0 || worldH <= 0 || cellSize <= 0 {
		return nil, fmt.Errorf("%w: world %vx%v, cell %v", ErrInvalidGrid, worldW, worldH, cellSize)
	}

	cols := int(math.Ceil(float64(worldW) / float64(cellSize)))
	rows := int(math.Ceil(float64(worldH) / float64(cellSize)))

	return &SpatialGrid{
		cellSize: cellSize,
		width:    worldW,
		height:   worldH,
		cols:     cols,
		rows:     rows,
		cells:    make([]gridCell, cols*rows),
	}, nil
}

// Cols returns the number of cells per row.
func (g *SpatialGrid) Cols() int { return g.cols }

// Rows returns the number of cell rows.
func (g *SpatialGrid) Rows() int { return g.rows }

// CellSize returns the edge length of a cell.
func (g *SpatialGrid) CellSize() float32 { return g.cellSize }

// Len returns the number of ids currently indexed.
func (g *SpatialGrid) Len() int { return g.count }

// Contains reports whether pos lies inside the world bounds.
func (g *SpatialGrid) Contains(pos Vec2) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

// CellOf returns the cell coordinates for pos, or ErrOutOfBounds.
func (g *SpatialGrid) CellOf(pos Vec2) (col, row int, err error) {
	if !g.Contains(pos) {
		return 0, 0, fmt.Errorf("%w: (%v, %v)", ErrOutOfBounds, pos.X, pos.Y)
	}
	col, row = g.posToCell(pos)
	return col, row, nil
}

// Insert adds id to the cell containing pos.
func (g *SpatialGrid) Insert(id int, pos Vec2) error {
	idx, err := g.cellIndex(pos)
	if err != nil {
		return err
	}
	cell := &g.cells[idx]
	if cell.indexOf(id) >= 0 {
		return fmt.Errorf("%w: id %d already in cell %d", ErrInvariantViolation, id, idx)
	}
	cell.items = append(cell.items, id)
	g.count++
	return nil
}

// Remove deletes id from the cell containing pos.
func (g *SpatialGrid) Remove(id int, pos Vec2) error {
	idx, err := g.cellIndex(pos)
	if err != nil {
		return err
	}
	if !g.cells[idx].remove(id) {
		return fmt.Errorf("%w: id %d missing from cell %d", ErrInvariantViolation, id, idx)
	}
	g.count--
	return nil
}

// Relocate moves id from the cell of from to the cell of to.
// It is a no-op when both positions map to the same cell. On error the grid
// is left exactly as it was.
func (g *SpatialGrid) Relocate(id int, from, to Vec2) error {
	oldIdx, err := g.cellIndex(from)
	if err != nil {
		return err
	}
	newIdx, err := g.cellIndex(to)
	if err != nil {
		return err
	}
	if oldIdx == newIdx {
		return nil
	}

	newCell := &g.cells[newIdx]
	if newCell.indexOf(id) >= 0 {
		return fmt.Errorf("%w: id %d already in cell %d", ErrInvariantViolation, id, newIdx)
	}
	if !g.cells[oldIdx].remove(id) {
		return fmt.Errorf("%w: id %d missing from cell %d", ErrInvariantViolation, id, oldIdx)
	}
	newCell.items = append(newCell.items, id)
	return nil
}

// QueryAround calls fn for each id in the block of cells around pos that can
// hold particles within radius of it. The block is at least 3x3 and is clipped
// at the world edges. Results are a superset; callers must check exact distance.
// If fn returns true, iteration stops early.
func (g *SpatialGrid) QueryAround(pos Vec2, radius float32, fn func(id int) bool) error {
	col, row, err := g.CellOf(pos)
	if err != nil {
		return err
	}

	span := 1
	if radius > g.cellSize {
		span = int(math.Ceil(float64(radius) / float64(g.cellSize)))
	}

	r0, r1 := max(row-span, 0), min(row+span, g.rows-1)
	c0, c1 := max(col-span, 0), min(col+span, g.cols-1)

	for r := r0; r <= r1; r++ {
		rowOffset := r * g.cols
		for c := c0; c <= c1; c++ {
			for _, id := range g.cells[rowOffset+c].items {
				if fn(id) {
					return nil
				}
			}
		}
	}
	return nil
}

// Neighbors returns the ids QueryAround would visit as a lazy sequence.
// The sequence can be ranged over more than once; each pass reads the grid as it is then.
func (g *SpatialGrid) Neighbors(pos Vec2, radius float32) (iter.Seq[int], error) {
	if !g.Contains(pos) {
		return nil, fmt.Errorf("%w: (%v, %v)", ErrOutOfBounds, pos.X, pos.Y)
	}
	return func(yield func(int) bool) {
		_ = g.QueryAround(pos, radius, func(id int) bool {
			return !yield(id)
		})
	}, nil
}

// Bucket returns a copy of the ids in the given cell.
func (g *SpatialGrid) Bucket(col, row int) []int {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return nil
	}
	items := g.cells[row*g.cols+col].items
	out := make([]int, len(items))
	copy(out, items)
	return out
}

// Clear removes all ids from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
	g.count = 0
}

// Verify audits the grid against the positions of ids 0..n-1: every id must
// appear exactly once, in the cell matching its position, and nothing else may
// be indexed. The first mismatch is reported as ErrInvariantViolation.
func (g *SpatialGrid) Verify(n int, position func(id int) Vec2) error {
	if g.count != n {
		return fmt.Errorf("%w: %d ids indexed, want %d", ErrInvariantViolation, g.count, n)
	}

	seen := make([]int32, n)
	for idx := range g.cells {
		for _, id := range g.cells[idx].items {
			if id < 0 || id >= n {
				return fmt.Errorf("%w: unknown id %d in cell %d", ErrInvariantViolation, id, idx)
			}
			seen[id]++
			if seen[id] > 1 {
				return fmt.Errorf("%w: id %d indexed twice", ErrInvariantViolation, id)
			}
			want, err := g.cellIndex(position(id))
			if err != nil {
				return fmt.Errorf("%w: id %d: %v", ErrInvariantViolation, id, err)
			}
			if want != idx {
				return fmt.Errorf("%w: id %d in cell %d, position maps to cell %d",
					ErrInvariantViolation, id, idx, want)
			}
		}
	}
	return nil
}

// cellIndex returns the flat cell index for pos.
func (g *SpatialGrid) cellIndex(pos Vec2) (int, error) {
	col, row, err := g.CellOf(pos)
	if err != nil {
		return 0, err
	}
	return row*g.cols + col, nil
}

// posToCell converts in-bounds world coordinates to grid cell coordinates.
// Clamps to the valid range to absorb float rounding just below the far edge.
func (g *SpatialGrid) posToCell(pos Vec2) (col, row int) {
	col = int(pos.X / g.cellSize)
	if col >= g.cols {
		col = g.cols - 1
	}

	row = int(pos.Y / g.cellSize)
	if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}

func (c *gridCell) indexOf(id int) int {
	for i, v := range c.items {
		if v == id {
			return i
		}
	}
	return -1
}

// remove swap-removes id from the cell. Returns false if it was not present.
func (c *gridCell) remove(id int) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	last := len(c.items) - 1
	c.items[i] = c.items[last]
	c.items = c.items[:last]
	return true
}
