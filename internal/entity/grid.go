package entity

import "github.com/lowlatency/arena/internal/vec"

type cellKey struct{ x, y int32 }

// grid is a uniform spatial hash used as the collision broad-phase:
// entities are bucketed by a cell of side cellSize, and
// only entities sharing or neighboring a cell are tested pairwise.
// Rebuilt fresh each tick — the entity count in this simulation is small
// enough (a handful of players plus their projectiles) that this costs
// far less than the cache-invalidation complexity of an incremental
// structure would save.
type grid struct {
	cellSize float64
	cells    map[cellKey][]*Entity
}

func newGrid(cellSize float32) *grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &grid{cellSize: float64(cellSize), cells: make(map[cellKey][]*Entity)}
}

func (g *grid) keyFor(p vec.Vec2) cellKey {
	return cellKey{
		x: int32(float64(p.X) / g.cellSize),
		y: int32(float64(p.Y) / g.cellSize),
	}
}

func (g *grid) reset() {
	for k := range g.cells {
		delete(g.cells, k)
	}
}

func (g *grid) insert(e *Entity) {
	k := g.keyFor(e.WorldTransform().Position)
	g.cells[k] = append(g.cells[k], e)
}

// candidatePairs yields every (a, b) pair whose cells are the same or
// adjacent (a 3x3 neighborhood), each unordered pair exactly once.
func (g *grid) candidatePairs(yield func(a, b *Entity)) {
	seen := make(map[[2]pairKey]struct{})
	for k, entities := range g.cells {
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				nk := cellKey{x: k.x + dx, y: k.y + dy}
				neighbors, ok := g.cells[nk]
				if !ok {
					continue
				}
				for _, a := range entities {
					for _, b := range neighbors {
						if a == b {
							continue
						}
						pk := pairKeyOf(a, b)
						if _, dup := seen[pk]; dup {
							continue
						}
						seen[pk] = struct{}{}
						yield(a, b)
					}
				}
			}
		}
	}
}

type pairKey = [2]uint16

func pairKeyOf(a, b *Entity) [2]pairKey {
	ka := pairKey{uint16(a.Identity.Slot), uint16(a.Identity.Generation)}
	kb := pairKey{uint16(b.Identity.Slot), uint16(b.Identity.Generation)}
	if ka[0] < kb[0] || (ka[0] == kb[0] && ka[1] < kb[1]) {
		return [2]pairKey{ka, kb}
	}
	return [2]pairKey{kb, ka}
}
