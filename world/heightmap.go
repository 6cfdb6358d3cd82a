package world

import (
	"fmt"

	"github.com/icexin/gocraft-mcpi/proto"
)

// HeightMap is a dense snapshot of surface heights over an inclusive
// rectangle, stored flat with x varying slowest:
//
//	idx = x*zLen + z
//
// The base point always has y == 0.
type HeightMap struct {
	base       proto.Coordinate
	xLen, zLen int
	heights    []int32
}

// NewHeightMap builds the map for the rectangle spanned by the x and z of
// loc1 and loc2 from the heights a getHeights call returned.
func NewHeightMap(loc1, loc2 proto.Coordinate, heights []int32) (*HeightMap, error) {
	x, _, z := extent(loc1, loc2)
	want, ok := volume(x, z)
	if !ok {
		return nil, fmt.Errorf("heightmap %v..%v: %w: extent too large", loc1.Flat(), loc2.Flat(), ErrSizeMismatch)
	}
	if len(heights) != want {
		return nil, fmt.Errorf("heightmap %v..%v: %w: want %d heights, got %d", loc1.Flat(), loc2.Flat(), ErrSizeMismatch, want, len(heights))
	}
	base := proto.Min(loc1, loc2)
	base.Y = 0
	h := &HeightMap{
		base:    base,
		xLen:    x,
		zLen:    z,
		heights: make([]int32, len(heights)),
	}
	copy(h.heights, heights)
	return h, nil
}

func (h *HeightMap) XLen() int                { return h.xLen }
func (h *HeightMap) ZLen() int                { return h.zLen }
func (h *HeightMap) BasePt() proto.Coordinate { return h.base }
func (h *HeightMap) Len() int                 { return len(h.heights) }

func (h *HeightMap) outOfRange(x, z int, world *proto.Coordinate) error {
	return &OutOfRangeError{
		Container: "heightmap",
		Local:     proto.C(x, 0, z),
		World:     world,
		Extent:    proto.C(h.xLen, 0, h.zLen),
	}
}

// Get returns the height at local index (x, z).
func (h *HeightMap) Get(x, z int) (int32, error) {
	if x < 0 || z < 0 || x >= h.xLen || z >= h.zLen {
		return 0, h.outOfRange(x, z, nil)
	}
	return h.heights[x*h.zLen+z], nil
}

// GetWorldspace returns the height of the column holding loc. loc.Y is
// ignored.
func (h *HeightMap) GetWorldspace(loc proto.Coordinate) (int32, error) {
	x := int(int64(loc.X) - int64(h.base.X))
	z := int(int64(loc.Z) - int64(h.base.Z))
	if x < 0 || z < 0 || x >= h.xLen || z >= h.zLen {
		return 0, h.outOfRange(x, z, &loc)
	}
	return h.heights[x*h.zLen+z], nil
}

// FillCoordinate overwrites loc.Y with the height of its column.
func (h *HeightMap) FillCoordinate(loc *proto.Coordinate) error {
	y, err := h.GetWorldspace(*loc)
	if err != nil {
		return err
	}
	loc.Y = y
	return nil
}

// Min returns the lowest height in the map, or 0 for an empty map.
func (h *HeightMap) Min() int32 {
	if len(h.heights) == 0 {
		return 0
	}
	m := h.heights[0]
	for _, v := range h.heights[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Heights returns a copy of all heights in storage order.
func (h *HeightMap) Heights() []int32 {
	out := make([]int32, len(h.heights))
	copy(out, h.heights)
	return out
}

// Range calls f for every column in storage order.
func (h *HeightMap) Range(f func(col proto.Coordinate2D, height int32)) {
	i := 0
	for x := 0; x < h.xLen; x++ {
		for z := 0; z < h.zLen; z++ {
			f(h.base.Flat().Add(proto.C2(x, z)), h.heights[i])
			i++
		}
	}
}

func (h *HeightMap) Clone() *HeightMap {
	n := *h
	n.heights = h.Heights()
	return &n
}
