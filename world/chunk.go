package world

import (
	"fmt"

	"github.com/icexin/gocraft-mcpi/proto"
)

// Chunk is a dense snapshot of an inclusive cuboid of blocks. Blocks are
// stored flat with y varying slowest, then x, then z, which is the order the
// server streams them in:
//
//	idx = y*xLen*zLen + x*zLen + z
//
// A Chunk is never modified after construction.
type Chunk struct {
	base             proto.Coordinate
	xLen, yLen, zLen int
	blocks           []proto.BlockType
}

// NewChunk builds the chunk for the cuboid spanned by loc1 and loc2 from the
// blocks a getBlocks call returned. The corners may be given in any order.
func NewChunk(loc1, loc2 proto.Coordinate, blocks []proto.BlockType) (*Chunk, error) {
	x, y, z := extent(loc1, loc2)
	want, ok := volume(x, y, z)
	if !ok {
		return nil, fmt.Errorf("chunk %v..%v: %w: extent too large", loc1, loc2, ErrSizeMismatch)
	}
	if len(blocks) != want {
		return nil, fmt.Errorf("chunk %v..%v: %w: want %d blocks, got %d", loc1, loc2, ErrSizeMismatch, want, len(blocks))
	}
	c := &Chunk{
		base:   proto.Min(loc1, loc2),
		xLen:   x,
		yLen:   y,
		zLen:   z,
		blocks: make([]proto.BlockType, len(blocks)),
	}
	copy(c.blocks, blocks)
	return c, nil
}

func (c *Chunk) XLen() int { return c.xLen }
func (c *Chunk) YLen() int { return c.yLen }
func (c *Chunk) ZLen() int { return c.zLen }

// BasePt is the minimum corner of the cuboid.
func (c *Chunk) BasePt() proto.Coordinate { return c.base }

// Len is the number of blocks held.
func (c *Chunk) Len() int { return len(c.blocks) }

func (c *Chunk) index(x, y, z int) (int, bool) {
	if x < 0 || y < 0 || z < 0 || x >= c.xLen || y >= c.yLen || z >= c.zLen {
		return 0, false
	}
	return y*c.xLen*c.zLen + x*c.zLen + z, true
}

func (c *Chunk) extent() proto.Coordinate {
	return proto.C(c.xLen, c.yLen, c.zLen)
}

// Get returns the block at local index (x, y, z).
func (c *Chunk) Get(x, y, z int) (proto.BlockType, error) {
	i, ok := c.index(x, y, z)
	if !ok {
		return proto.BlockType{}, &OutOfRangeError{Container: "chunk", Local: proto.C(x, y, z), Extent: c.extent()}
	}
	return c.blocks[i], nil
}

// GetWorldspace returns the block at world coordinate pos.
func (c *Chunk) GetWorldspace(pos proto.Coordinate) (proto.BlockType, error) {
	local := pos.Sub(c.base)
	i, ok := c.index(int(local.X), int(local.Y), int(local.Z))
	if !ok {
		return proto.BlockType{}, &OutOfRangeError{Container: "chunk", Local: local, World: &pos, Extent: c.extent()}
	}
	return c.blocks[i], nil
}

// Contains reports whether pos lies inside the cuboid.
func (c *Chunk) Contains(pos proto.Coordinate) bool {
	local := pos.Sub(c.base)
	_, ok := c.index(int(local.X), int(local.Y), int(local.Z))
	return ok
}

// Blocks returns a copy of all blocks in storage order.
func (c *Chunk) Blocks() []proto.BlockType {
	out := make([]proto.BlockType, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Range calls f for every block in storage order with its world coordinate.
func (c *Chunk) Range(f func(pos proto.Coordinate, b proto.BlockType)) {
	i := 0
	for y := 0; y < c.yLen; y++ {
		for x := 0; x < c.xLen; x++ {
			for z := 0; z < c.zLen; z++ {
				f(c.base.Add(proto.C(x, y, z)), c.blocks[i])
				i++
			}
		}
	}
}

// Clone returns an independent copy.
func (c *Chunk) Clone() *Chunk {
	n := *c
	n.blocks = c.Blocks()
	return &n
}
