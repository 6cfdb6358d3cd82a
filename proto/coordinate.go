package proto

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Coordinate is a lattice point in the block world. The world has no bounds
// at this layer.
type Coordinate struct {
	X, Y, Z int32
}

func C(x, y, z int) Coordinate {
	return Coordinate{int32(x), int32(y), int32(z)}
}

// CoordinateFromFloat truncates each component toward zero.
func CoordinateFromFloat(x, y, z float64) Coordinate {
	return Coordinate{int32(x), int32(y), int32(z)}
}

// FromVec3 truncates v the same way CoordinateFromFloat does.
func FromVec3(v mgl64.Vec3) Coordinate {
	return CoordinateFromFloat(v.X(), v.Y(), v.Z())
}

func (c Coordinate) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(c.X), float64(c.Y), float64(c.Z)}
}

func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{c.X - o.X, c.Y - o.Y, c.Z - o.Z}
}

func (c Coordinate) Add2D(o Coordinate2D) Coordinate {
	return Coordinate{c.X + o.X, c.Y, c.Z + o.Z}
}

func (c Coordinate) Up() Coordinate {
	return Coordinate{c.X, c.Y + 1, c.Z}
}

func (c Coordinate) Down() Coordinate {
	return Coordinate{c.X, c.Y - 1, c.Z}
}

// Flat drops the vertical component.
func (c Coordinate) Flat() Coordinate2D {
	return Coordinate2D{c.X, c.Z}
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Coordinate) Coordinate {
	return Coordinate{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

const (
	hashLower = -30000000
	hashUpper = 30000000
	hashBase  = uint64(hashUpper - hashLower + 1)
)

// Hash packs the coordinate into one integer. Values are distinct for
// x, z in [-3e7, 3e7] and y within the build height; it is meant for caller
// side deduplication only.
func (c Coordinate) Hash() uint64 {
	nx := uint64(int64(c.X) - hashLower)
	ny := uint64(int64(c.Y) - hashLower)
	nz := uint64(int64(c.Z) - hashLower)
	return nx*hashBase*hashBase + ny*hashBase + nz
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Coordinate2D is a column position, used by height queries.
type Coordinate2D struct {
	X, Z int32
}

func C2(x, z int) Coordinate2D {
	return Coordinate2D{int32(x), int32(z)}
}

func Coordinate2DFromFloat(x, z float64) Coordinate2D {
	return Coordinate2D{int32(x), int32(z)}
}

func (c Coordinate2D) Add(o Coordinate2D) Coordinate2D {
	return Coordinate2D{c.X + o.X, c.Z + o.Z}
}

func (c Coordinate2D) Sub(o Coordinate2D) Coordinate2D {
	return Coordinate2D{c.X - o.X, c.Z - o.Z}
}

// WithHeight lifts the column into a full coordinate at height y.
func (c Coordinate2D) WithHeight(y int32) Coordinate {
	return Coordinate{c.X, y, c.Z}
}

func (c Coordinate2D) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}
