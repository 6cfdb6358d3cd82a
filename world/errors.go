package world

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/icexin/gocraft-mcpi/proto"
)

// ErrSizeMismatch is returned when the data handed to a constructor does not
// cover the requested extent exactly.
var ErrSizeMismatch = errors.New("data does not match requested extent")

// OutOfRangeError reports an access outside the stored extent. The container
// stays valid.
type OutOfRangeError struct {
	Container string
	Local     proto.Coordinate
	// World is set when the access was made by world coordinate.
	World  *proto.Coordinate
	Extent proto.Coordinate
}

func (e *OutOfRangeError) Error() string {
	var msg string
	if e.Container == "heightmap" {
		msg = fmt.Sprintf("out of bounds heightmap access at %v, extent %v", e.Local.Flat(), e.Extent.Flat())
	} else {
		msg = fmt.Sprintf("out of bounds chunk access at %v, extent %v", e.Local, e.Extent)
	}
	if e.World != nil {
		msg += fmt.Sprintf(" (world coordinate %v)", *e.World)
	}
	return msg
}

func extent(loc1, loc2 proto.Coordinate) (x, y, z int) {
	return span(loc1.X, loc2.X), span(loc1.Y, loc2.Y), span(loc1.Z, loc2.Z)
}

// span is the inclusive length between two corners on one axis.
func span(a, b int32) int {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return int(d + 1)
}

// volume multiplies the axis lengths, reporting false when the product does
// not fit in an int.
func volume(lens ...int) (int, bool) {
	n := uint64(1)
	for _, l := range lens {
		hi, lo := bits.Mul64(n, uint64(l))
		if hi != 0 || lo > math.MaxInt {
			return 0, false
		}
		n = lo
	}
	return int(n), true
}
