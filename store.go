package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/icexin/gocraft-mcpi/proto"
)

var (
	blockBucket   = []byte("block")
	playerBucket  = []byte("player")
	settingBucket = []byte("setting")

	playerKey = []byte("player")

	// spawn is where the player stands before anyone moved it.
	spawn = mgl64.Vec3{0.5, 64, 0.5}
)

// maxCells bounds a single cuboid request.
const maxCells = 1 << 22

var errTooLarge = errors.New("region too large")

// Store keeps the loopback world. Only non-air blocks are stored, keyed by
// column then height so a cursor walks one column bottom to top.
type Store struct {
	db *bolt.DB
}

func NewStore(p string) (*Store, error) {
	db, err := bolt.Open(p, 0666, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{blockBucket, playerBucket, settingBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	db.NoSync = true
	return &Store{
		db: db,
	}, nil
}

func putBlock(bkt *bolt.Bucket, pos proto.Coordinate, b proto.BlockType) error {
	key := encodeBlockDbKey(pos)
	if b == proto.Air {
		return bkt.Delete(key)
	}
	return bkt.Put(key, encodeBlockDbValue(b))
}

func (s *Store) SetBlock(pos proto.Coordinate, b proto.BlockType) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putBlock(tx.Bucket(blockBucket), pos, b)
	})
}

// SetBlocks fills the cuboid spanned by a and b in one transaction.
func (s *Store) SetBlocks(a, b proto.Coordinate, blk proto.BlockType) error {
	lo, hi := bounds(a, b)
	if cells(lo, hi) > maxCells {
		return errTooLarge
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blockBucket)
		for y := int64(lo.Y); y <= int64(hi.Y); y++ {
			for x := int64(lo.X); x <= int64(hi.X); x++ {
				for z := int64(lo.Z); z <= int64(hi.Z); z++ {
					if err := putBlock(bkt, proto.C(int(x), int(y), int(z)), blk); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func (s *Store) GetBlock(pos proto.Coordinate) (proto.BlockType, error) {
	var b proto.BlockType
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blockBucket).Get(encodeBlockDbKey(pos))
		if v == nil {
			return nil
		}
		var err error
		b, err = decodeBlockDbValue(v)
		return err
	})
	return b, err
}

// GetBlocks returns the cuboid spanned by a and b with y varying slowest,
// then x, then z.
func (s *Store) GetBlocks(a, b proto.Coordinate) ([]proto.BlockType, error) {
	lo, hi := bounds(a, b)
	n := cells(lo, hi)
	if n > maxCells {
		return nil, errTooLarge
	}
	blocks := make([]proto.BlockType, 0, n)
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blockBucket)
		for y := int64(lo.Y); y <= int64(hi.Y); y++ {
			for x := int64(lo.X); x <= int64(hi.X); x++ {
				for z := int64(lo.Z); z <= int64(hi.Z); z++ {
					var blk proto.BlockType
					if v := bkt.Get(encodeBlockDbKey(proto.C(int(x), int(y), int(z)))); v != nil {
						var err error
						if blk, err = decodeBlockDbValue(v); err != nil {
							return err
						}
					}
					blocks = append(blocks, blk)
				}
			}
		}
		return nil
	})
	return blocks, err
}

// columnHeight is the y of the highest stored block in a column, or 0 for an
// empty column.
func columnHeight(bkt *bolt.Bucket, col proto.Coordinate2D) (int32, error) {
	prefix := encodeColumn(col)
	var top []byte
	iter := bkt.Cursor()
	for k, _ := iter.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = iter.Next() {
		top = k
	}
	if top == nil {
		return 0, nil
	}
	pos, err := decodeBlockDbKey(top)
	if err != nil {
		return 0, err
	}
	return pos.Y, nil
}

func (s *Store) Height(col proto.Coordinate2D) (int32, error) {
	var h int32
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		h, err = columnHeight(tx.Bucket(blockBucket), col)
		return err
	})
	return h, err
}

// Heights returns the rectangle spanned by a and b with x varying slowest.
func (s *Store) Heights(a, b proto.Coordinate2D) ([]int32, error) {
	lo, hi := bounds(a.WithHeight(0), b.WithHeight(0))
	n := cells(lo, hi)
	if n > maxCells {
		return nil, errTooLarge
	}
	heights := make([]int32, 0, n)
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blockBucket)
		for x := int64(lo.X); x <= int64(hi.X); x++ {
			for z := int64(lo.Z); z <= int64(hi.Z); z++ {
				h, err := columnHeight(bkt, proto.C2(int(x), int(z)))
				if err != nil {
					return err
				}
				heights = append(heights, h)
			}
		}
		return nil
	})
	return heights, err
}

func (s *Store) SetPlayer(pos mgl64.Vec3) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buf := new(bytes.Buffer)
		binary.Write(buf, binary.LittleEndian, [3]float64(pos))
		return tx.Bucket(playerBucket).Put(playerKey, buf.Bytes())
	})
}

func (s *Store) Player() (mgl64.Vec3, error) {
	pos := spawn
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(playerBucket).Get(playerKey)
		if value == nil {
			return nil
		}
		var arr [3]float64
		if err := binary.Read(bytes.NewReader(value), binary.LittleEndian, &arr); err != nil {
			return fmt.Errorf("bad player record: %w", err)
		}
		pos = mgl64.Vec3(arr)
		return nil
	})
	return pos, err
}

// SetSetting records a named world setting.
func (s *Store) SetSetting(name string, on bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		v := []byte{0}
		if on {
			v[0] = 1
		}
		return tx.Bucket(settingBucket).Put([]byte(name), v)
	})
}

func (s *Store) Setting(name string) bool {
	var on bool
	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(settingBucket).Get([]byte(name))
		on = len(v) == 1 && v[0] == 1
		return nil
	})
	return on
}

func (s *Store) Close() error {
	s.db.Sync()
	return s.db.Close()
}

func bounds(a, b proto.Coordinate) (lo, hi proto.Coordinate) {
	lo = proto.Min(a, b)
	hi = lo.Add(proto.Coordinate{
		X: int32(abs64(int64(a.X) - int64(b.X))),
		Y: int32(abs64(int64(a.Y) - int64(b.Y))),
		Z: int32(abs64(int64(a.Z) - int64(b.Z))),
	})
	return lo, hi
}

func cells(lo, hi proto.Coordinate) int64 {
	return (int64(hi.X) - int64(lo.X) + 1) * (int64(hi.Y) - int64(lo.Y) + 1) * (int64(hi.Z) - int64(lo.Z) + 1)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// sortable flips the sign bit so big endian keys order like the signed value.
func sortable(v int32) uint32 {
	return uint32(v) ^ 1<<31
}

func unsortable(u uint32) int32 {
	return int32(u ^ 1<<31)
}

func encodeColumn(col proto.Coordinate2D) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint32(key[0:], sortable(col.X))
	binary.BigEndian.PutUint32(key[4:], sortable(col.Z))
	return key
}

func encodeBlockDbKey(pos proto.Coordinate) []byte {
	key := make([]byte, 12)
	copy(key, encodeColumn(pos.Flat()))
	binary.BigEndian.PutUint32(key[8:], sortable(pos.Y))
	return key
}

func decodeBlockDbKey(b []byte) (proto.Coordinate, error) {
	if len(b) != 12 {
		return proto.Coordinate{}, fmt.Errorf("bad db key length:%d", len(b))
	}
	return proto.Coordinate{
		X: unsortable(binary.BigEndian.Uint32(b[0:])),
		Y: unsortable(binary.BigEndian.Uint32(b[8:])),
		Z: unsortable(binary.BigEndian.Uint32(b[4:])),
	}, nil
}

func encodeBlockDbValue(b proto.BlockType) []byte {
	value := make([]byte, 8)
	binary.LittleEndian.PutUint32(value[0:], uint32(b.ID))
	binary.LittleEndian.PutUint32(value[4:], uint32(b.Mod))
	return value
}

func decodeBlockDbValue(b []byte) (proto.BlockType, error) {
	if len(b) != 8 {
		return proto.BlockType{}, fmt.Errorf("bad db value length:%d", len(b))
	}
	return proto.BlockType{
		ID:  int32(binary.LittleEndian.Uint32(b[0:])),
		Mod: int32(binary.LittleEndian.Uint32(b[4:])),
	}, nil
}
