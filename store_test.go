package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/icexin/gocraft-mcpi/proto"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBlockKeyOrder(t *testing.T) {
	ys := []int32{-2147483648, -64, -1, 0, 1, 63, 2147483647}
	for i := 1; i < len(ys); i++ {
		a := encodeBlockDbKey(proto.Coordinate{X: -5, Y: ys[i-1], Z: 7})
		b := encodeBlockDbKey(proto.Coordinate{X: -5, Y: ys[i], Z: 7})
		if bytes.Compare(a, b) >= 0 {
			t.Errorf("key for y=%d does not sort before y=%d", ys[i-1], ys[i])
		}
	}
	for _, pos := range []proto.Coordinate{proto.C(0, 0, 0), proto.C(-30000000, -64, 30000000), proto.C(1, -1, -1)} {
		got, err := decodeBlockDbKey(encodeBlockDbKey(pos))
		if err != nil || got != pos {
			t.Errorf("decode(encode(%v)) = %v, %v", pos, got, err)
		}
	}
	if _, err := decodeBlockDbKey([]byte{1, 2, 3}); err == nil {
		t.Error("short key accepted")
	}
}

func TestStoreBlocks(t *testing.T) {
	store := newTestStore(t)
	pos := proto.C(100, 100, 100)
	if err := store.SetBlock(pos, proto.LightBlueConcrete); err != nil {
		t.Fatal(err)
	}
	b, err := store.GetBlock(pos)
	if err != nil || b != proto.LightBlueConcrete {
		t.Errorf("GetBlock = %v, %v", b, err)
	}
	if err := store.SetBlock(pos, proto.Air); err != nil {
		t.Fatal(err)
	}
	if b, _ := store.GetBlock(pos); b != proto.Air {
		t.Errorf("after clearing got %v", b)
	}
}

func TestStoreGetBlocksOrder(t *testing.T) {
	store := newTestStore(t)
	store.SetBlock(proto.C(1, 0, 0), proto.Stone)
	store.SetBlock(proto.C(0, 1, 0), proto.Dirt)
	store.SetBlock(proto.C(0, 0, 1), proto.Grass)

	blocks, err := store.GetBlocks(proto.C(1, 1, 1), proto.C(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []proto.BlockType{
		proto.Air, proto.Grass, proto.Stone, proto.Air,
		proto.Dirt, proto.Air, proto.Air, proto.Air,
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks", len(blocks))
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("block %d = %v, want %v", i, blocks[i], want[i])
		}
	}
}

func TestStoreHeights(t *testing.T) {
	store := newTestStore(t)
	if err := store.SetBlocks(proto.C(-2, -10, -2), proto.C(1, -10, 1), proto.Stone); err != nil {
		t.Fatal(err)
	}
	store.SetBlock(proto.C(0, 5, 0), proto.Glass)
	store.SetBlock(proto.C(0, -3, 0), proto.Dirt)

	tests := []struct {
		col  proto.Coordinate2D
		want int32
	}{
		{proto.C2(0, 0), 5},
		{proto.C2(-2, -2), -10},
		{proto.C2(1, 1), -10},
		{proto.C2(5, 5), 0},
	}
	for _, tt := range tests {
		h, err := store.Height(tt.col)
		if err != nil || h != tt.want {
			t.Errorf("Height(%v) = %d, %v, want %d", tt.col, h, err, tt.want)
		}
	}

	hs, err := store.Heights(proto.C2(0, 1), proto.C2(-1, 0))
	if err != nil {
		t.Fatal(err)
	}
	// x slowest: (-1,0) (-1,1) (0,0) (0,1)
	want := []int32{-10, -10, 5, -10}
	for i := range want {
		if hs[i] != want[i] {
			t.Errorf("height %d = %d, want %d", i, hs[i], want[i])
		}
	}
}

func TestStoreTooLarge(t *testing.T) {
	store := newTestStore(t)
	if err := store.SetBlocks(proto.C(0, 0, 0), proto.C(1000, 1000, 1000), proto.Stone); err != errTooLarge {
		t.Errorf("got %v, want errTooLarge", err)
	}
	if _, err := store.GetBlocks(proto.C(0, 0, 0), proto.C(1000, 1000, 1000)); err != errTooLarge {
		t.Errorf("got %v, want errTooLarge", err)
	}
}

func TestStorePlayer(t *testing.T) {
	store := newTestStore(t)
	pos, err := store.Player()
	if err != nil || pos != spawn {
		t.Errorf("default player = %v, %v", pos, err)
	}
	want := mgl64.Vec3{-0.3, 64.5, 10.25}
	if err := store.SetPlayer(want); err != nil {
		t.Fatal(err)
	}
	pos, err = store.Player()
	if err != nil || pos != want {
		t.Errorf("player = %v, %v, want %v", pos, err, want)
	}
}

func TestStoreSettings(t *testing.T) {
	store := newTestStore(t)
	if store.Setting("world_immutable") {
		t.Error("unset setting is on")
	}
	store.SetSetting("world_immutable", true)
	if !store.Setting("world_immutable") {
		t.Error("setting not stored")
	}
	store.SetSetting("world_immutable", false)
	if store.Setting("world_immutable") {
		t.Error("setting not cleared")
	}
}
