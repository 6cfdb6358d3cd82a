package main

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	mcpi "github.com/icexin/gocraft-mcpi/client"
	"github.com/icexin/gocraft-mcpi/proto"
)

type loopback struct {
	port   int
	store  *Store
	server *Server
	player *PlayerService
	chat   *ChatService
}

func startLoopback(t *testing.T) *loopback {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lb := &loopback{
		store:  newTestStore(t),
		server: NewServer(log),
		chat:   NewChatService(log),
	}
	lb.player = NewPlayerService(lb.store, log)
	lb.server.RegisterService(NewWorldService(lb.store))
	lb.server.RegisterService(lb.player)
	lb.server.RegisterService(lb.chat)

	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	lb.port = l.Addr().(*net.TCPAddr).Port
	go lb.server.Serve(l)
	t.Cleanup(func() { lb.server.Close() })
	return lb
}

func (lb *loopback) connect(t *testing.T) *mcpi.Connection {
	t.Helper()
	conn, err := mcpi.Connect("127.0.0.1", lb.port)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (lb *loopback) transport(t *testing.T) *mcpi.Transport {
	t.Helper()
	tr, err := mcpi.DialTransport("localhost", lb.port, 0)
	if err != nil {
		t.Fatalf("DialTransport: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestRawSetThenGet(t *testing.T) {
	lb := startLoopback(t)
	tr := lb.transport(t)

	if err := tr.Send("world.setBlock(100,100,100,30)\n"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Send("world.getBlock(100,100,100)\n"); err != nil {
		t.Fatal(err)
	}
	got, err := tr.Receive()
	if err != nil || got != "30" {
		t.Errorf("Receive = %q, %v, want 30", got, err)
	}
}

func TestFailSentinel(t *testing.T) {
	lb := startLoopback(t)
	tr := lb.transport(t)

	for _, line := range []string{"failCommand()\n", "world.getBlock(1,2)\n", "garbage\n"} {
		if err := tr.Send(line); err != nil {
			t.Fatal(err)
		}
		_, err := tr.Receive()
		var rce *mcpi.RemoteCommandError
		if !errors.As(err, &rce) {
			t.Errorf("%q: got %v, want RemoteCommandError", line, err)
		}
	}

	// a failed setter answers too, then the session keeps going
	tr.Send("world.setBlock(1,2)\n")
	if _, err := tr.Receive(); err == nil {
		t.Error("bad setBlock not answered with Fail")
	}
	tr.Send("world.getHeight(0,0)\n")
	if got, err := tr.Receive(); err != nil || got != "0" {
		t.Errorf("getHeight = %q, %v", got, err)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	loc1 := proto.C(100, 100, 100)
	loc2 := proto.C(110, 111, 112)
	planted := map[proto.Coordinate]proto.BlockType{
		loc1:                         proto.GoldBlock,
		loc1.Add(proto.C(1, 1, 1)):   proto.Bricks,
		loc1.Add(proto.C(1, 2, 3)):   proto.IronBlock,
		loc2:                         proto.DiamondBlock,
		loc1.Add(proto.C(10, 0, 12)): proto.LightBlueConcrete,
	}
	for pos, b := range planted {
		if err := conn.SetBlock(pos, b); err != nil {
			t.Fatal(err)
		}
	}

	for _, corners := range [][2]proto.Coordinate{{loc1, loc2}, {loc2, loc1}} {
		chunk, err := conn.GetBlocks(corners[0], corners[1])
		if err != nil {
			t.Fatal(err)
		}
		if chunk.XLen() != 11 || chunk.YLen() != 12 || chunk.ZLen() != 13 {
			t.Errorf("lengths = %d,%d,%d", chunk.XLen(), chunk.YLen(), chunk.ZLen())
		}
		if chunk.BasePt() != loc1 {
			t.Errorf("base = %v, want %v", chunk.BasePt(), loc1)
		}
		for pos, want := range planted {
			got, err := chunk.GetWorldspace(pos)
			if err != nil || got != want {
				t.Errorf("GetWorldspace(%v) = %v, %v, want %v", pos, got, err, want)
			}
		}
		if b, _ := chunk.Get(5, 5, 5); b != proto.Air {
			t.Errorf("Get(5,5,5) = %v, want air", b)
		}
		_, err = chunk.GetWorldspace(loc2.Add(proto.C(1, 0, 0)))
		var oor *mcpi.OutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("past the corner: got %v, want OutOfRangeError", err)
		}
	}

	ids, err := conn.GetBlockIDs(loc1, loc2)
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := ids.GetWorldspace(loc1.Add(proto.C(10, 0, 12))); b != proto.Block(251) {
		t.Errorf("id only block = %v", b)
	}
}

func TestChunkIsSnapshot(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	loc := proto.C(-5, 70, -5)
	conn.SetBlock(loc, proto.BlueConcrete)
	first, err := conn.GetBlocks(loc, loc.Add(proto.C(1, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	kept := first.Clone()

	conn.SetBlock(loc, proto.WhiteConcrete)
	second, err := conn.GetBlocks(loc, loc.Add(proto.C(1, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := first.Get(0, 0, 0); b != proto.BlueConcrete {
		t.Errorf("first = %v", b)
	}
	if b, _ := kept.Get(0, 0, 0); b != proto.BlueConcrete {
		t.Errorf("clone = %v", b)
	}
	if b, _ := second.Get(0, 0, 0); b != proto.WhiteConcrete {
		t.Errorf("second = %v", b)
	}
}

func TestHeights(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	loc1 := proto.C(200, 300, 200)
	loc2 := proto.C(210, 300, 210)
	if err := conn.SetBlocks(loc1, loc2, proto.Stone); err != nil {
		t.Fatal(err)
	}
	taller := []proto.Coordinate{
		proto.C(200, 301, 200),
		proto.C(210, 301, 210),
		proto.C(201, 301, 202),
	}
	for _, pos := range taller {
		conn.SetBlock(pos, proto.Sandstone)
	}

	hm, err := conn.GetHeights(loc2, loc1)
	if err != nil {
		t.Fatal(err)
	}
	if hm.XLen() != 11 || hm.ZLen() != 11 {
		t.Errorf("lengths = %d,%d", hm.XLen(), hm.ZLen())
	}
	if hm.BasePt() != proto.C(200, 0, 200) {
		t.Errorf("base = %v", hm.BasePt())
	}
	tests := []struct {
		x, z int
		want int32
	}{
		{0, 0, 301},
		{10, 10, 301},
		{1, 2, 301},
		{2, 1, 300},
		{5, 5, 300},
	}
	for _, tt := range tests {
		got, err := hm.Get(tt.x, tt.z)
		if err != nil || got != tt.want {
			t.Errorf("Get(%d,%d) = %d, %v, want %d", tt.x, tt.z, got, err, tt.want)
		}
	}
	if hm.Min() != 300 {
		t.Errorf("Min = %d", hm.Min())
	}

	pos := proto.C(201, 0, 202)
	if err := hm.FillCoordinate(&pos); err != nil || pos.Y != 301 {
		t.Errorf("FillCoordinate = %v, %v", pos, err)
	}

	h, err := conn.GetHeight(210, 210)
	if err != nil || h != 301 {
		t.Errorf("GetHeight = %d, %v", h, err)
	}
}

func TestNegativeHeights(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	conn.SetBlocks(proto.C(-20, -10, -20), proto.C(-15, -10, -15), proto.Stone)
	hm, err := conn.GetHeights(proto.C(-20, 0, -20), proto.C(-15, 0, -15))
	if err != nil {
		t.Fatal(err)
	}
	h, err := hm.GetWorldspace(proto.C(-15, 0, -15))
	if err != nil || h != -10 {
		t.Errorf("GetWorldspace = %d, %v", h, err)
	}
	_, err = hm.GetWorldspace(proto.C(-21, 0, -20))
	var oor *mcpi.OutOfRangeError
	if !errors.As(err, &oor) {
		t.Errorf("got %v, want OutOfRangeError", err)
	}
}

func TestPlayerPositions(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	if err := conn.SetPlayerTilePosition(proto.C(5, 70, 5)); err != nil {
		t.Fatal(err)
	}
	pos, err := conn.PlayerPosition()
	if err != nil || pos != proto.C(5, 71, 5) {
		t.Errorf("PlayerPosition = %v, %v", pos, err)
	}
	tile, err := conn.PlayerTilePosition()
	if err != nil || tile != proto.C(5, 70, 5) {
		t.Errorf("PlayerTilePosition = %v, %v", tile, err)
	}

	// fractional positions can only come from outside the facade
	tr := lb.transport(t)
	if err := tr.Send("player.setPos(-0.3,64.5,0.7)\n"); err != nil {
		t.Fatal(err)
	}
	tr.Send("world.getHeight(0,0)\n")
	if _, err := tr.Receive(); err != nil {
		t.Fatal(err)
	}

	pos, err = conn.PlayerPosition()
	if err != nil || pos != proto.C(-1, 64, 0) {
		t.Errorf("PlayerPosition = %v, %v, want (-1,64,0)", pos, err)
	}
	exact, err := conn.PlayerExactPosition()
	if err != nil || exact != (mgl64.Vec3{-0.3, 64.5, 0.7}) {
		t.Errorf("PlayerExactPosition = %v, %v", exact, err)
	}
}

func TestChatAndCommands(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	conn.PostToChat("hello, world")
	conn.DoCommand("time set day")
	conn.SetSetting("world_immutable")
	// setters are not answered; a query behind them proves they ran
	if _, err := conn.GetHeight(0, 0); err != nil {
		t.Fatal(err)
	}

	msgs := lb.chat.Messages()
	if len(msgs) != 1 || msgs[0] != "hello, world" {
		t.Errorf("chat = %q", msgs)
	}
	cmds := lb.player.Commands()
	if len(cmds) != 1 || cmds[0] != "time set day" {
		t.Errorf("commands = %q", cmds)
	}
	if !lb.store.Setting("world_immutable") {
		t.Error("setting not applied")
	}
	if lb.server.Served() != 4 {
		t.Errorf("served = %d, want 4", lb.server.Served())
	}
}

func TestBlankCommandKeepsResponsesInStep(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	conn.SetBlocks(proto.C(0, 0, 0), proto.C(0, 5, 0), proto.Stone)
	if err := conn.DoCommand(""); !errors.Is(err, mcpi.ErrEmptyArgument) {
		t.Errorf("DoCommand(\"\") = %v, want ErrEmptyArgument", err)
	}
	if err := conn.SetSetting(" "); !errors.Is(err, mcpi.ErrEmptyArgument) {
		t.Errorf("SetSetting(\" \") = %v, want ErrEmptyArgument", err)
	}
	h, err := conn.GetHeight(0, 0)
	if err != nil || h != 5 {
		t.Fatalf("GetHeight = %d, %v, want 5", h, err)
	}

	conn.SetBlock(proto.C(0, 9, 0), proto.Glass)
	h, err = conn.GetHeight(0, 0)
	if err != nil || h != 9 {
		t.Errorf("GetHeight = %d, %v, want 9", h, err)
	}
	if cmds := lb.player.Commands(); len(cmds) != 0 {
		t.Errorf("server recorded %q", cmds)
	}
}

func TestCloseDropsSessions(t *testing.T) {
	lb := startLoopback(t)
	conn := lb.connect(t)

	if _, err := conn.GetBlock(proto.C(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	lb.server.Close()

	_, err := conn.GetBlock(proto.C(0, 0, 0))
	var ioErr *mcpi.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("after close got %v, want IOError", err)
	}
}
