package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	mcpi "github.com/icexin/gocraft-mcpi/client"
	"github.com/icexin/gocraft-mcpi/proto"
)

var errUsage = errors.New("bad arguments")

type command struct {
	name  string
	usage string
	run   func(conn *mcpi.Connection, args []string) error
}

var commands = []command{
	{"chat", "<message...>", runChat},
	{"cmd", "<command...>", runCmd},
	{"setting", "<name>", runSetting},
	{"setblock", "x y z id [mod]", runSetBlock},
	{"setblocks", "x1 y1 z1 x2 y2 z2 id [mod]", runSetBlocks},
	{"getblock", "x y z", runGetBlock},
	{"getblocks", "x1 y1 z1 x2 y2 z2", runGetBlocks},
	{"height", "x z", runHeight},
	{"heights", "x1 z1 x2 z2", runHeights},
	{"pos", "", runPos},
	{"setpos", "x y z", runSetPos},
	{"tile", "", runTile},
	{"settile", "x y z", runSetTile},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func parseInts(args []string) ([]int32, error) {
	out := make([]int32, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", errUsage, a)
		}
		out[i] = int32(v)
	}
	return out, nil
}

// parseArgs reads between lo and hi integer arguments.
func parseArgs(args []string, lo, hi int) ([]int32, error) {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return nil, fmt.Errorf("%w: want %d, got %d", errUsage, lo, len(args))
		}
		return nil, fmt.Errorf("%w: want %d to %d, got %d", errUsage, lo, hi, len(args))
	}
	return parseInts(args)
}

func coord(n []int32) proto.Coordinate {
	return proto.Coordinate{X: n[0], Y: n[1], Z: n[2]}
}

func block(n []int32) proto.BlockType {
	b := proto.Block(n[0])
	if len(n) > 1 {
		b = b.WithMod(n[1])
	}
	return b
}

func joinText(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: missing text", errUsage)
	}
	return strings.Join(args, " "), nil
}

func runChat(conn *mcpi.Connection, args []string) error {
	msg, err := joinText(args)
	if err != nil {
		return err
	}
	return conn.PostToChat(msg)
}

func runCmd(conn *mcpi.Connection, args []string) error {
	line, err := joinText(args)
	if err != nil {
		return err
	}
	return conn.DoCommand(line)
}

func runSetting(conn *mcpi.Connection, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: want a setting name", errUsage)
	}
	return conn.SetSetting(args[0])
}

func runSetBlock(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 4, 5)
	if err != nil {
		return err
	}
	return conn.SetBlock(coord(n), block(n[3:]))
}

func runSetBlocks(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 7, 8)
	if err != nil {
		return err
	}
	return conn.SetBlocks(coord(n), coord(n[3:]), block(n[6:]))
}

func runGetBlock(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 3, 3)
	if err != nil {
		return err
	}
	b, err := conn.GetBlock(coord(n))
	if err != nil {
		return err
	}
	fmt.Println(b)
	return nil
}

// runGetBlocks lists the non-air blocks of the cuboid.
func runGetBlocks(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 6, 6)
	if err != nil {
		return err
	}
	chunk, err := conn.GetBlocks(coord(n), coord(n[3:]))
	if err != nil {
		return err
	}
	solid := 0
	chunk.Range(func(pos proto.Coordinate, b proto.BlockType) {
		if b == proto.Air {
			return
		}
		solid++
		fmt.Printf("%v %v\n", pos, b)
	})
	color.Cyan("%d of %d blocks are not air", solid, chunk.Len())
	return nil
}

func runHeight(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 2, 2)
	if err != nil {
		return err
	}
	h, err := conn.GetHeight(n[0], n[1])
	if err != nil {
		return err
	}
	fmt.Println(h)
	return nil
}

// runHeights prints one row per x, one column per z.
func runHeights(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 4, 4)
	if err != nil {
		return err
	}
	a := proto.Coordinate2D{X: n[0], Z: n[1]}
	b := proto.Coordinate2D{X: n[2], Z: n[3]}
	hm, err := conn.GetHeights(a.WithHeight(0), b.WithHeight(0))
	if err != nil {
		return err
	}
	for x := 0; x < hm.XLen(); x++ {
		row := make([]string, hm.ZLen())
		for z := range row {
			h, err := hm.Get(x, z)
			if err != nil {
				return err
			}
			row[z] = strconv.Itoa(int(h))
		}
		fmt.Printf("%d: %s\n", hm.BasePt().X+int32(x), strings.Join(row, " "))
	}
	color.Cyan("lowest %d", hm.Min())
	return nil
}

func runPos(conn *mcpi.Connection, args []string) error {
	pos, err := conn.PlayerPosition()
	if err != nil {
		return err
	}
	exact, err := conn.PlayerExactPosition()
	if err != nil {
		return err
	}
	fmt.Printf("%v exact %.2f,%.2f,%.2f\n", pos, exact.X(), exact.Y(), exact.Z())
	return nil
}

func runSetPos(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 3, 3)
	if err != nil {
		return err
	}
	return conn.SetPlayerPosition(coord(n))
}

func runTile(conn *mcpi.Connection, args []string) error {
	tile, err := conn.PlayerTilePosition()
	if err != nil {
		return err
	}
	fmt.Println(tile)
	return nil
}

func runSetTile(conn *mcpi.Connection, args []string) error {
	n, err := parseArgs(args, 3, 3)
	if err != nil {
		return err
	}
	return conn.SetPlayerTilePosition(coord(n))
}
