package main

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/icexin/gocraft-mcpi/proto"
)

// parseNums reads between lo and hi numeric arguments. Fractions are
// floored, the way the plugin places a position inside a block.
func parseNums(req proto.Request, lo, hi int) ([]int32, error) {
	args := req.Args()
	if len(args) < lo || len(args) > hi {
		return nil, fmt.Errorf("%s: want %d..%d args, got %d", req.Name, lo, hi, len(args))
	}
	out := make([]int32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: arg %d: %w", req.Name, i, err)
		}
		out[i] = int32(math.Floor(f))
	}
	return out, nil
}

func blockArg(nums []int32) proto.BlockType {
	b := proto.Block(nums[0])
	if len(nums) > 1 {
		b = b.WithMod(nums[1])
	}
	return b
}

type WorldService struct {
	store *Store
}

func NewWorldService(store *Store) *WorldService {
	return &WorldService{
		store: store,
	}
}

func (w *WorldService) Register(s *Server) {
	s.HandleUpdate("world.setBlock", w.SetBlock)
	s.HandleUpdate("world.setBlocks", w.SetBlocks)
	s.HandleUpdate("world.setting", w.Setting)
	s.HandleQuery("world.getBlock", w.GetBlock)
	s.HandleQuery("world.getBlockWithData", w.GetBlockWithData)
	s.HandleQuery("world.getBlocks", w.GetBlocks)
	s.HandleQuery("world.getBlocksWithData", w.GetBlocksWithData)
	s.HandleQuery("world.getHeight", w.GetHeight)
	s.HandleQuery("world.getHeights", w.GetHeights)
}

func (w *WorldService) SetBlock(req proto.Request) error {
	n, err := parseNums(req, 4, 5)
	if err != nil {
		return err
	}
	return w.store.SetBlock(proto.Coordinate{X: n[0], Y: n[1], Z: n[2]}, blockArg(n[3:]))
}

func (w *WorldService) SetBlocks(req proto.Request) error {
	n, err := parseNums(req, 7, 8)
	if err != nil {
		return err
	}
	a := proto.Coordinate{X: n[0], Y: n[1], Z: n[2]}
	b := proto.Coordinate{X: n[3], Y: n[4], Z: n[5]}
	return w.store.SetBlocks(a, b, blockArg(n[6:]))
}

// Setting takes a name and an optional 0/1 flag, which defaults to on.
func (w *WorldService) Setting(req proto.Request) error {
	args := req.Args()
	if len(args) > 2 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("world.setting: bad args %q", req.Raw)
	}
	on := len(args) == 1 || strings.TrimSpace(args[1]) != "0"
	return w.store.SetSetting(strings.TrimSpace(args[0]), on)
}

func (w *WorldService) getBlock(req proto.Request) (proto.BlockType, error) {
	n, err := parseNums(req, 3, 3)
	if err != nil {
		return proto.BlockType{}, err
	}
	return w.store.GetBlock(proto.Coordinate{X: n[0], Y: n[1], Z: n[2]})
}

func (w *WorldService) GetBlock(req proto.Request) (string, error) {
	b, err := w.getBlock(req)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(int(b.ID)), nil
}

func (w *WorldService) GetBlockWithData(req proto.Request) (string, error) {
	b, err := w.getBlock(req)
	if err != nil {
		return "", err
	}
	return proto.EncodeBlocks([]proto.BlockType{b}), nil
}

func (w *WorldService) getBlocks(req proto.Request) ([]proto.BlockType, error) {
	n, err := parseNums(req, 6, 6)
	if err != nil {
		return nil, err
	}
	a := proto.Coordinate{X: n[0], Y: n[1], Z: n[2]}
	b := proto.Coordinate{X: n[3], Y: n[4], Z: n[5]}
	return w.store.GetBlocks(a, b)
}

func (w *WorldService) GetBlocks(req proto.Request) (string, error) {
	blocks, err := w.getBlocks(req)
	if err != nil {
		return "", err
	}
	ids := make([]int32, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return proto.EncodeInts(ids), nil
}

func (w *WorldService) GetBlocksWithData(req proto.Request) (string, error) {
	blocks, err := w.getBlocks(req)
	if err != nil {
		return "", err
	}
	return proto.EncodeBlocks(blocks), nil
}

func (w *WorldService) GetHeight(req proto.Request) (string, error) {
	n, err := parseNums(req, 2, 2)
	if err != nil {
		return "", err
	}
	h, err := w.store.Height(proto.Coordinate2D{X: n[0], Z: n[1]})
	if err != nil {
		return "", err
	}
	return strconv.Itoa(int(h)), nil
}

func (w *WorldService) GetHeights(req proto.Request) (string, error) {
	n, err := parseNums(req, 4, 4)
	if err != nil {
		return "", err
	}
	hs, err := w.store.Heights(proto.Coordinate2D{X: n[0], Z: n[1]}, proto.Coordinate2D{X: n[2], Z: n[3]})
	if err != nil {
		return "", err
	}
	return proto.EncodeInts(hs), nil
}

type PlayerService struct {
	mutex    sync.Mutex
	store    *Store
	log      *slog.Logger
	commands []string
}

func NewPlayerService(store *Store, log *slog.Logger) *PlayerService {
	return &PlayerService{
		store: store,
		log:   log,
	}
}

func (p *PlayerService) Register(s *Server) {
	s.HandleUpdate("player.setPos", p.SetPos)
	s.HandleQuery("player.getPos", p.GetPos)
	s.HandleUpdate("player.doCommand", p.DoCommand)
}

// SetPos keeps fractional positions as sent.
func (p *PlayerService) SetPos(req proto.Request) error {
	args := req.Args()
	if len(args) != 3 {
		return fmt.Errorf("player.setPos: want 3 args, got %d", len(args))
	}
	var pos mgl64.Vec3
	for i, a := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return fmt.Errorf("player.setPos: arg %d: %w", i, err)
		}
		pos[i] = f
	}
	return p.store.SetPlayer(pos)
}

func (p *PlayerService) GetPos(req proto.Request) (string, error) {
	pos, err := p.store.Player()
	if err != nil {
		return "", err
	}
	parts := make([]string, 3)
	for i, v := range pos {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ","), nil
}

// DoCommand only records the command; the loopback has no command engine.
func (p *PlayerService) DoCommand(req proto.Request) error {
	if strings.TrimSpace(req.Raw) == "" {
		return fmt.Errorf("player.doCommand: empty command")
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.log.Info("command", "line", req.Raw)
	p.commands = append(p.commands, req.Raw)
	return nil
}

func (p *PlayerService) Commands() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.commands...)
}

type ChatService struct {
	mutex    sync.Mutex
	log      *slog.Logger
	messages []string
}

func NewChatService(log *slog.Logger) *ChatService {
	return &ChatService{
		log: log,
	}
}

func (c *ChatService) Register(s *Server) {
	s.HandleUpdate("chat.post", c.Post)
}

// Post takes the whole argument text, commas included.
func (c *ChatService) Post(req proto.Request) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.log.Info("chat", "message", req.Raw)
	c.messages = append(c.messages, req.Raw)
	return nil
}

func (c *ChatService) Messages() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.messages...)
}
