package mcpi

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/icexin/gocraft-mcpi/proto"
	"github.com/icexin/gocraft-mcpi/world"
)

// Connection is one session with the server plugin. Every method is a
// blocking request/response; nothing about the world is cached. Calls on one
// Connection are serialized, so the server sees them in the order issued.
//
// Setters are not answered, except that the plugin replies Fail to a setter
// it rejects. Nothing reads that reply, so the next getter fails with a
// RemoteCommandError naming itself, and every getter after it receives the
// answer meant for the call before. Arguments known to be rejected are
// refused before sending; after any other RemoteCommandError following a
// setter, close the Connection and dial a new one.
type Connection struct {
	lock sync.Mutex
	t    *Transport
}

// Connect dials the plugin at host:port with no timeout.
func Connect(host string, port int) (*Connection, error) {
	cfg := DefaultConfig()
	cfg.Host, cfg.Port = host, port
	return DialConfig(cfg)
}

func DialConfig(cfg Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConnectionError{Addr: cfg.Addr(), Err: err}
	}
	t, err := DialTransport(cfg.Host, cfg.Port, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewConnection(t), nil
}

func NewConnection(t *Transport) *Connection {
	return &Connection{t: t}
}

func (c *Connection) Close() error {
	return c.t.Close()
}

// send issues a command that the server does not answer.
func (c *Connection) send(cmd *proto.Command) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t.Send(string(cmd.Bytes()))
}

func (c *Connection) call(cmd *proto.Command) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.t.Send(string(cmd.Bytes())); err != nil {
		return "", err
	}
	return c.t.Receive()
}

// decodeErr stamps the command on decode failures.
func decodeErr(cmd *proto.Command, err error) error {
	var me *proto.MalformedResponseError
	if errors.As(err, &me) && me.Command == "" {
		me.Command = cmd.String()
	}
	return err
}

// PostToChat sends a message to the in-game chat. No player needs to be
// online.
func (c *Connection) PostToChat(message string) error {
	return c.send(proto.NewCommand("chat.post").Str(message))
}

// DoCommand runs an in-game command such as "time set day". A player must be
// on the server with operator rights.
func (c *Connection) DoCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyArgument
	}
	return c.send(proto.NewCommand("player.doCommand").Str(command))
}

// SetSetting switches a world setting such as "world_immutable" on.
func (c *Connection) SetSetting(setting string) error {
	if strings.TrimSpace(setting) == "" {
		return ErrEmptyArgument
	}
	return c.send(proto.NewCommand("world.setting").Str(setting))
}

// SetPlayerPosition moves the player so its lower half occupies pos.
func (c *Connection) SetPlayerPosition(pos proto.Coordinate) error {
	return c.send(proto.NewCommand("player.setPos").Coord(pos))
}

// PlayerPosition returns the block holding the lower half of the player.
func (c *Connection) PlayerPosition() (proto.Coordinate, error) {
	cmd := proto.NewCommand("player.getPos").Str("")
	body, err := c.call(cmd)
	if err != nil {
		return proto.Coordinate{}, err
	}
	pos, err := proto.DecodeCoordinate(body)
	return pos, decodeErr(cmd, err)
}

// PlayerExactPosition is PlayerPosition without flooring.
func (c *Connection) PlayerExactPosition() (mgl64.Vec3, error) {
	cmd := proto.NewCommand("player.getPos").Str("")
	body, err := c.call(cmd)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	v, err := proto.DecodeVec3(body)
	return v, decodeErr(cmd, err)
}

// SetPlayerTilePosition stands the player on top of tile.
func (c *Connection) SetPlayerTilePosition(tile proto.Coordinate) error {
	return c.SetPlayerPosition(tile.Up())
}

// PlayerTilePosition returns the block the player is standing on.
func (c *Connection) PlayerTilePosition() (proto.Coordinate, error) {
	pos, err := c.PlayerPosition()
	if err != nil {
		return pos, err
	}
	return pos.Down(), nil
}

func (c *Connection) SetBlock(loc proto.Coordinate, b proto.BlockType) error {
	return c.send(proto.NewCommand("world.setBlock").Coord(loc).Block(b))
}

// SetBlocks fills the cuboid with corners loc1 and loc2.
func (c *Connection) SetBlocks(loc1, loc2 proto.Coordinate, b proto.BlockType) error {
	return c.send(proto.NewCommand("world.setBlocks").Coord(loc1).Coord(loc2).Block(b))
}

// GetBlock returns the block at loc including its modifier.
func (c *Connection) GetBlock(loc proto.Coordinate) (proto.BlockType, error) {
	cmd := proto.NewCommand("world.getBlockWithData").Coord(loc)
	body, err := c.call(cmd)
	if err != nil {
		return proto.BlockType{}, err
	}
	b, err := proto.DecodeBlock(body)
	return b, decodeErr(cmd, err)
}

// GetBlockID returns the block at loc with its modifier left at 0.
func (c *Connection) GetBlockID(loc proto.Coordinate) (proto.BlockType, error) {
	cmd := proto.NewCommand("world.getBlock").Coord(loc)
	body, err := c.call(cmd)
	if err != nil {
		return proto.BlockType{}, err
	}
	id, err := proto.DecodeInt(body)
	if err != nil {
		return proto.BlockType{}, decodeErr(cmd, err)
	}
	return proto.Block(id), nil
}

// GetBlocks reads the cuboid with corners loc1 and loc2 in one round trip.
func (c *Connection) GetBlocks(loc1, loc2 proto.Coordinate) (*world.Chunk, error) {
	cmd := proto.NewCommand("world.getBlocksWithData").Coord(loc1).Coord(loc2)
	body, err := c.call(cmd)
	if err != nil {
		return nil, err
	}
	blocks, err := proto.DecodeBlocks(body)
	if err != nil {
		return nil, decodeErr(cmd, err)
	}
	return newChunk(cmd, body, loc1, loc2, blocks)
}

// GetBlockIDs is GetBlocks without modifiers.
func (c *Connection) GetBlockIDs(loc1, loc2 proto.Coordinate) (*world.Chunk, error) {
	cmd := proto.NewCommand("world.getBlocks").Coord(loc1).Coord(loc2)
	body, err := c.call(cmd)
	if err != nil {
		return nil, err
	}
	blocks, err := proto.DecodeBlockIDs(body)
	if err != nil {
		return nil, decodeErr(cmd, err)
	}
	return newChunk(cmd, body, loc1, loc2, blocks)
}

func newChunk(cmd *proto.Command, body string, loc1, loc2 proto.Coordinate, blocks []proto.BlockType) (*world.Chunk, error) {
	chunk, err := world.NewChunk(loc1, loc2, blocks)
	if err != nil {
		return nil, &proto.MalformedResponseError{Command: cmd.String(), Body: body, Reason: "wrong block count", Err: err}
	}
	return chunk, nil
}

// GetHeight returns the y of the highest non-air block in column (x, z).
// Each call is a full round trip; use GetHeights for more than a handful of
// columns.
func (c *Connection) GetHeight(x, z int32) (int32, error) {
	cmd := proto.NewCommand("world.getHeight").Int(x).Int(z)
	body, err := c.call(cmd)
	if err != nil {
		return 0, err
	}
	h, err := proto.DecodeInt(body)
	return h, decodeErr(cmd, err)
}

// GetHeights reads the heights of the rectangle spanned by the x and z of
// loc1 and loc2 in one round trip.
func (c *Connection) GetHeights(loc1, loc2 proto.Coordinate) (*world.HeightMap, error) {
	cmd := proto.NewCommand("world.getHeights").Column(loc1.Flat()).Column(loc2.Flat())
	body, err := c.call(cmd)
	if err != nil {
		return nil, err
	}
	heights, err := proto.DecodeInts(body)
	if err != nil {
		return nil, decodeErr(cmd, err)
	}
	hm, err := world.NewHeightMap(loc1, loc2, heights)
	if err != nil {
		return nil, &proto.MalformedResponseError{Command: cmd.String(), Body: body, Reason: "wrong height count", Err: err}
	}
	return hm, nil
}
