package proto

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Fail is the whole response body the server sends when a command was
// rejected or threw on its side.
const Fail = "Fail"

// Command builds one request line: name(arg1,arg2,...)\n.
// Arguments keep their positional order; empty arguments are kept.
type Command struct {
	name string
	args []string
}

func NewCommand(name string) *Command {
	return &Command{name: name}
}

func (c *Command) Int(v int32) *Command {
	c.args = append(c.args, strconv.FormatInt(int64(v), 10))
	return c
}

// Str appends s verbatim. A newline would terminate the request early, so
// newlines are sent as spaces.
func (c *Command) Str(s string) *Command {
	c.args = append(c.args, strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
	return c
}

func (c *Command) Coord(p Coordinate) *Command {
	return c.Int(p.X).Int(p.Y).Int(p.Z)
}

func (c *Command) Column(p Coordinate2D) *Command {
	return c.Int(p.X).Int(p.Z)
}

func (c *Command) Block(b BlockType) *Command {
	return c.Int(b.ID).Int(b.Mod)
}

func (c *Command) Name() string {
	return c.name
}

// String is the request without its terminator, as used in error messages.
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.name)
	sb.WriteByte('(')
	for i, a := range c.args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Bytes is the wire form of the request.
func (c *Command) Bytes() []byte {
	return []byte(c.String() + "\n")
}

// Request is a command line as read by a server.
type Request struct {
	Name string
	// Raw is everything between the outer parentheses.
	Raw string
}

// Args splits Raw on commas. A request without arguments yields a single
// empty argument, which is how the placeholder argument arrives.
func (r Request) Args() []string {
	return strings.Split(r.Raw, ",")
}

func (r Request) String() string {
	return r.Name + "(" + r.Raw + ")"
}

// ParseCommand reads one request line, with or without its terminator.
func ParseCommand(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	open := strings.IndexByte(line, '(')
	if open <= 0 || !strings.HasSuffix(line, ")") {
		return Request{}, fmt.Errorf("bad command line %q", line)
	}
	return Request{
		Name: line[:open],
		Raw:  line[open+1 : len(line)-1],
	}, nil
}

// MalformedResponseError reports a response body that does not have the
// shape the command answers with.
type MalformedResponseError struct {
	// Command is the request that was answered, when known.
	Command string
	Body    string
	Reason  string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed response %q: %s", truncate(e.Body, 64), e.Reason)
	if e.Command != "" {
		msg = fmt.Sprintf("%s: %s", e.Command, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func malformed(body, reason string, err error) error {
	return &MalformedResponseError{Body: body, Reason: reason, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// DecodeInt parses a scalar base 10 integer.
func DecodeInt(body string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(body), 10, 32)
	if err != nil {
		return 0, malformed(body, "want integer", err)
	}
	return int32(v), nil
}

// parseFloor converts a numeric field by flooring its float value, so that a
// fractional position lands in the block that contains it.
func parseFloor(body, field string) (int32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, malformed(body, fmt.Sprintf("field %q is not numeric", field), err)
	}
	f = math.Floor(f)
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, malformed(body, fmt.Sprintf("field %q out of range", field), nil)
	}
	return int32(f), nil
}

func parseFloats(body string, n int) ([]float64, error) {
	fields := strings.Split(body, ",")
	if len(fields) != n {
		return nil, malformed(body, fmt.Sprintf("want %d fields, got %d", n, len(fields)), nil)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, malformed(body, fmt.Sprintf("field %q is not numeric", f), err)
		}
		out[i] = v
	}
	return out, nil
}

// DecodeCoordinate parses "x,y,z", flooring each component.
func DecodeCoordinate(body string) (Coordinate, error) {
	fields := strings.Split(body, ",")
	if len(fields) != 3 {
		return Coordinate{}, malformed(body, fmt.Sprintf("want 3 fields, got %d", len(fields)), nil)
	}
	var xyz [3]int32
	for i, f := range fields {
		v, err := parseFloor(body, f)
		if err != nil {
			return Coordinate{}, err
		}
		xyz[i] = v
	}
	return Coordinate{xyz[0], xyz[1], xyz[2]}, nil
}

// DecodeVec3 parses "x,y,z" keeping the fractional part.
func DecodeVec3(body string) (mgl64.Vec3, error) {
	v, err := parseFloats(body, 3)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

// DecodeBlock parses a single "id,modifier" pair.
func DecodeBlock(body string) (BlockType, error) {
	fields := strings.Split(body, ",")
	if len(fields) != 2 {
		return BlockType{}, malformed(body, fmt.Sprintf("want id,modifier, got %d fields", len(fields)), nil)
	}
	id, err := parseFloor(body, fields[0])
	if err != nil {
		return BlockType{}, err
	}
	mod, err := parseFloor(body, fields[1])
	if err != nil {
		return BlockType{}, err
	}
	return BlockType{ID: id, Mod: mod}, nil
}

// DecodeBlocks parses "id,mod;id,mod;..." in server order.
func DecodeBlocks(body string) ([]BlockType, error) {
	if body == "" {
		return nil, nil
	}
	groups := strings.Split(body, ";")
	if groups[len(groups)-1] == "" {
		groups = groups[:len(groups)-1]
	}
	blocks := make([]BlockType, 0, len(groups))
	for _, g := range groups {
		b, err := DecodeBlock(g)
		if err != nil {
			return nil, malformed(body, fmt.Sprintf("block %d", len(blocks)), err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DecodeInts parses comma separated integers in server order, flooring any
// fractional value.
func DecodeInts(body string) ([]int32, error) {
	if body == "" {
		return nil, nil
	}
	fields := strings.Split(body, ",")
	out := make([]int32, len(fields))
	for i, f := range fields {
		v, err := parseFloor(body, f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DecodeBlockIDs parses a comma separated id list as blocks without modifier.
func DecodeBlockIDs(body string) ([]BlockType, error) {
	ids, err := DecodeInts(body)
	if err != nil {
		return nil, err
	}
	blocks := make([]BlockType, len(ids))
	for i, id := range ids {
		blocks[i] = BlockType{ID: id}
	}
	return blocks, nil
}

// EncodeBlocks renders blocks the way getBlocksWithData answers.
func EncodeBlocks(blocks []BlockType) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.FormatInt(int64(b.ID), 10))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(int64(b.Mod), 10))
	}
	return sb.String()
}

// EncodeInts renders a comma separated integer list.
func EncodeInts(vs []int32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, ",")
}
