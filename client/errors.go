package mcpi

import (
	"errors"
	"fmt"

	"github.com/icexin/gocraft-mcpi/proto"
	"github.com/icexin/gocraft-mcpi/world"
)

// ErrEmptyArgument is returned, before anything is sent, for a command or
// setting the server would reject for being blank.
var ErrEmptyArgument = errors.New("empty command argument")

// ConnectionError means the host could not be resolved or the connect call
// failed, usually because nothing is listening.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IOError is a failed read or write on an established connection.
type IOError struct {
	Op      string
	Command string
	Err     error
}

func (e *IOError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Command, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// RemoteCommandError means the server answered Fail to Command.
type RemoteCommandError struct {
	Command string
}

func (e *RemoteCommandError) Error() string {
	return "server failed to execute command: " + e.Command
}

type (
	MalformedResponseError = proto.MalformedResponseError
	OutOfRangeError        = world.OutOfRangeError
)
