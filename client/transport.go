package mcpi

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/icexin/gocraft-mcpi/proto"
)

// Transport carries one request and one response at a time over a single
// TCP stream. It must not be shared by concurrent callers without external
// locking; Connection does that locking.
type Transport struct {
	conn     net.Conn
	r        *bufio.Reader
	timeout  time.Duration
	lastSent string
}

// DialTransport connects to host:port over IPv4. A zero timeout blocks
// forever on connect, send and receive.
func DialTransport(host string, port int, timeout time.Duration) (*Transport, error) {
	if host == "localhost" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial("tcp4", addr)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}
	return NewTransport(conn, timeout), nil
}

// NewTransport wraps an established connection.
func NewTransport(conn net.Conn, timeout time.Duration) *Transport {
	return &Transport{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: timeout,
	}
}

// Send writes data, which must already carry its newline terminator.
func (t *Transport) Send(data string) error {
	t.lastSent = data
	if t.timeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
			return &IOError{Op: "send", Command: t.last(), Err: err}
		}
	}
	n, err := io.WriteString(t.conn, data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &IOError{Op: "send", Command: t.last(), Err: err}
	}
	return nil
}

// Receive reads one response line and strips its terminator. A Fail body is
// returned as a RemoteCommandError naming the last sent command.
func (t *Transport) Receive() (string, error) {
	if t.timeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
			return "", &IOError{Op: "receive", Command: t.last(), Err: err}
		}
	}
	line, err := t.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", &IOError{Op: "receive", Command: t.last(), Err: err}
	}
	line = strings.TrimSuffix(line[:len(line)-1], "\r")
	if line == proto.Fail {
		return "", &RemoteCommandError{Command: t.last()}
	}
	return line, nil
}

// LastSent is the most recent request without its terminator.
func (t *Transport) LastSent() string {
	return t.last()
}

func (t *Transport) last() string {
	return strings.TrimSuffix(t.lastSent, "\n")
}

func (t *Transport) Close() error {
	return t.conn.Close()
}
