package main

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
)

// Session is one client connection. Requests are served one at a time in
// arrival order.
type Session struct {
	id   int32
	conn net.Conn
	r    *bufio.Reader
	log  *slog.Logger

	closeOnce sync.Once
}

func NewSession(id int32, conn net.Conn, log *slog.Logger) *Session {
	return &Session{
		id:   id,
		conn: conn,
		r:    bufio.NewReader(conn),
		log:  log.With("id", id, "addr", conn.RemoteAddr().String()),
	}
}

// ReadLine returns the next request line without its terminator.
func (s *Session) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Session) Reply(body string) error {
	_, err := io.WriteString(s.conn, body+"\n")
	return err
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
}
