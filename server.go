package main

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"go.uber.org/atomic"

	"github.com/icexin/gocraft-mcpi/proto"
)

// Query answers a command with one response line.
type Query func(req proto.Request) (string, error)

// Update changes the world and is not answered unless it fails.
type Update func(req proto.Request) error

type route struct {
	query  Query
	update Update
}

// Service registers the commands it serves.
type Service interface {
	Register(s *Server)
}

type Server struct {
	clientid *atomic.Int32
	served   *atomic.Int64
	closed   *atomic.Bool
	sessions sync.Map // map[id]*Session
	routes   map[string]route
	log      *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

func NewServer(log *slog.Logger) *Server {
	return &Server{
		clientid: atomic.NewInt32(0),
		served:   atomic.NewInt64(0),
		closed:   atomic.NewBool(false),
		routes:   make(map[string]route),
		log:      log,
	}
}

func (s *Server) RegisterService(svc Service) {
	svc.Register(s)
}

func (s *Server) HandleQuery(name string, q Query) {
	s.routes[name] = route{query: q}
}

func (s *Server) HandleUpdate(name string, u Update) {
	s.routes[name] = route{update: u}
}

// Served is the number of request lines handled so far.
func (s *Server) Served() int64 {
	return s.served.Load()
}

func (s *Server) dispatch(sess *Session, line string) {
	s.served.Inc()
	sess.log.Debug("command", "cmd", line)
	req, err := proto.ParseCommand(line)
	if err != nil {
		sess.log.Warn("bad request", "cmd", line, "error", err)
		sess.Reply(proto.Fail)
		return
	}
	rt, ok := s.routes[req.Name]
	if !ok {
		sess.log.Warn("unknown command", "cmd", req.Name)
		sess.Reply(proto.Fail)
		return
	}
	if rt.update != nil {
		if err := rt.update(req); err != nil {
			sess.log.Warn("command failed", "cmd", line, "error", err)
			sess.Reply(proto.Fail)
		}
		return
	}
	body, err := rt.query(req)
	if err != nil {
		sess.log.Warn("command failed", "cmd", line, "error", err)
		sess.Reply(proto.Fail)
		return
	}
	sess.Reply(body)
}

func (s *Server) handleConn(conn net.Conn) {
	id := s.clientid.Inc()
	sess := NewSession(id, conn, s.log)
	s.sessions.Store(id, sess)
	defer func() {
		s.sessions.Delete(id)
		sess.Close()
		sess.log.Info("closed connection")
	}()
	sess.log.Info("accepted connection")

	for {
		line, err := sess.ReadLine()
		if err != nil {
			if err != io.EOF && !s.closed.Load() {
				sess.log.Warn("read", "error", err)
			}
			return
		}
		s.dispatch(sess, line)
	}
}

func (s *Server) RangeSession(f func(id int32, sess *Session)) {
	s.sessions.Range(func(k, v interface{}) bool {
		f(k.(int32), v.(*Session))
		return true
	})
}

// Serve accepts connections on l until Close is called.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	if s.closed.Load() {
		l.Close()
		return nil
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Error("accept connection", "error", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting and drops every open session.
func (s *Server) Close() error {
	if !s.closed.CAS(false, true) {
		return nil
	}
	var err error
	s.mu.Lock()
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.mu.Unlock()
	s.RangeSession(func(id int32, sess *Session) {
		sess.Close()
	})
	return err
}
