package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
)

var (
	listenAddr = flag.String("l", ":4711", "listen address")
	dbpath     = flag.String("db", "mcpi-loopback.db", "db file name")
	verbose    = flag.Bool("v", false, "log every command")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := NewStore(*dbpath)
	if err != nil {
		log.Error("open store", "path", *dbpath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	l, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Error("listen", "addr", *listenAddr, "error", err)
		os.Exit(1)
	}

	server := NewLoopback(store, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		log.Info("server shutting down")
		server.Close()
	}()

	log.Info("server started", "addr", l.Addr().String(), "db", *dbpath)
	if err := server.Serve(l); err != nil {
		log.Error("serve", "error", err)
	}
}

// NewLoopback wires every service the plugin protocol needs onto a server.
func NewLoopback(store *Store, log *slog.Logger) *Server {
	server := NewServer(log)
	server.RegisterService(NewWorldService(store))
	server.RegisterService(NewPlayerService(store, log))
	server.RegisterService(NewChatService(log))
	return server
}
