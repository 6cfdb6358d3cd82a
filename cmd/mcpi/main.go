package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	mcpi "github.com/icexin/gocraft-mcpi/client"
)

var (
	configPath = flag.String("config", "", "yaml config file")
	host       = flag.String("host", mcpi.DefaultHost, "server host")
	port       = flag.Int("port", mcpi.DefaultPort, "server port")
	timeout    = flag.Duration("timeout", 0, "per request timeout, 0 waits forever")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: mcpi [flags] <command> [args]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-10s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nflags:\n")
	flag.PrintDefaults()
}

// loadConfig starts from the config file, if any, and lets flags given on
// the command line win.
func loadConfig() (mcpi.Config, error) {
	cfg := mcpi.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = mcpi.LoadConfig(*configPath)
		if err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "timeout":
			cfg.Timeout = *timeout
		}
	})
	return cfg, cfg.Validate()
}

func fatal(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	name, args := flag.Arg(0), flag.Args()[1:]
	c, ok := lookup(name)
	if !ok {
		fatal("unknown command %q", name)
	}

	cfg, err := loadConfig()
	if err != nil {
		fatal("config: %v", err)
	}

	start := time.Now()
	conn, err := mcpi.DialConfig(cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer conn.Close()

	if err := c.run(conn, args); err != nil {
		conn.Close()
		fatal("%s: %v", name, err)
	}
	if strings.HasPrefix(c.name, "set") || c.name == "chat" || c.name == "cmd" {
		color.Green("%s done in %v", name, time.Since(start).Round(time.Millisecond))
	}
}
