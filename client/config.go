package mcpi

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 4711
)

// Config describes where the server plugin listens.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Timeout bounds connect and every send and receive. Zero blocks forever.
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %v", c.Timeout)
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
