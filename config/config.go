// Package config loads the resolved settings a Socket/Client/CLI
// needs: built-in defaults, overlaid by a YAML file, overlaid by
// .env + process environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mickamy/apiwire/socket"
)

// Config holds every setting a Socket, Client, and the ambient
// metrics/inspector servers need.
type Config struct {
	Address        string        `yaml:"address"`
	AuthToken      string        `yaml:"auth_token"`
	Timeout        time.Duration `yaml:"timeout"`
	SynByte        byte          `yaml:"syn_byte"`
	ReadBufferSize int           `yaml:"read_buffer_size"`
	MaxFrameSize   uint32        `yaml:"max_frame_size"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	InspectorAddr  string        `yaml:"inspector_addr"`
}

// defaults returns the built-in fallback values, applied first as the
// base that the YAML file and environment variables overlay.
func defaults() Config {
	return Config{
		Timeout:        socket.DefaultTimeout,
		SynByte:        0x16,
		ReadBufferSize: socket.DefaultReadBufferSize,
	}
}

// Load resolves a Config from (lowest to highest precedence):
// built-in defaults, the YAML file at path (if it exists; a missing
// file is not an error), .env plus the process environment via
// APIWIRE_* variables.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// no YAML file; defaults stand until env overrides apply.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// godotenv.Load never overrides variables already present in the
	// process environment, so explicit env always wins over .env.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APIWIRE_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("APIWIRE_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("APIWIRE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("APIWIRE_SYN_BYTE"); v != "" {
		if n, err := strconv.ParseUint(v, 0, 8); err == nil {
			cfg.SynByte = byte(n)
		}
	}
	if v := os.Getenv("APIWIRE_READ_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReadBufferSize = n
		}
	}
	if v := os.Getenv("APIWIRE_MAX_FRAME_SIZE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.MaxFrameSize = uint32(n)
		}
	}
	if v := os.Getenv("APIWIRE_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("APIWIRE_INSPECTOR_ADDR"); v != "" {
		cfg.InspectorAddr = v
	}
}

// SocketConfig projects the fields a socket.Config needs out of cfg.
func (cfg Config) SocketConfig() socket.Config {
	return socket.Config{
		Address:        cfg.Address,
		Timeout:        cfg.Timeout,
		SynByte:        cfg.SynByte,
		ReadBufferSize: cfg.ReadBufferSize,
		MaxFrameSize:   cfg.MaxFrameSize,
	}
}
