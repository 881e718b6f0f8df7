package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	rcron "github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/parrot"
)

// Config holds all parrot configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Parrot   ParrotConfig   `yaml:"parrot"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ParrotConfig struct {
	DebugFastMemory        bool `yaml:"debug_fast_memory"`
	DebugMemorySeconds     int  `yaml:"debug_memory_seconds"`
	CompletionGraceSeconds int  `yaml:"completion_grace_seconds"`
	CreateXP               int  `yaml:"create_xp"`
	CompleteXP             int  `yaml:"complete_xp"`
	ImportXP               int  `yaml:"import_xp"`
}

type SweepConfig struct {
	Schedule string `yaml:"schedule"` // cron expression or descriptor, e.g. "@every 1m"
}

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Parrot: ParrotConfig{
			DebugMemorySeconds:     30,
			CompletionGraceSeconds: 3,
			CreateXP:               1,
			CompleteXP:             2,
			ImportXP:               1,
		},
		Sweep: SweepConfig{
			Schedule: "@every 1m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.reminderparrot/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".reminderparrot", "config.yaml"), nil
}

// Load returns the defaults overlaid with the YAML file at path, if it
// exists. Environment overrides are not applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays PARROT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PARROT_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("PARROT_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("PARROT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PARROT_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PARROT_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := os.Getenv("PARROT_DEBUG_FAST_MEMORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PARROT_DEBUG_FAST_MEMORY: %w", err)
		}
		c.Parrot.DebugFastMemory = b
	}
	if v := os.Getenv("PARROT_DEBUG_MEMORY_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PARROT_DEBUG_MEMORY_SECONDS: %w", err)
		}
		c.Parrot.DebugMemorySeconds = n
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Parrot.DebugMemorySeconds <= 0 {
		return fmt.Errorf("parrot.debug_memory_seconds must be positive, got %d", c.Parrot.DebugMemorySeconds)
	}
	if c.Parrot.CompletionGraceSeconds < 0 {
		return fmt.Errorf("parrot.completion_grace_seconds is negative")
	}
	for name, v := range map[string]int{
		"create_xp":   c.Parrot.CreateXP,
		"complete_xp": c.Parrot.CompleteXP,
		"import_xp":   c.Parrot.ImportXP,
	} {
		if v < 0 {
			return fmt.Errorf("parrot.%s is negative", name)
		}
	}
	if _, err := rcron.ParseStandard(c.Sweep.Schedule); err != nil {
		return fmt.Errorf("sweep.schedule %q: %w", c.Sweep.Schedule, err)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// EngineOptions translates the parrot section for engine.New.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Debug: parrot.DebugMemory{
			Enabled: c.Parrot.DebugFastMemory,
			Seconds: c.Parrot.DebugMemorySeconds,
		},
		CompletionGrace: time.Duration(c.Parrot.CompletionGraceSeconds) * time.Second,
		CreateXP:        c.Parrot.CreateXP,
		CompleteXP:      c.Parrot.CompleteXP,
		ImportXP:        c.Parrot.ImportXP,
	}
}
