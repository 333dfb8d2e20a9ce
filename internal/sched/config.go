package sched

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	yaml "github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

// Config mirrors config.yml (or config.toml)
type Config struct {
	Name        string `yaml:"name" toml:"name"`
	IntervalMS  int    `yaml:"interval_ms" toml:"interval_ms"`     // 1000 (by default)
	ForceStop   bool   `yaml:"force_stop" toml:"force_stop"`       // cancel the in-flight run on stop
	StopOnError bool   `yaml:"stop_on_error" toml:"stop_on_error"` // end the loop on the first failed run
	HistorySize int    `yaml:"history_size" toml:"history_size"`   // 64 (by default)
	CSVPath     string `yaml:"csv_path" toml:"csv_path"`           // empty = no csv
	LogLevel    string `yaml:"log_level" toml:"log_level"`         // "info" (by default)
	RunForMS    int    `yaml:"run_for_ms" toml:"run_for_ms"`       // 0 = until interrupted
}

// If the config file is not found, we use default values
func DefaultConfig() Config {
	return Config{
		Name:        "ticksched",
		IntervalMS:  int(DefaultInterval / time.Millisecond),
		HistorySize: DefaultHistorySize,
		LogLevel:    "info",
	}
}

// Load reads YAML or TOML (by extension) and overrides defaults.
// An empty path or a missing file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("sched: read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("sched: parse config %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// sanity clamps
func (c *Config) clamp() {
	def := DefaultConfig()
	c.Name = lo.Ternary(strings.TrimSpace(c.Name) == "", def.Name, strings.TrimSpace(c.Name))
	c.IntervalMS = lo.Ternary(c.IntervalMS <= 0, def.IntervalMS, c.IntervalMS)
	c.HistorySize = lo.Ternary(c.HistorySize <= 0, def.HistorySize, c.HistorySize)
	c.LogLevel = lo.Ternary(c.LogLevel == "", def.LogLevel, c.LogLevel)
	c.RunForMS = lo.Max([]int{c.RunForMS, 0})
}

// Interval returns IntervalMS as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// RunFor returns RunForMS as a duration; zero means run until interrupted.
func (c Config) RunFor() time.Duration {
	return time.Duration(c.RunForMS) * time.Millisecond
}

// Options maps the config onto worker options.
func (c Config) Options() []Option {
	return []Option{
		WithName(c.Name),
		WithInterval(c.Interval()),
		WithErrorPolicy(lo.Ternary(c.StopOnError, StopOnError, ContinueOnError)),
	}
}
