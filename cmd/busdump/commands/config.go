package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/names"
)

// Config is the busdump configuration file.
//
//	compression = "s2"
//	member_names = true
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[filter]
//	interface = "org.freedesktop.DBus.Properties"
//	member = "PropertiesChanged"
type Config struct {
	Compression string       `toml:"compression"`
	MemberNames bool         `toml:"member_names"`
	Log         LogConfig    `toml:"log"`
	Filter      FilterConfig `toml:"filter"`
}

// LogConfig configures diagnostic logging on stderr.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// FilterConfig selects the messages list and stats operate on. Flags override it.
type FilterConfig struct {
	Interface string `toml:"interface"`
	Member    string `toml:"member"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Compression: "zstd",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file keep their
// defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}

	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if _, err := ParseCompression(c.Compression); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}

	return c.Filter.Validate()
}

// Validate checks the filter names.
func (f FilterConfig) Validate() error {
	if f.Interface != "" {
		if _, err := names.ParseInterfaceName(f.Interface); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}
	if f.Member != "" {
		if _, err := names.ParseMemberName(f.Member); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}

	return nil
}

// ParseCompression maps a codec name to its compression type.
func ParseCompression(s string) (format.CompressionType, error) {
	switch strings.ToLower(s) {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (none|zstd|s2|lz4)", s)
	}
}

// NewLogger builds the zerolog logger described by cfg, writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "busdump").Logger(), nil
}
