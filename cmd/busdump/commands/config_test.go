package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dbuswire/format"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "busdump.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults without file", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("Partial file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, `
[filter]
interface = "org.freedesktop.DBus.Properties"
member = "PropertiesChanged"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "zstd", cfg.Compression)
		require.Equal(t, "info", cfg.Log.Level)
		require.Equal(t, "org.freedesktop.DBus.Properties", cfg.Filter.Interface)
		require.Equal(t, "PropertiesChanged", cfg.Filter.Member)
	})

	t.Run("Full file", func(t *testing.T) {
		path := writeConfig(t, `
compression = "lz4"
member_names = true

[log]
level = "debug"
format = "json"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "lz4", cfg.Compression)
		require.True(t, cfg.MemberNames)
		require.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed TOML", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "compression = \n"))
		require.ErrorContains(t, err, "config parse failed")
	})

	t.Run("Invalid values", func(t *testing.T) {
		for _, content := range []string{
			`compression = "gzip"`,
			"[log]\nlevel = \"loud\"",
			"[log]\nformat = \"xml\"",
			"[filter]\ninterface = \"nodots\"",
			"[filter]\nmember = \"Get-All\"",
		} {
			_, err := LoadConfig(writeConfig(t, content))
			require.ErrorContains(t, err, "config invalid", content)
		}
	})
}

func TestParseCompression(t *testing.T) {
	cases := map[string]format.CompressionType{
		"none": format.CompressionNone,
		"ZSTD": format.CompressionZstd,
		"s2":   format.CompressionS2,
		"lz4":  format.CompressionLZ4,
	}
	for in, want := range cases {
		got, err := ParseCompression(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseCompression("brotli")
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "x.cap").Msg("shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"message":"shown"`)
	require.Contains(t, out, `"app":"busdump"`)

	_, err = NewLogger(LogConfig{Level: "nope"}, &buf)
	require.Error(t, err)
}
