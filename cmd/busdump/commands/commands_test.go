package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dbuswire/capture"
	"github.com/arloliu/dbuswire/format"
	"github.com/arloliu/dbuswire/message"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleTraffic(t *testing.T) []*message.Message {
	t.Helper()

	var msgs []*message.Message
	for i := range 5 {
		b, err := message.NewSignal("/org/example/Object", "org.freedesktop.DBus.Properties", "PropertiesChanged",
			message.WithSerial(uint32(10+i)))
		require.NoError(t, err)
		msg, err := b.Build()
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}

	b, err := message.NewMethodCall("/org/example/Object", "Ping", message.WithSerial(99))
	require.NoError(t, err)
	call, err := b.Interface("org.example.Iface").Build()
	require.NoError(t, err)

	return append(msgs, call)
}

func writeCapture(t *testing.T) string {
	t.Helper()

	w, err := capture.NewWriter(testStart, capture.WithCompression(format.CompressionS2))
	require.NoError(t, err)
	for i, m := range sampleTraffic(t) {
		require.NoError(t, w.Append(m, testStart.Add(time.Duration(i)*time.Second)))
	}
	data, err := w.Finish()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "session.cap")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestList(t *testing.T) {
	path := writeCapture(t)

	t.Run("All", func(t *testing.T) {
		out, err := run(t, "list", path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 6)
		require.Contains(t, lines[0], "Signal serial=10")
		require.Contains(t, lines[0], "2026-03-01T12:00:00Z")
		require.Contains(t, lines[5], `Member="Ping"`)
	})

	t.Run("By member index", func(t *testing.T) {
		out, err := run(t, "list", path, "--interface", "org.freedesktop.DBus.Properties", "--member", "PropertiesChanged")
		require.NoError(t, err)
		require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
		require.NotContains(t, out, "Ping")
	})

	t.Run("Member only", func(t *testing.T) {
		out, err := run(t, "list", path, "--member", "Ping")
		require.NoError(t, err)
		require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
	})

	t.Run("Limit", func(t *testing.T) {
		out, err := run(t, "list", path, "-n", "2")
		require.NoError(t, err)
		require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
	})

	t.Run("Invalid filter", func(t *testing.T) {
		_, err := run(t, "list", path, "--member", "Get-All")
		require.Error(t, err)
	})

	t.Run("Not a capture", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.cap")
		require.NoError(t, os.WriteFile(bad, []byte("not a capture at all, just text bytes"), 0o600))
		_, err := run(t, "list", bad)
		require.Error(t, err)
	})
}

func TestStats(t *testing.T) {
	path := writeCapture(t)

	out, err := run(t, "stats", path)
	require.NoError(t, err)
	require.Contains(t, out, "messages: 6")
	require.Contains(t, out, "compression: S2")
	require.Contains(t, out, "Signal")
	require.Contains(t, out, "MethodCall")
	require.Contains(t, out, "5 org.freedesktop.DBus.Properties.PropertiesChanged")

	configPath := writeConfig(t, "[filter]\nmember = \"Ping\"\n")
	out, err = run(t, "stats", path, "--config", configPath)
	require.NoError(t, err)
	require.Contains(t, out, "messages: 1")
}

func TestSummary_TopMembers(t *testing.T) {
	s := Summary{ByMember: map[string]int{"a.b.X": 1, "a.b.Y": 3, "a.b.Z": 3}}
	require.Equal(t, []string{"a.b.Y", "a.b.Z", "a.b.X"}, s.TopMembers(0))
	require.Equal(t, []string{"a.b.Y"}, s.TopMembers(1))
}

func TestPack(t *testing.T) {
	var stream bytes.Buffer
	for _, m := range sampleTraffic(t) {
		_, err := m.WriteTo(&stream)
		require.NoError(t, err)
	}

	dir := t.TempDir()
	raw := filepath.Join(dir, "stream.bin")
	require.NoError(t, os.WriteFile(raw, stream.Bytes(), 0o600))
	out := filepath.Join(dir, "out.cap")

	_, err := run(t, "pack", raw, out, "--compression", "lz4", "--interface", "org.freedesktop.DBus.Properties")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	r, err := capture.Open(data)
	require.NoError(t, err)
	require.Equal(t, 5, r.Len())
	require.Equal(t, format.CompressionLZ4, r.Header().Flag.GetDataCompression())
	require.Nil(t, r.Members())

	t.Run("Member names", func(t *testing.T) {
		named := filepath.Join(dir, "named.cap")
		_, err := run(t, "pack", raw, named, "--member-names")
		require.NoError(t, err)

		out, err := run(t, "stats", named)
		require.NoError(t, err)
		require.Contains(t, out, "member table: 2 names")
	})

	t.Run("Truncated stream", func(t *testing.T) {
		short := filepath.Join(dir, "short.bin")
		require.NoError(t, os.WriteFile(short, stream.Bytes()[:stream.Len()-3], 0o600))
		_, err := run(t, "pack", short, filepath.Join(dir, "short.cap"))
		require.Error(t, err)
	})
}
