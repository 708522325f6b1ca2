// FILE: lixenwraith/proptree/builder_test.go
package proptree

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builderConfig struct {
	Server struct {
		Host    string        `toml:"host"`
		Port    int           `toml:"port"`
		Timeout time.Duration `toml:"timeout"`
	} `toml:"server"`
	Debug bool `toml:"debug"`
}

func builderDefaults() *builderConfig {
	d := &builderConfig{}
	d.Server.Host = "localhost"
	d.Server.Port = 8080
	d.Server.Timeout = 5 * time.Second
	return d
}

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	t.Run("DefaultsOnly", func(t *testing.T) {
		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithArgs(nil).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "app", g.Name())

		host, err := ValueAt[string](g, "server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", host)
		assertMembership(t, g)
	})

	t.Run("Precedence", func(t *testing.T) {
		file := writeFile(t, "app.toml", "[server]\nhost = \"filehost\"\nport = 9000\ntimeout = \"10s\"\n")
		t.Setenv("BLDTEST_SERVER_PORT", "9100")

		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithFile(file).
			WithEnvPrefix("BLDTEST_").
			WithArgs([]string{"--debug"}).
			Build()
		require.NoError(t, err)

		host, _ := ValueAt[string](g, "server.host")
		port, _ := ValueAt[int](g, "server.port")
		timeout, _ := ValueAt[time.Duration](g, "server.timeout")
		debug, _ := ValueAt[bool](g, "debug")

		assert.Equal(t, "filehost", host)
		assert.Equal(t, 9100, port, "env beats file")
		assert.Equal(t, 10*time.Second, timeout)
		assert.True(t, debug, "CLI flag")
	})

	t.Run("CLIBeatsEnv", func(t *testing.T) {
		t.Setenv("BLDTEST_SERVER_PORT", "9100")
		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithEnvPrefix("BLDTEST_").
			WithArgs([]string{"--server.port=9200"}).
			Build()
		require.NoError(t, err)
		port, _ := ValueAt[int](g, "server.port")
		assert.Equal(t, 9200, port)
	})

	t.Run("CustomSources", func(t *testing.T) {
		t.Setenv("BLDTEST_SERVER_PORT", "9100")
		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithEnvPrefix("BLDTEST_").
			WithArgs([]string{"--server.port=9200"}).
			WithSources(SourceEnv, SourceCLI, SourceDefault).
			Build()
		require.NoError(t, err)
		port, _ := ValueAt[int](g, "server.port")
		assert.Equal(t, 9100, port)
	})

	t.Run("FileKeysLimitedToDefaults", func(t *testing.T) {
		file := writeFile(t, "app.toml", "extra = 1\n[server]\nport = 1\n")

		g, err := NewBuilder("app").WithDefaults(builderDefaults()).WithFile(file).WithArgs(nil).Build()
		require.NoError(t, err)
		assert.False(t, g.HasProperty("extra"))

		g, err = NewBuilder("app").WithDefaults(builderDefaults()).WithFile(file).WithAddMissing(true).WithArgs(nil).Build()
		require.NoError(t, err)
		assert.True(t, g.HasProperty("extra"))
	})

	t.Run("MissingFileNotFatal", func(t *testing.T) {
		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithFile(filepath.Join(t.TempDir(), "missing.toml")).
			WithArgs([]string{"--server.port=1234"}).
			Build()
		require.ErrorIs(t, err, ErrFileNotFound)
		require.NotNil(t, g)
		port, _ := ValueAt[int](g, "server.port")
		assert.Equal(t, 1234, port)

		assert.NotPanics(t, func() {
			NewBuilder("app").WithFile(filepath.Join(t.TempDir(), "missing.toml")).WithArgs(nil).MustBuild()
		})
	})

	t.Run("WithGroup", func(t *testing.T) {
		extra := NewGroup("extra", NewGroup("cache", IntRange("size", 64, 1, 1024)))
		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithGroup(extra).
			WithArgs([]string{"--cache.size=5000"}).
			Build()
		require.NoError(t, err)
		size, _ := ValueAt[int](g, "cache.size")
		assert.Equal(t, 1024, size)

		_, err = NewBuilder("app").WithGroup(nil).Build()
		assert.ErrorIs(t, err, ErrNilGroup)
	})

	t.Run("InvalidCLIValue", func(t *testing.T) {
		_, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithArgs([]string{"--server.port=http"}).
			Build()
		assert.ErrorIs(t, err, ErrCLIParse)
		assert.Panics(t, func() {
			NewBuilder("app").WithDefaults(builderDefaults()).WithArgs([]string{"--server.port=http"}).MustBuild()
		})
	})

	t.Run("Validators", func(t *testing.T) {
		errTooLow := errors.New("port too low")
		portCheck := func(g *Group) error {
			if port, _ := ValueAt[int](g, "server.port"); port < 1024 {
				return errTooLow
			}
			return nil
		}

		_, err := NewBuilder("app").WithDefaults(builderDefaults()).WithValidator(portCheck).WithArgs(nil).Build()
		require.NoError(t, err)

		_, err = NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithValidator(portCheck).
			WithArgs([]string{"--server.port=80"}).
			Build()
		assert.ErrorIs(t, err, errTooLow)
	})

	t.Run("BuildAndScan", func(t *testing.T) {
		var cfg builderConfig
		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithArgs([]string{"--server.timeout=2s", "--debug"}).
			BuildAndScan(&cfg)
		require.NoError(t, err)
		require.NotNil(t, g)
		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 2*time.Second, cfg.Server.Timeout)
		assert.True(t, cfg.Debug)
	})

	t.Run("Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithLogger(logger).
			WithArgs([]string{"--debug"}).
			Build()
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "applied source")
		assert.Contains(t, buf.String(), "source=cli")
	})

	t.Run("FileDiscovery", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "discotest.yaml"), []byte("server:\n  port: 7777\n"), 0644))

		opts := DefaultDiscoveryOptions("discotest")
		opts.Paths = []string{dir}
		opts.UseXDG = false
		opts.UseCurrentDir = false

		g, err := NewBuilder("app").
			WithDefaults(builderDefaults()).
			WithArgs(nil).
			WithFileDiscovery(opts).
			Build()
		require.NoError(t, err)
		port, _ := ValueAt[int](g, "server.port")
		assert.Equal(t, 7777, port)
	})
}

// TestDiscoverFile tests the file search order
func TestDiscoverFile(t *testing.T) {
	dir := t.TempDir()
	found := filepath.Join(dir, "disco.toml")
	require.NoError(t, os.WriteFile(found, []byte("a = 1\n"), 0644))

	opts := FileDiscoveryOptions{
		Name:       "disco",
		Extensions: []string{".json", ".toml"},
		Paths:      []string{dir},
		EnvVar:     "DISCO_CONFIG",
		CLIFlag:    "--config",
	}

	t.Run("SearchPaths", func(t *testing.T) {
		path, ok := DiscoverFile(opts, nil)
		require.True(t, ok)
		assert.Equal(t, found, path)
	})

	t.Run("EnvBeatsSearch", func(t *testing.T) {
		t.Setenv("DISCO_CONFIG", "/from/env.toml")
		path, ok := DiscoverFile(opts, nil)
		require.True(t, ok)
		assert.Equal(t, "/from/env.toml", path)
	})

	t.Run("FlagBeatsEnv", func(t *testing.T) {
		t.Setenv("DISCO_CONFIG", "/from/env.toml")
		path, ok := DiscoverFile(opts, []string{"--config", "/from/flag.toml"})
		require.True(t, ok)
		assert.Equal(t, "/from/flag.toml", path)

		path, ok = DiscoverFile(opts, []string{"--config=/from/eq.toml"})
		require.True(t, ok)
		assert.Equal(t, "/from/eq.toml", path)
	})

	t.Run("CandidatesInOrder", func(t *testing.T) {
		other := t.TempDir()
		got := candidates(FileDiscoveryOptions{
			Name:       "disco",
			Extensions: []string{".json", ".toml"},
			Paths:      []string{dir, other, dir + "/"},
		})
		assert.Equal(t, []string{
			filepath.Join(dir, "disco.json"),
			filepath.Join(dir, "disco.toml"),
			filepath.Join(other, "disco.json"),
			filepath.Join(other, "disco.toml"),
		}, got)
	})

	t.Run("LogsCandidates", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		path, ok := discoverFile(opts, nil, logger)
		require.True(t, ok)
		assert.Equal(t, found, path)
		assert.Contains(t, buf.String(), "file candidate skipped")
		assert.Contains(t, buf.String(), "file discovered")
	})

	t.Run("XDGConfigHome", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(home, "xdgdisco"), 0755))
		want := filepath.Join(home, "xdgdisco", "xdgdisco.yaml")
		require.NoError(t, os.WriteFile(want, []byte("a: 1\n"), 0644))
		t.Setenv("XDG_CONFIG_HOME", home)

		opts := DefaultDiscoveryOptions("xdgdisco")
		opts.UseCurrentDir = false
		assert.Equal(t, "XDGDISCO_CONFIG", opts.EnvVar)
		path, ok := DiscoverFile(opts, nil)
		require.True(t, ok)
		assert.Equal(t, want, path)
	})

	t.Run("NothingFound", func(t *testing.T) {
		_, ok := DiscoverFile(FileDiscoveryOptions{Name: "nope", Extensions: []string{".toml"}, Paths: []string{dir}}, nil)
		assert.False(t, ok)
	})
}
