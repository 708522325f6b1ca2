// FILE: lixenwraith/proptree/cmd/proptree/commands_test.go
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/proptree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appDoc = `name = "demo"

[server]
host = "localhost"
port = 8080

[serverless]
region = "eu"
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runCLI executes the root command with fresh flag values and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	filePath, envPrefix, logLevel, format = "", "", "warn", proptree.FormatAuto
	showDebug, segmentPrefix, strategyName = false, false, "overwrite"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// TestShow tests printing the layered tree with trailing overrides
func TestShow(t *testing.T) {
	file := writeFixture(t, "app.toml", appDoc)

	t.Run("TrailingOverride", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "show", "--server.port=9000")
		require.NoError(t, err)
		assert.Contains(t, out, "port = 9000")
		assert.NotContains(t, out, "port = 8080")
	})

	t.Run("FlagsAfterSubcommand", func(t *testing.T) {
		out, err := runCLI(t, "show", "--file", file, "--server.host", "example.com", "-f="+file)
		require.NoError(t, err)
		assert.Contains(t, out, `host = "example.com"`)
	})

	t.Run("AfterSeparator", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "show", "--", "--server.port=9001")
		require.NoError(t, err)
		assert.Contains(t, out, "port = 9001")
	})

	t.Run("DebugView", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "show", "--debug", "--server.port=9002")
		require.NoError(t, err)
		assert.Contains(t, out, "=== Property Tree Debug ===")
		assert.Contains(t, out, "port = 9002 (int)")
	})

	t.Run("UnknownPathIgnored", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "show", "--server.workers=4")
		require.NoError(t, err)
		assert.NotContains(t, out, "workers")
	})

	t.Run("InvalidValue", func(t *testing.T) {
		_, err := runCLI(t, "--file", file, "show", "--server.port=http")
		assert.ErrorIs(t, err, proptree.ErrCLIParse)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("CLITEST_SERVER_PORT", "7000")
		out, err := runCLI(t, "--file", file, "--env-prefix", "CLITEST_", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "port = 7000")
	})
}

// TestQueries tests get, list, find and prefix
func TestQueries(t *testing.T) {
	file := writeFixture(t, "app.toml", appDoc)

	t.Run("GetLeaf", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "get", "server.port")
		require.NoError(t, err)
		assert.Equal(t, "8080\n", out)
	})

	t.Run("GetGroup", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "get", "server")
		require.NoError(t, err)
		assert.Contains(t, out, `host = "localhost"`)
		assert.Contains(t, out, "port = 8080")
	})

	t.Run("List", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "proptree.name = demo\n")
		assert.Contains(t, out, "proptree.server\n")
		assert.Contains(t, out, "proptree.server.port = 8080\n")
	})

	t.Run("Find", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "find", "server.*")
		require.NoError(t, err)
		assert.Equal(t, "proptree.server.host = localhost\nproptree.server.port = 8080\n", out)
	})

	t.Run("PrefixLiteral", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "prefix", "proptree.server")
		require.NoError(t, err)
		assert.Contains(t, out, "proptree.server.port = 8080")
		assert.Contains(t, out, "proptree.serverless.region = eu")
	})

	t.Run("PrefixSegment", func(t *testing.T) {
		out, err := runCLI(t, "--file", file, "prefix", "--segment", "proptree.server")
		require.NoError(t, err)
		assert.Contains(t, out, "proptree.server.port = 8080")
		assert.NotContains(t, out, "serverless")
	})
}

// TestMergeCommands tests merge and left-merge of two files
func TestMergeCommands(t *testing.T) {
	base := writeFixture(t, "base.toml", "name = \"x\"\nage = 1\n")
	other := writeFixture(t, "other.toml", "name = \"y\"\ncity = \"z\"\n")

	t.Run("Overwrite", func(t *testing.T) {
		out, err := runCLI(t, "merge", base, other)
		require.NoError(t, err)
		assert.Contains(t, out, `name = "y"`)
		assert.Contains(t, out, `city = "z"`)
	})

	t.Run("Rename", func(t *testing.T) {
		out, err := runCLI(t, "merge", "--strategy", "rename", base, other)
		require.NoError(t, err)
		assert.Contains(t, out, `name = "x"`)
		assert.Contains(t, out, `name_1 = "y"`)
		assert.Contains(t, out, `city = "z"`)
	})

	t.Run("Throw", func(t *testing.T) {
		_, err := runCLI(t, "merge", "-s", "throw", base, other)
		assert.ErrorIs(t, err, proptree.ErrPropertyExists)
		assert.Equal(t, 1, exitCode(err))
	})

	t.Run("UnknownStrategy", func(t *testing.T) {
		_, err := runCLI(t, "merge", "-s", "newest", base, other)
		assert.ErrorIs(t, err, proptree.ErrUnknownStrategy)
	})

	t.Run("LeftMerge", func(t *testing.T) {
		out, err := runCLI(t, "left-merge", base, other)
		require.NoError(t, err)
		assert.Contains(t, out, `name = "y"`)
		assert.Contains(t, out, "age = 1")
		assert.NotContains(t, out, "city")
	})
}

// TestExitCode tests error classification for the process status
func TestExitCode(t *testing.T) {
	file := writeFixture(t, "app.toml", appDoc)

	t.Run("MissingFile", func(t *testing.T) {
		_, err := runCLI(t, "--file", filepath.Join(t.TempDir(), "missing.toml"), "get", "name")
		require.ErrorIs(t, err, proptree.ErrFileNotFound)
		assert.Equal(t, 2, exitCode(err))
	})

	t.Run("UnknownPath", func(t *testing.T) {
		_, err := runCLI(t, "--file", file, "get", "server.nope")
		require.ErrorIs(t, err, proptree.ErrPathNotFound)
		assert.Equal(t, 2, exitCode(err))
	})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, 0},
		{"WrappedFileNotFound", fmt.Errorf("load: %w", proptree.ErrFileNotFound), 2},
		{"CLIParse", proptree.ErrCLIParse, 1},
		{"Other", io.EOF, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// TestSplitOverrides tests separating command flags from tree overrides
func TestSplitOverrides(t *testing.T) {
	own, overrides := splitOverrides(showCmd, []string{
		"--file", "app.toml",
		"--server.port=1",
		"-f=other.toml",
		"--debug",
		"positional",
		"--",
		"--debug",
	})
	assert.Equal(t, []string{"--file", "app.toml", "-f=other.toml", "--debug"}, own)
	assert.Equal(t, []string{"--server.port=1", "positional", "--debug"}, overrides)
}
