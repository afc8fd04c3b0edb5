package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintParse(t *testing.T) {
	var buf bytes.Buffer
	err := printParse(&buf, "fly; fireX; fire(2)")
	assert.ErrorIs(t, err, errDiagnostics)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1\tfly", lines[0])
	assert.Equal(t, "2\tfire(2)", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "skip\t"), lines[2])
	assert.Contains(t, lines[2], "fireX")
}

func TestPrintParse_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printParse(&buf, "melee(20); delay(0.5)"))
	assert.Equal(t, "1\tmelee(10)\n2\tdelay(0.5)\n", buf.String())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ultron dev (none, unknown)\n", out)

	out, err = execute(t, "parse", "lock; shutdown")
	require.NoError(t, err)
	assert.Equal(t, "1\tlock\n2\tshutdown\n", out)

	_, err = execute(t, "parse")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ultron", "config.json")

	out, err := execute(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", out)
	assert.FileExists(t, path)
}
