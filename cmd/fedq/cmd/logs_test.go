package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogsCmd_NoLogFile_ReturnsError(t *testing.T) {
	// Given: a log path that doesn't exist and no default engine.log either
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cmd := newLogsCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", filepath.Join(tmp, "missing.log")})

	// When: running it
	err := cmd.Execute()

	// Then: it reports the missing file rather than panicking
	assert.Error(t, err)
}

func TestLogsCmd_TailsExistingFile(t *testing.T) {
	// Given: an existing log file with a few JSON entries
	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "engine.log")
	content := `{"time":"2026-01-15T10:00:00Z","level":"INFO","msg":"hello"}` + "\n" +
		`{"time":"2026-01-15T10:01:00Z","level":"ERROR","msg":"boom"}` + "\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	cmd := newLogsCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", logPath, "--no-color"})

	// When: running it without --follow
	err := cmd.Execute()

	// Then: both entries are printed
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hello")
	assert.Contains(t, out.String(), "boom")
}

func TestLogsCmd_LevelFilter(t *testing.T) {
	// Given: a log file mixing debug and error entries
	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "engine.log")
	content := `{"time":"2026-01-15T10:00:00Z","level":"DEBUG","msg":"quiet"}` + "\n" +
		`{"time":"2026-01-15T10:01:00Z","level":"ERROR","msg":"loud"}` + "\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	cmd := newLogsCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", logPath, "--no-color", "--level", "error"})

	// When: running it with a minimum level of error
	err := cmd.Execute()

	// Then: only the error entry passes the filter
	require.NoError(t, err)
	assert.Contains(t, out.String(), "loud")
	assert.NotContains(t, out.String(), "quiet")
}

func TestLogsCmd_InvalidFilterPattern_ReturnsError(t *testing.T) {
	// Given: an existing log file and an unparseable regex filter
	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "engine.log")
	require.NoError(t, os.WriteFile(logPath, []byte(`{"time":"2026-01-15T10:00:00Z","level":"INFO","msg":"x"}`+"\n"), 0o644))

	cmd := newLogsCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", logPath, "--filter", "("})

	// When: running it
	err := cmd.Execute()

	// Then: the bad pattern is reported rather than passed to regexp blindly
	assert.Error(t, err)
}
