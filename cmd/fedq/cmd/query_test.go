package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/response"
)

func TestQueryCmd_UnrecognizedStrategy_ReturnsError(t *testing.T) {
	// Given: a query command with an unrecognized strategy
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	oldDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	defer func() { _ = os.Chdir(oldDir) }()

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"hello", "--strategy", "bogus"})

	// When: executing it
	err := cmd.Execute()

	// Then: it should fail before touching any store
	assert.Error(t, err)
}

func TestQueryCmd_NoStoresConfigured_ReturnsJSONResponse(t *testing.T) {
	// Given: a query command with no backing stores configured beyond
	// the always-on in-process vector store
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	oldDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	defer func() { _ = os.Chdir(oldDir) }()

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"hello", "--format", "json"})

	// When: executing it
	err := cmd.Execute()

	// Then: it should print a well-formed Response, even with zero items
	require.NoError(t, err)
	var resp response.Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.NotNil(t, resp.Metadata)
}

func TestRunQuery_TextFormat_NoStores(t *testing.T) {
	// Given: a default configuration with no external store configured
	// (only the stores it registers in-process, all empty)
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	oldDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	defer func() { _ = os.Chdir(oldDir) }()

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	// When: running a query directly
	err := runQuery(context.Background(), cmd, "hello world", queryOptions{
		limit:    10,
		strategy: "hybrid",
		format:   "text",
	})

	// Then: it should not error even when the query finds nothing
	require.NoError(t, err)
}
