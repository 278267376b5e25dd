package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--config", "")
	require.NoError(t, err)
	assert.Contains(t, out, `layout "modellbahn" is valid: 22 tracks (7 switches) on 7 boards, start A_1a -> A_1b`)
}

func TestValidateCommand_ShortChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout: modellbahn\nboards:\n  - {outputs: 1}\n"), 0o644))

	_, err := execute(t, "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_board")
}

func TestBoardsCommand(t *testing.T) {
	out, err := execute(t, "boards", "--config", "")
	require.NoError(t, err)
	assert.Contains(t, out, "frame: 7 bytes, 7 boards")
	// Board 0 is shifted out last, so it sits at the end of the frame.
	assert.Regexp(t, `(?m)^0\s+0\s+1\s+6$`, out)
	assert.Regexp(t, `(?m)^6\s+0\s+1\s+0$`, out)
}

func TestRunCommand_Steps(t *testing.T) {
	_, err := execute(t, "run", "--config", "", "--steps", "3", "--interval-ms", "1", "--log-level", "error")
	require.NoError(t, err)
}
