package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nk-passkey-probe/pkg/config"
	"nk-passkey-probe/pkg/credstore"
)

// runCLI executes the root command the way main does, capturing the
// operator-facing output. Flags bind package variables, so every call
// passes its flags explicitly instead of relying on defaults.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	seedRPID = ""
	inspectFile = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = execute(context.Background())
	return out.String(), errOut.String(), err
}

func unsetLoginURL(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvLoginURL, "")
	os.Unsetenv(config.EnvLoginURL)
}

func TestSeedMissingLoginURLPrintsError(t *testing.T) {
	unsetLoginURL(t)
	dir := t.TempDir()

	_, stderr, err := runCLI(t, "seed",
		"--env-file", filepath.Join(dir, "no-such.env"),
		"--credentials-dir", dir)

	assert.ErrorIs(t, err, config.ErrLoginURLNotSet)
	assert.Contains(t, stderr, config.EnvLoginURL)
	assert.Equal(t, 1, strings.Count(stderr, "ERROR"), "error is reported exactly once")
}

func TestSeedWritesSnapshot(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := runCLI(t, "seed",
		"--rpid", "example.co.jp",
		"--env-file", filepath.Join(dir, "no-such.env"),
		"--credentials-dir", dir)

	require.NoError(t, err)
	assert.Empty(t, stderr)

	records, loadErr := credstore.New(dir).LoadLatest()
	require.NoError(t, loadErr)
	require.Len(t, records, 1)
	assert.Equal(t, "example.co.jp", records[0].RpID)
	assert.True(t, records[0].IsResidentCredential)
}

func TestInspectReportsCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2026-01-01_00-00-00.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, stderr, err := runCLI(t, "inspect",
		"--credentials-dir", dir,
		"--file", path)

	assert.NoError(t, err, "failures other than missing config exit zero")
	assert.Contains(t, stderr, "ERROR")
	assert.Contains(t, stderr, path)
}

func TestLoginWithoutSnapshotsGuidesBeforeConfig(t *testing.T) {
	unsetLoginURL(t)
	dir := t.TempDir()

	stdout, stderr, err := runCLI(t, "login",
		"--env-file", filepath.Join(dir, "no-such.env"),
		"--credentials-dir", filepath.Join(dir, "empty"))

	require.NoError(t, err)
	assert.Contains(t, stdout, "Run the register command first")
	assert.Empty(t, stderr, "missing login URL must not be reported when there is nothing to log in with")
}

func TestUnknownCommandReportsError(t *testing.T) {
	_, stderr, err := runCLI(t, "bogus")

	assert.Error(t, err)
	assert.Contains(t, stderr, "ERROR")
}
