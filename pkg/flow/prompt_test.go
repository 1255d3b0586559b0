package flow

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var promptPaths = []string{
	"credentials/2026-02-03_10-00-00.json",
	"credentials/2026-02-02_09-30-00.json",
	"credentials/2026-01-31_18-45-12.json",
}

func promptRunner(input string) (*Runner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Runner{In: strings.NewReader(input), Out: out}, out
}

func TestSelectSnapshotValid(t *testing.T) {
	r, out := promptRunner("2\n")

	got, err := r.SelectSnapshot(promptPaths)
	require.NoError(t, err)
	assert.Equal(t, promptPaths[1], got)
	assert.Contains(t, out.String(), "[1] 2026-02-03_10-00-00.json")
	assert.Contains(t, out.String(), "[3] 2026-01-31_18-45-12.json")
}

func TestSelectSnapshotRepromptsOnBadInput(t *testing.T) {
	r, out := promptRunner("abc\n0\n99\n3\n")

	got, err := r.SelectSnapshot(promptPaths)
	require.NoError(t, err)
	assert.Equal(t, promptPaths[2], got)
	assert.Equal(t, 3, strings.Count(out.String(), "Invalid selection"))
}

func TestSelectSnapshotInputClosed(t *testing.T) {
	r, _ := promptRunner("nope\n")

	_, err := r.SelectSnapshot(promptPaths)
	assert.Error(t, err)
}

func TestTitleClearedLogin(t *testing.T) {
	assert.False(t, titleClearedLogin("ログイン | Some Bank"))
	assert.False(t, titleClearedLogin("二要素認証"))
	assert.False(t, titleClearedLogin("本人認証サービス"))
	assert.True(t, titleClearedLogin("お客さまトップページ"))
	assert.True(t, titleClearedLogin(""))
}
