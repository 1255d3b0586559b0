package credstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords(signCount int64) []*webauthn.Credential {
	return []*webauthn.Credential{
		{
			CredentialID:         "dGVzdGNyZWQxMjM0NTY3OA==",
			IsResidentCredential: true,
			RpID:                 "example.co.jp",
			PrivateKey:           "BASE64KEY==",
			UserHandle:           "dXNlcg==",
			SignCount:            signCount,
		},
		{
			CredentialID:         "c2Vjb25kY3JlZA==",
			IsResidentCredential: true,
			RpID:                 "example.co.jp",
			PrivateKey:           "QU5PVEhFUktFWQ==",
			UserHandle:           "dXNlcjI=",
			SignCount:            signCount + 7,
		},
	}
}

// fixedClock makes Save produce deterministic, distinct filenames.
func fixedClock(s *Store, start time.Time) {
	t := start
	s.now = func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestSaveAndLoadLatestRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "credentials"))
	fixedClock(s, time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))

	want := testRecords(12)
	path, err := s.Save(want)
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := s.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveTwiceLatestWins(t *testing.T) {
	s := New(t.TempDir())
	fixedClock(s, time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))

	first, err := s.Save(testRecords(1))
	require.NoError(t, err)
	second, err := s.Save(testRecords(2))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	paths, err := s.List()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, second, paths[0], "listing is newest first")

	got, err := s.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, testRecords(2), got)
}

func TestLoadLatestEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))

	_, err := s.LoadLatest()
	assert.ErrorIs(t, err, ErrNoSnapshots)
	assert.False(t, s.Exists())

	paths, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestExists(t *testing.T) {
	s := New(t.TempDir())
	fixedClock(s, time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))
	assert.False(t, s.Exists())

	_, err := s.Save(testRecords(0))
	require.NoError(t, err)
	assert.True(t, s.Exists())
}

func TestExplicitPathRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	fixedClock(s, time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))

	// Other snapshots in the directory must not affect explicit-path reads.
	_, err := s.Save(testRecords(99))
	require.NoError(t, err)

	path := filepath.Join(dir, "0000-chosen.json")
	want := testRecords(3)
	require.NoError(t, WriteSnapshot(path, want))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteSnapshotReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, WriteSnapshot(path, testRecords(1)))
	require.NoError(t, WriteSnapshot(path, testRecords(2)[:1]))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].SignCount)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0 && data[len(data)-1] == '\n', "snapshot ends with newline")
}

func TestReadSnapshotParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := ReadSnapshot(path)
	assert.Error(t, err)
}

func TestListIgnoresNonSnapshots(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o700))

	paths, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestCheckSignCounts(t *testing.T) {
	before := testRecords(10)

	t.Run("increase accepted", func(t *testing.T) {
		after := testRecords(11)
		assert.NoError(t, CheckSignCounts(before, after))
	})

	t.Run("equal accepted", func(t *testing.T) {
		assert.NoError(t, CheckSignCounts(before, testRecords(10)))
	})

	t.Run("regression rejected", func(t *testing.T) {
		after := testRecords(9)
		assert.ErrorIs(t, CheckSignCounts(before, after), ErrSignCountRegressed)
	})

	t.Run("unknown credential ignored", func(t *testing.T) {
		after := []*webauthn.Credential{{CredentialID: "bmV3", SignCount: 0}}
		assert.NoError(t, CheckSignCounts(before, after))
	})
}
