package credfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercm/gymdesk/internal/core/session"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "nested", "credentials.json"))
}

func TestStore_load_missing_file(t *testing.T) {
	s := testStore(t)

	creds, err := s.Load()

	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestStore_save_and_load_round_trip(t *testing.T) {
	s := testStore(t)
	in := session.Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         &session.User{ID: 1, Email: "x@y.com", FirstName: "Ana"},
	}

	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStore_save_restricts_permissions(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(session.Credentials{AccessToken: "a1"}))

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_last_write_wins(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save(session.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.Save(session.Credentials{AccessToken: "a2", RefreshToken: "r1"}))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "a2", out.AccessToken)
}

func TestStore_clear(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(session.Credentials{AccessToken: "a1"}))

	require.NoError(t, s.Clear())

	creds, err := s.Load()
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	// Clearing again is a no-op.
	require.NoError(t, s.Clear())
}
