package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-adoption-admin/internal/session"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := NewStore(path)
	require.NoError(t, err)

	// Sin archivo => tokens vacíos, sin error
	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.Empty())

	want := session.Tokens{AccessToken: "acc-1", RefreshToken: "ref-1"}
	require.NoError(t, s.Save(want))

	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Permisos restrictivos: el archivo contiene credenciales
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_ClearRemovesFileAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Save(session.Tokens{AccessToken: "a"}))
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear()) // segundo clear no falla

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestStore_CorruptFileLoadsAsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewStore(path)
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
