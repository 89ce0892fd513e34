package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := Open(path)
	require.NoError(t, err)

	v, err := s.Load(`Works\a`, "Prefix", "ec")
	require.NoError(t, err)
	require.Equal(t, "ec", v)

	require.NoError(t, s.Save(`Works\a`, "Prefix", "x"))
	require.NoError(t, s.Save(`Works\a`, "Prefix", "y"))
	require.NoError(t, s.Save(`Works\b`, "Hotkey", ""))

	v, err = s.Load(`Works\a`, "Prefix", "ec")
	require.NoError(t, err)
	require.Equal(t, "y", v)

	v, err = s.Load(`Works\b`, "Hotkey", "z")
	require.NoError(t, err)
	require.Equal(t, "", v)

	keys, err := s.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{`Works\a`, `Works\b`}, keys)
	require.NoError(t, s.Close())

	// Values survive reopening.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err = s.Load(`Works\a`, "Prefix", "ec")
	require.NoError(t, err)
	require.Equal(t, "y", v)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("k", "n", "v"))
	v, err := s.Load("k", "n", "")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
