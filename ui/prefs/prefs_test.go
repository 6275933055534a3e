package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingUsesDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "none.yaml"))
	v := p.Values()
	assert.Equal(t, float32(DefaultWidth), v.WindowWidth)
	assert.Equal(t, float32(DefaultHeight), v.WindowHeight)
	assert.Empty(t, v.LastDirectory)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", prefsFile)

	p := Load(path)
	p.SetWindowSize(640, 960)
	p.SetLastDirectory(dir)
	require.NoError(t, p.SaveIfChanged())

	q := Load(path)
	assert.Equal(t, Values{WindowWidth: 640, WindowHeight: 960, LastDirectory: dir}, q.Values())
	assert.Equal(t, dir, q.LastDirectory())
}

func TestSaveIfChangedSkipsClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	p := Load(path)
	require.NoError(t, p.SaveIfChanged())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	p.SetWindowSize(0, 100)
	require.NoError(t, p.SaveIfChanged())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLastDirectoryGone(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), prefsFile))
	p.SetLastDirectory(filepath.Join(t.TempDir(), "deleted"))
	assert.Empty(t, p.LastDirectory())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("window_width: [oops"), 0o644))
	assert.Equal(t, float32(DefaultWidth), Load(path).Values().WindowWidth)
}
