package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var c Config
	c.Init()
	assert.Equal(t, "landscape", c.Layout)
	assert.Equal(t, DefaultFrameRate, c.FrameRate)
	assert.Equal(t, 100, c.UIScale)
	assert.NoError(t, c.Validate())
}

func TestReadFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`layout: portrait
ui_scale: 80
default_channel: files
history:
  global: true
keybindings:
  ctrl-r: reload
`), 0o644))

	var c Config
	c.Init()
	require.NoError(t, c.ReadFilename(path))

	assert.Equal(t, "portrait", c.Layout)
	assert.Equal(t, 80, c.UIScale)
	assert.Equal(t, "files", c.DefaultChannel)
	assert.True(t, c.History.Global)
	assert.Equal(t, []string{"reload"}, c.Keybindings["ctrl-r"].Actions())
	// untouched values keep their defaults
	assert.Equal(t, DefaultFrameRate, c.FrameRate)
}

func TestValidateRejectsBadValues(t *testing.T) {
	var c Config
	c.Init()
	c.Layout = "diagonal"
	assert.Error(t, c.Validate())

	c.Init()
	c.UIScale = 150
	assert.Error(t, c.Validate())
}

func TestDirsEnvOverride(t *testing.T) {
	t.Setenv("TELEVISION_CONFIG", "/tmp/tvconf")
	t.Setenv("TELEVISION_DATA", "/tmp/tvdata")

	d, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tvconf", d)

	d, err = DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tvdata", d)

	p, err := DefaultCableDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/tvconf", "cable"), p)
}

func TestHistoryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "history", "files"), HistoryPath("d", "files"))
	assert.Equal(t, filepath.Join("d", "history", "global"), HistoryPath("d", ""))
}

func TestSetupLogging(t *testing.T) {
	dir := t.TempDir()
	closer, err := SetupLogging(dir, "debug")
	require.NoError(t, err)
	defer closer.Close()

	_, err = os.Stat(filepath.Join(dir, "television.log"))
	assert.NoError(t, err)
}
