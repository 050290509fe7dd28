package television

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/television/television/internal/util"
)

func runCLI(t *testing.T, argv ...string) (string, error) {
	t.Helper()
	t.Setenv("TELEVISION_CONFIG", t.TempDir())
	t.Setenv("TELEVISION_DATA", t.TempDir())

	tv := New()
	tv.Argv = append([]string{"tv"}, argv...)
	out := &bytes.Buffer{}
	tv.Stdout = out
	tv.Stderr = &bytes.Buffer{}
	tv.Stdin = strings.NewReader("")

	err := tv.Run(context.Background())
	return out.String(), err
}

func TestListChannels(t *testing.T) {
	confDir := t.TempDir()
	cable := filepath.Join(confDir, "cable")
	require.NoError(t, os.MkdirAll(cable, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cable, "files.yaml"), []byte(`metadata:
  name: files
source:
  command: ls
`), 0o644))

	t.Setenv("TELEVISION_DATA", t.TempDir())
	t.Setenv("TELEVISION_CONFIG", confDir)

	tv := New()
	tv.Argv = []string{"tv", "list-channels"}
	out := &bytes.Buffer{}
	tv.Stdout = out
	tv.Stderr = &bytes.Buffer{}
	tv.Stdin = strings.NewReader("")

	err := tv.Run(context.Background())
	assert.True(t, util.IsIgnorableError(err))
	assert.Equal(t, "files\n", out.String())
}

func TestUpdateChannelsWritesBuiltins(t *testing.T) {
	confDir := t.TempDir()
	t.Setenv("TELEVISION_CONFIG", confDir)
	t.Setenv("TELEVISION_DATA", t.TempDir())

	tv := New()
	tv.Argv = []string{"tv", "update-channels"}
	tv.Stdout = &bytes.Buffer{}
	tv.Stderr = &bytes.Buffer{}
	tv.Stdin = strings.NewReader("")

	err := tv.Run(context.Background())
	assert.True(t, util.IsIgnorableError(err))

	entries, err2 := os.ReadDir(filepath.Join(confDir, "cable"))
	require.NoError(t, err2)
	assert.NotEmpty(t, entries)

	// a second run without --force refuses to clobber
	tv2 := New()
	tv2.Argv = []string{"tv", "update-channels"}
	tv2.Stdout = &bytes.Buffer{}
	tv2.Stderr = &bytes.Buffer{}
	tv2.Stdin = strings.NewReader("")
	err = tv2.Run(context.Background())
	require.Error(t, err)
	assert.False(t, util.IsIgnorableError(err))

	// --force overwrites
	tv3 := New()
	tv3.Argv = []string{"tv", "update-channels", "--force"}
	tv3.Stdout = &bytes.Buffer{}
	tv3.Stderr = &bytes.Buffer{}
	tv3.Stdin = strings.NewReader("")
	assert.True(t, util.IsIgnorableError(tv3.Run(context.Background())))
}

func TestInitShell(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		out, err := runCLI(t, "init", shell)
		assert.True(t, util.IsIgnorableError(err), shell)
		assert.Contains(t, out, "tv_smart_autocomplete", shell)
	}

	_, err := runCLI(t, "init", "tcsh")
	assert.Error(t, err)
	_, err = runCLI(t, "init")
	assert.Error(t, err)
}

func TestVersionAndHelp(t *testing.T) {
	out, err := runCLI(t, "--version")
	assert.True(t, util.IsIgnorableError(err))
	assert.Contains(t, out, "television")

	out, err = runCLI(t, "--help")
	assert.True(t, util.IsIgnorableError(err))
	assert.Contains(t, out, "--source-command")
}
