package television

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	var o CLIOptions
	args, err := o.parse([]string{"tv",
		"--source-command", "ls",
		"--preview-command", "cat {}",
		"--preview-size", "30",
		"--layout", "portrait",
		"--exact",
		"--expect", "ctrl-e,ctrl-v",
		"--watch", "2.5",
		"files", "/tmp",
	})
	require.NoError(t, err)

	assert.Equal(t, "ls", o.OptSourceCommand)
	assert.Equal(t, "cat {}", o.OptPreviewCommand)
	require.NotNil(t, o.OptPreviewSize)
	assert.Equal(t, 30, *o.OptPreviewSize)
	assert.Equal(t, "portrait", o.OptLayout)
	assert.True(t, o.OptExact)
	assert.Equal(t, "ctrl-e,ctrl-v", o.OptExpect)
	assert.Equal(t, 2.5, o.OptWatch)
	assert.Equal(t, []string{"files", "/tmp"}, args)
}

func TestValidateRanges(t *testing.T) {
	bad := func(argv ...string) {
		var o CLIOptions
		_, err := o.parse(append([]string{"tv"}, argv...))
		assert.Error(t, err, strings.Join(argv, " "))
	}
	bad("--preview-size", "0")
	bad("--preview-size", "100")
	bad("--ui-scale", "101")
	bad("--layout", "diagonal")
	bad("--watch", "-1")
	bad("--take-1", "--take-1-fast")
}

func TestEveryNamedFlagExists(t *testing.T) {
	// The CLI surface is a compatibility contract; each flag must parse.
	flags := [][]string{
		{"--source-command", "x"}, {"--source-display", "x"}, {"--source-output", "x"},
		{"--source-entry-delimiter", "x"}, {"--ansi"},
		{"--preview-command", "x"}, {"--preview-header", "x"}, {"--preview-footer", "x"},
		{"--preview-offset", "x"}, {"--preview-size", "50"}, {"--preview-border", "x"},
		{"--preview-padding", "1"}, {"--preview-word-wrap"},
		{"--no-preview"}, {"--hide-preview"}, {"--show-preview"},
		{"--ui-scale", "50"}, {"--layout", "landscape"}, {"--inline"},
		{"--height", "20"}, {"--width", "80"}, {"--input", "q"}, {"--input-header", "h"},
		{"--no-help-panel"}, {"--hide-help-panel"}, {"--show-help-panel"},
		{"--no-status-bar"}, {"--hide-status-bar"}, {"--show-status-bar"},
		{"--no-remote"}, {"--hide-remote"}, {"--show-remote"},
		{"--exact"}, {"--take-1"}, {"--take-1-fast"}, {"--select-1"},
		{"--watch", "1"}, {"--expect", "ctrl-e"}, {"--global-history"}, {"--no-cache-preview"},
		{"--config-file", "/dev/null"}, {"--cable-dir", "/tmp"}, {"--autocomplete-prompt", "p"},
	}
	for _, f := range flags {
		var o CLIOptions
		_, err := o.parse(append([]string{"tv"}, f...))
		assert.NoError(t, err, strings.Join(f, " "))
	}
}

func TestHelpListsFlags(t *testing.T) {
	var o CLIOptions
	help := string(o.help())
	for _, flag := range []string{"--source-command", "--preview-size", "--expect", "--select-1", "--cable-dir"} {
		assert.Contains(t, help, flag)
	}
	assert.Contains(t, help, "list-channels")
	assert.Contains(t, help, "update-channels")
}
