package channels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filesChannel = `metadata:
  name: files
  description: Search files
  requirements:
    - sh
source:
  command: "find . -type f"
  output: "{}"
  entry_delimiter: "\n"
preview:
  command: "cat {}"
  offset: "0"
  cached: true
ui:
  layout: landscape
  preview_panel:
    size: 50
    scrollbar: true
keybindings:
  ctrl-r: reload
  ctrl-o:
    - toggle-preview
    - reload
actions:
  edit:
    command: "vi {}"
    mode: external
`

func TestParseBasics(t *testing.T) {
	p, err := Parse([]byte(filesChannel))
	require.NoError(t, err)

	assert.Equal(t, "files", p.Metadata.Name)
	assert.Equal(t, []string{"find . -type f"}, p.Source.Command.Commands())
	assert.Equal(t, []string{"cat {}"}, p.Preview.Command.Commands())
	assert.Equal(t, 50, p.UI.PreviewPanel.Size)
	assert.True(t, p.CacheEnabled())
	assert.Equal(t, []string{"reload"}, p.Keybindings["ctrl-r"].Actions())
	assert.Equal(t, []string{"toggle-preview", "reload"}, p.Keybindings["ctrl-o"].Actions())
	assert.Equal(t, "external", p.Actions["edit"].Mode)
}

func TestCommandListForms(t *testing.T) {
	p, err := Parse([]byte(`metadata:
  name: multi
source:
  command:
    - "ls"
    - "ls -a"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "ls -a"}, p.Source.Command.Commands())
}

func TestRoundTrip(t *testing.T) {
	p1, err := Parse([]byte(filesChannel))
	require.NoError(t, err)

	out, err := p1.Emit()
	require.NoError(t, err)

	p2, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, p1, p2, "parse -> emit -> parse must be the identity")
}

func TestRoundTripListCommand(t *testing.T) {
	src := `metadata:
  name: multi
source:
  command:
    - "ls"
    - "ls -a"
`
	p1, err := Parse([]byte(src))
	require.NoError(t, err)
	out, err := p1.Emit()
	require.NoError(t, err)
	p2, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing name", "source:\n  command: ls\n"},
		{"bad kebab", "metadata:\n  name: Not_Kebab\nsource:\n  command: ls\n"},
		{"no source", "metadata:\n  name: empty\n"},
		{"bad size", "metadata:\n  name: sz\nsource:\n  command: ls\nui:\n  preview_panel:\n    size: 150\n"},
		{"bad layout", "metadata:\n  name: lay\nsource:\n  command: ls\nui:\n  layout: diagonal\n"},
		{"bad action mode", "metadata:\n  name: act\nsource:\n  command: ls\nactions:\n  x:\n    command: ls\n    mode: bogus\n"},
		{"action without command", "metadata:\n  name: act2\nsource:\n  command: ls\nactions:\n  x:\n    mode: external\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestCheckRequirements(t *testing.T) {
	p, err := Parse([]byte(filesChannel))
	require.NoError(t, err)
	assert.NoError(t, p.CheckRequirements(), "sh should exist")

	p.Metadata.Requirements = []string{"no-such-binary-i-hope"}
	err = p.CheckRequirements()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-binary-i-hope")
}

func TestCableScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files.yaml"), []byte(filesChannel), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("::: not yaml"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c, err := NewCable(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"files"}, c.Names(), "broken and non-yaml files are skipped")
	p, ok := c.Get("files")
	require.True(t, ok)
	assert.Equal(t, "Search files", p.Metadata.Description)

	descs := c.Descriptions()
	require.Len(t, descs, 1)
	assert.Equal(t, "files\tSearch files", descs[0])
}

func TestCableMissingDir(t *testing.T) {
	c, err := NewCable(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, c.Names())
}

func TestWritePrototype(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCable(dir)
	require.NoError(t, err)

	p, err := Parse([]byte(filesChannel))
	require.NoError(t, err)

	require.NoError(t, c.WritePrototype(p, false))
	assert.Error(t, c.WritePrototype(p, false), "refuses to overwrite without force")
	assert.NoError(t, c.WritePrototype(p, true))

	require.NoError(t, c.Rescan())
	_, ok := c.Get("files")
	assert.True(t, ok)
}
