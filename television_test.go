package television

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/television/television/ui"
)

type testRun struct {
	tv     *Television
	screen *ui.MockScreen
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	done   chan error
}

func startTV(t *testing.T, argv ...string) *testRun {
	t.Helper()
	t.Setenv("TELEVISION_CONFIG", t.TempDir())
	t.Setenv("TELEVISION_DATA", t.TempDir())

	r := &testRun{
		tv:     New(),
		screen: ui.NewMockScreen(80, 24),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		done:   make(chan error, 1),
	}
	r.tv.Argv = append([]string{"tv"}, argv...)
	r.tv.Stdout = r.stdout
	r.tv.Stderr = r.stderr
	r.tv.Stdin = strings.NewReader("")
	r.tv.screen = r.screen

	go func() { r.done <- r.tv.Run(context.Background()) }()

	select {
	case <-r.tv.Ready():
	case err := <-r.done:
		t.Fatalf("run ended during startup: %v", err)
	}
	return r
}

// waitScreen polls until some screen line satisfies the predicate.
func (r *testRun) waitScreen(t *testing.T, pred func(string) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, h := r.screen.Size()
		for y := 0; y < h; y++ {
			if pred(r.screen.Line(y)) {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("screen never matched; line 0: %q", r.screen.Line(0))
}

func (r *testRun) typeString(s string) {
	for _, ch := range s {
		r.screen.SendKey(tcell.KeyRune, ch, tcell.ModNone)
	}
}

func (r *testRun) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
		return nil
	}
}

func TestScenarioSimpleFuzzy(t *testing.T) {
	r := startTV(t, "--source-command", `printf 'apple\napricot\nbanana\nblueberry\n'`)

	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "4 / 4") })
	r.typeString("ap")
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "2 / 4") })

	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)
	require.NoError(t, r.wait(t))
	assert.Equal(t, "apple\n", r.stdout.String())
	assert.Empty(t, r.stderr.String(), "diagnostics never mix with selection output")
}

func TestScenarioNegation(t *testing.T) {
	r := startTV(t, "--source-command", `printf 'apple\napricot\nbanana\nblueberry\n'`)

	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "4 / 4") })
	r.typeString("!ap")
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "2 / 4") })

	r.screen.SendKey(tcell.KeyDown, 0, tcell.ModNone)
	time.Sleep(50 * time.Millisecond)
	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)
	require.NoError(t, r.wait(t))
	assert.Equal(t, "blueberry\n", r.stdout.String())
}

func TestScenarioSelectOne(t *testing.T) {
	r := startTV(t,
		"--source-command", `printf 'foo.rs\nfoo.txt\nbar.rs\n'`,
		"--input", "^foo .rs$",
		"--select-1",
	)

	require.NoError(t, r.wait(t))
	assert.Equal(t, "foo.rs\n", r.stdout.String(), "--select-1 exits on its own with the single match")
}

func TestScenarioExpectKey(t *testing.T) {
	r := startTV(t,
		"--source-command", `printf 'file.txt\n'`,
		"--expect", "ctrl-e,ctrl-v",
	)

	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "1 / 1") })
	r.screen.SendKey(tcell.KeyCtrlE, 0, tcell.ModCtrl)
	require.NoError(t, r.wait(t))
	assert.Equal(t, "ctrl-e\nfile.txt\n", r.stdout.String())
}

func TestScenarioReloadUnderQuery(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(src, []byte("a\nb\n"), 0o644))

	r := startTV(t, "--source-command", "cat "+src)
	r.typeString("b")
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "1 / 2") })

	require.NoError(t, os.WriteFile(src, []byte("c\nd\n"), 0o644))
	r.screen.SendKey(tcell.KeyCtrlR, 0, tcell.ModCtrl)
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "0 / 2") })

	// confirm on empty results without fall-through: nothing happens
	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, r.stdout.String())

	r.screen.SendKey(tcell.KeyEscape, 0, tcell.ModNone)
	require.NoError(t, r.wait(t))
	assert.Empty(t, r.stdout.String(), "no stdout on quit without confirm")
}

func TestQuitWithoutSelection(t *testing.T) {
	r := startTV(t, "--source-command", `printf 'a\n'`)
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "1 / 1") })
	r.screen.SendKey(tcell.KeyEscape, 0, tcell.ModNone)
	require.NoError(t, r.wait(t), "quitting with no selection exits 0")
	assert.Empty(t, r.stdout.String())
}

func TestFallthroughOnEmpty(t *testing.T) {
	confDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.yaml"),
		[]byte("fallthrough_on_empty: true\n"), 0o644))
	t.Setenv("TELEVISION_CONFIG", confDir)
	t.Setenv("TELEVISION_DATA", t.TempDir())

	r := &testRun{
		tv:     New(),
		screen: ui.NewMockScreen(80, 24),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		done:   make(chan error, 1),
	}
	r.tv.Argv = []string{"tv", "--source-command", `printf 'aaa\n'`}
	r.tv.Stdout = r.stdout
	r.tv.Stderr = r.stderr
	r.tv.Stdin = strings.NewReader("")
	r.tv.screen = r.screen
	go func() { r.done <- r.tv.Run(context.Background()) }()
	<-r.tv.Ready()

	r.typeString("zzz")
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "0 / 1") })
	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)
	require.NoError(t, r.wait(t))
	assert.Equal(t, "zzz\n", r.stdout.String(), "empty results with fall-through print the raw query")
}

func TestMultiSelectConfirm(t *testing.T) {
	r := startTV(t, "--source-command", `printf 'one\ntwo\nthree\n'`)
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "3 / 3") })

	// tab selects and moves down; select "one" then "two"
	r.screen.SendKey(tcell.KeyTab, 0, tcell.ModNone)
	r.screen.SendKey(tcell.KeyTab, 0, tcell.ModNone)
	time.Sleep(50 * time.Millisecond)
	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)

	require.NoError(t, r.wait(t))
	assert.Equal(t, "one\ntwo\n", r.stdout.String(), "multi-selected outputs print in insertion order")
}

func TestUnknownChannelIsConfigError(t *testing.T) {
	t.Setenv("TELEVISION_CONFIG", t.TempDir())
	t.Setenv("TELEVISION_DATA", t.TempDir())

	tv := New()
	tv.Argv = []string{"tv", "no-such-channel"}
	tv.Stdout = &bytes.Buffer{}
	tv.Stderr = &bytes.Buffer{}
	tv.Stdin = strings.NewReader("")
	tv.screen = ui.NewMockScreen(80, 24)

	err := tv.Run(context.Background())
	require.Error(t, err)
	var ec interface{ ExitStatus() int }
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, ExitFatal, ec.ExitStatus())
}

func TestExpectConflictFailsAtLoad(t *testing.T) {
	confDir := t.TempDir()
	cable := filepath.Join(confDir, "cable")
	require.NoError(t, os.MkdirAll(cable, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cable, "x.yaml"), []byte(`metadata:
  name: x
source:
  command: "printf 'a\\n'"
keybindings:
  ctrl-e: reload
`), 0o644))
	t.Setenv("TELEVISION_CONFIG", confDir)
	t.Setenv("TELEVISION_DATA", t.TempDir())

	tv := New()
	tv.Argv = []string{"tv", "--expect", "ctrl-e", "x"}
	tv.Stdout = &bytes.Buffer{}
	tv.Stderr = &bytes.Buffer{}
	tv.Stdin = strings.NewReader("")
	tv.screen = ui.NewMockScreen(80, 24)

	err := tv.Run(context.Background())
	require.Error(t, err, "expect/keybinding conflicts are reported at load time")
	assert.Contains(t, err.Error(), "conflict")
}

func TestPrintResultsContract(t *testing.T) {
	tv := New()
	out := &bytes.Buffer{}
	tv.Stdout = out

	tv.outputs = []string{"a", "b"}
	tv.printResults()
	assert.Equal(t, "a\nb\n", out.String())

	out.Reset()
	tv.expectPressed = "ctrl-e"
	tv.printResults()
	assert.Equal(t, "ctrl-e\na\nb\n", out.String())

	out.Reset()
	tv.outputs = nil
	tv.expectPressed = ""
	tv.printResults()
	assert.Empty(t, out.String())
}

func TestRemoteControlSwitchesChannel(t *testing.T) {
	confDir := t.TempDir()
	cable := filepath.Join(confDir, "cable")
	require.NoError(t, os.MkdirAll(cable, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cable, "letters.yaml"), []byte(`metadata:
  name: letters
  description: letters
source:
  command: "printf 'x\\ny\\n'"
`), 0o644))
	t.Setenv("TELEVISION_CONFIG", confDir)
	t.Setenv("TELEVISION_DATA", t.TempDir())

	r := &testRun{
		tv:     New(),
		screen: ui.NewMockScreen(80, 24),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		done:   make(chan error, 1),
	}
	r.tv.Argv = []string{"tv", "--source-command", `printf 'orig\n'`}
	r.tv.Stdout = r.stdout
	r.tv.Stderr = r.stderr
	r.tv.Stdin = strings.NewReader("")
	r.tv.screen = r.screen
	go func() { r.done <- r.tv.Run(context.Background()) }()
	<-r.tv.Ready()

	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "1 / 1") })

	// ctrl-t opens the remote control listing the cable
	r.screen.SendKey(tcell.KeyCtrlT, 0, tcell.ModCtrl)
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "channel>") })
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "letters") })

	// confirm loads the chosen channel
	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)
	r.waitScreen(t, func(l string) bool { return strings.Contains(l, "2 / 2") })

	r.screen.SendKey(tcell.KeyEnter, 0, tcell.ModNone)
	require.NoError(t, r.wait(t))
	assert.Equal(t, "x\n", r.stdout.String())
}
