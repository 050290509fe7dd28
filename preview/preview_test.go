package preview

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/television/television/entry"
)

func mkEntry(raw string) *entry.Entry {
	return entry.New(0, raw, entry.Identity{}, entry.Identity{}, false)
}

func startPreviewer(t *testing.T, opts Options) (*Previewer, *atomic.Int32) {
	t.Helper()
	var updates atomic.Int32
	p := New(opts, func() { updates.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go p.Run(ctx)
	return p, &updates
}

func waitContent(t *testing.T, p *Previewer, rev uint64, output string) Content {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c, ok := p.Get(rev, output); ok && c.Status != StatusPending {
			return c
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("no preview content for %q", output)
	return Content{}
}

func TestBasicPreview(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`printf '%s' {}`},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, StatusReady, c.Status)
	assert.Equal(t, "x", c.Text)
	assert.False(t, c.Truncated)
}

func TestCacheHitSkipsExecution(t *testing.T) {
	dir := t.TempDir()
	p, _ := startPreviewer(t, Options{
		// the command appends to a counter file so re-execution is visible
		Commands: []string{`echo run >> ` + dir + `/count; printf '%s' {}`},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	waitContent(t, p, 1, "x")
	p.Request(mkEntry("x"), 1)
	time.Sleep(100 * time.Millisecond)

	c, ok := p.Get(1, "x")
	require.True(t, ok)
	assert.Equal(t, "x", c.Text)
	assert.Equal(t, 1, countLines(t, dir+"/count"), "cached preview must not re-run the command")
}

func TestChannelRevisionInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	p, _ := startPreviewer(t, Options{
		Commands: []string{`echo run >> ` + dir + `/count; printf '%s' {}`},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	waitContent(t, p, 1, "x")

	// New channel revision: same output text, fresh execution
	p.CancelAllBefore(2)
	_, ok := p.Get(1, "x")
	assert.False(t, ok, "old revision entries are purged")

	p.Request(mkEntry("x"), 2)
	waitContent(t, p, 2, "x")
	assert.Equal(t, 2, countLines(t, dir+"/count"), "a new channel revision must execute a fresh preview")
}

func TestCoalescingKeepsLatest(t *testing.T) {
	dir := t.TempDir()
	p, _ := startPreviewer(t, Options{
		Commands: []string{`echo {} >> ` + dir + `/log; printf '%s' {}`},
		Debounce: 30 * time.Millisecond,
	})

	// burst of cursor movement within one debounce window
	for _, s := range []string{"a", "b", "c", "d"} {
		p.Request(mkEntry(s), 1)
	}
	waitContent(t, p, 1, "d")

	assert.Equal(t, 1, countLines(t, dir+"/log"), "only the latest request survives the debounce")
	_, ok := p.Get(1, "a")
	assert.False(t, ok)
}

func TestFailureCached(t *testing.T) {
	dir := t.TempDir()
	p, _ := startPreviewer(t, Options{
		Commands: []string{`echo run >> ` + dir + `/count; echo broken >&2; exit 3`},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, StatusFailed, c.Status)
	assert.Equal(t, FailCommand, c.Kind)
	assert.Equal(t, "broken", c.Stderr)

	p.Request(mkEntry("x"), 1)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, countLines(t, dir+"/count"), "failures are cached; a broken preview is not re-run")
}

func TestNonZeroExitWithOutputIsPartialReady(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`printf 'partial'; echo oops >&2; exit 1`},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, StatusReady, c.Status)
	assert.Equal(t, "partial", c.Text)
	assert.Equal(t, "oops", c.Stderr)
}

func TestTruncation(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`printf '%01000d' 7`},
		Debounce: time.Millisecond,
		MaxBytes: 100,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, StatusReady, c.Status)
	assert.True(t, c.Truncated)
	assert.Len(t, c.Text, 100)
}

func TestTimeout(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`sleep 60`},
		Debounce: time.Millisecond,
		Timeout:  50 * time.Millisecond,
	})

	start := time.Now()
	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, StatusFailed, c.Status)
	assert.Equal(t, FailTimeout, c.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOffsetTemplate(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`printf 'content'`},
		Offset:   entry.Placeholder{Pattern: "42"},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, 42, c.Offset)
}

func TestOffsetTemplateFailureDefaultsToZero(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`printf 'content'`},
		Offset:   entry.Placeholder{Pattern: "not-a-number"},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Zero(t, c.Offset)
}

func TestSanitizedOutput(t *testing.T) {
	p, _ := startPreviewer(t, Options{
		Commands: []string{`printf '\033[2J\033[31mred\033[0m'`},
		Debounce: time.Millisecond,
	})

	p.Request(mkEntry("x"), 1)
	c := waitContent(t, p, 1, "x")
	assert.Equal(t, "\x1b[31mred\x1b[0m", c.Text, "screen clears are removed, SGR preserved")
}

func TestCacheLRUEviction(t *testing.T) {
	c := newCache(300)
	big := make([]byte, 100)
	for i := range big {
		big[i] = 'a'
	}

	for i := 0; i < 4; i++ {
		c.put(NewKey(1, string(rune('a'+i))), Content{Status: StatusReady, Text: string(big)})
	}
	assert.Less(t, c.len(), 4, "cache must evict past its byte bound")

	// the most recent key survives
	_, ok := c.get(NewKey(1, "d"))
	assert.True(t, ok)
}

func TestCacheKeyByOutputNotRaw(t *testing.T) {
	k1 := NewKey(1, "file:12")
	k2 := NewKey(1, "file:12")
	k3 := NewKey(1, "file:13")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}
