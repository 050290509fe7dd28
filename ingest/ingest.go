// Package ingest executes the active source command and streams its
// stdout into the matcher: one subprocess per channel, lines split on the
// channel's entry delimiter, decoded lossily, batched, and injected.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/television/television/entry"
	"github.com/television/television/internal/ansi"
	"github.com/television/television/internal/util"
)

// MaxEntryBytes caps a single source line. Longer lines are truncated and
// flagged, never dropped.
const MaxEntryBytes = 64 * 1024

// Batch hand-off bounds: a batch goes to the sink when it accumulates
// this many bytes or this much time passes, whichever comes first.
const (
	batchBytes    = 8 * 1024
	batchInterval = 16 * time.Millisecond
)

// State of the ingestor.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Sink receives entry batches; the matcher implements it.
type Sink interface {
	Inject([]*entry.Entry)
	Reset() uint64
}

// NoticeKind classifies ingestor notifications delivered to the core.
type NoticeKind int

const (
	NoticeStateChange NoticeKind = iota
	NoticeSpawnFailed
	NoticeExitNonZero
)

// Notice is an out-of-band event for the core: state transitions, spawn
// failures, non-zero exits.
type Notice struct {
	Kind   NoticeKind
	State  State
	Err    error
	Status int
}

// Options configures an Ingestor for one channel.
type Options struct {
	Commands  []string // ordered source command list; cycleable
	Display   entry.Template
	Output    entry.Template
	Delimiter string // entry delimiter; first byte is used; "\n" default
	ANSI      bool // keep ANSI styling in display
	Env       []string
	Dir       string
	MaxBytes  int // per-entry cap; defaults to MaxEntryBytes
	SkipEmpty bool
}

// Ingestor manages the source subprocess for a channel.
type Ingestor struct {
	mutex   sync.Mutex
	opts    Options
	idgen   *entry.IDGen
	sink    Sink
	notify  func(Notice)
	current int // index into opts.Commands
	state   State
	cancel  context.CancelFunc
	done    chan struct{} // closed when the current stream ends
}

// New creates an Ingestor. notify must not block; the core submits hub
// actions from it.
func New(opts Options, sink Sink, notify func(Notice)) *Ingestor {
	if opts.Delimiter == "" {
		opts.Delimiter = "\n"
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = MaxEntryBytes
	}
	if opts.Display == nil {
		opts.Display = entry.Identity{}
	}
	if opts.Output == nil {
		opts.Output = entry.Identity{}
	}
	return &Ingestor{
		opts:   opts,
		idgen:  entry.NewIDGen(),
		sink:   sink,
		notify: notify,
		state:  Idle,
	}
}

// State returns the current ingestor state.
func (ig *Ingestor) State() State {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()
	return ig.state
}

// Command returns the active source command line.
func (ig *Ingestor) Command() string {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()
	if len(ig.opts.Commands) == 0 {
		return ""
	}
	return ig.opts.Commands[ig.current]
}

// Start spawns the active source command and begins streaming. The pool
// is not cleared; use Reload for that.
func (ig *Ingestor) Start(ctx context.Context) error {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()
	return ig.startLocked(ctx)
}

func (ig *Ingestor) startLocked(ctx context.Context) error {
	if len(ig.opts.Commands) == 0 {
		return errors.New("channel has no source command")
	}

	cmdline := ig.opts.Commands[ig.current]
	cctx, cancel := context.WithCancel(ctx)

	cmd := util.Shell(cctx, cmdline)
	if len(ig.opts.Env) > 0 {
		cmd.Env = ig.opts.Env
	}
	cmd.Dir = ig.opts.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return errors.Wrap(err, "failed to get stdout pipe")
	}

	if err := cmd.Start(); err != nil {
		cancel()
		ig.setStateLocked(Failed)
		ig.emit(Notice{Kind: NoticeSpawnFailed, Err: err})
		return errors.Wrapf(err, "failed to spawn source command %q", cmdline)
	}

	if pdebug.Enabled {
		pdebug.Printf("ingest: spawned %q (pid %d)", cmdline, cmd.Process.Pid)
	}
	log.WithField("command", cmdline).Debug("source started")

	ig.cancel = cancel
	ig.done = make(chan struct{})
	ig.setStateLocked(Loading)

	go ig.stream(cctx, cmd, stdout, ig.done)
	return nil
}

// stream reads the child's stdout until EOF or cancellation. It runs on
// its own goroutine; the OS pipe buffer provides natural backpressure on
// the child.
func (ig *Ingestor) stream(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, done chan struct{}) {
	defer close(done)

	b := newBatcher(ig.sink, batchBytes, batchInterval)
	defer b.close()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), ig.opts.MaxBytes+bufio.MaxScanTokenSize)
	scanner.Split(splitOn(ig.opts.Delimiter[0]))

	var read int
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw := scanner.Bytes()
		truncated := false
		if len(raw) > ig.opts.MaxBytes {
			raw = raw[:ig.opts.MaxBytes]
			truncated = true
		}

		text := entry.Sanitize(raw)
		if ig.opts.SkipEmpty && len(bytes.TrimSpace([]byte(text))) == 0 {
			continue
		}

		e := ig.makeEntry(text, truncated)
		b.add(e, len(text))
		read++
	}

	b.flush()

	err := cmd.Wait()
	if ctx.Err() != nil {
		// Cancelled: the exit status is ours, not the command's fault
		return
	}

	if pdebug.Enabled {
		pdebug.Printf("ingest: stream done, %d entries", read)
	}

	if err != nil {
		status, _ := exitStatus(err)
		log.WithField("status", status).Warn("source command exited non-zero")
		ig.setState(Ready)
		ig.emit(Notice{Kind: NoticeExitNonZero, Status: status, Err: err})
		return
	}
	ig.setState(Ready)
}

// makeEntry builds an Entry from one sanitized source line, honoring the
// channel's ANSI mode: styling is either converted to spans or stripped,
// never interpreted.
func (ig *Ingestor) makeEntry(text string, truncated bool) *entry.Entry {
	id := ig.idgen.Next()
	if ig.opts.ANSI {
		parsed := ansi.Parse(text)
		e := entry.New(id, text, stripped{parsed.Stripped}, ig.opts.Output, truncated)
		e.SetSpans(parsed.Attrs)
		return e
	}
	raw := ansi.Strip(text)
	return entry.New(id, raw, ig.opts.Display, ig.opts.Output, truncated)
}

// stripped is a Template that ignores raw and returns pre-parsed text.
type stripped struct{ s string }

func (t stripped) Render(string) string { return t.s }

// Reload aborts the current child, clears the pool (bumping the epoch)
// and starts the active command again.
func (ig *Ingestor) Reload(ctx context.Context) error {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()

	ig.stopLocked()
	ig.sink.Reset()
	return ig.startLocked(ctx)
}

// CycleSource advances to the next source command and reloads.
func (ig *Ingestor) CycleSource(ctx context.Context) error {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()

	if len(ig.opts.Commands) > 1 {
		ig.current = (ig.current + 1) % len(ig.opts.Commands)
	}
	ig.stopLocked()
	ig.sink.Reset()
	return ig.startLocked(ctx)
}

// Stop aborts the child and returns the ingestor to Idle.
func (ig *Ingestor) Stop() {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()
	ig.stopLocked()
	ig.setStateLocked(Idle)
}

func (ig *Ingestor) stopLocked() {
	if ig.cancel != nil {
		ig.cancel()
		ig.cancel = nil
	}
	if ig.done != nil {
		// Wait for the stream goroutine to let go of the sink before the
		// caller resets it.
		ig.mutex.Unlock()
		<-ig.done
		ig.mutex.Lock()
		ig.done = nil
	}
}

// Done reports a channel closed when the current stream finishes. Nil if
// nothing is running.
func (ig *Ingestor) Done() <-chan struct{} {
	ig.mutex.Lock()
	defer ig.mutex.Unlock()
	return ig.done
}

func (ig *Ingestor) setState(s State) {
	ig.mutex.Lock()
	ig.setStateLocked(s)
	ig.mutex.Unlock()
}

func (ig *Ingestor) setStateLocked(s State) {
	if ig.state == s {
		return
	}
	ig.state = s
	ig.emit(Notice{Kind: NoticeStateChange, State: s})
}

func (ig *Ingestor) emit(n Notice) {
	if ig.notify != nil {
		ig.notify(n)
	}
}

// splitOn returns a bufio.SplitFunc for a single-byte delimiter. A final
// unterminated token is still produced.
func splitOn(delim byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, delim); i >= 0 {
			return i + 1, dropCR(data[:i], delim), nil
		}
		if atEOF {
			return len(data), dropCR(data, delim), nil
		}
		return 0, nil, nil
	}
}

// dropCR strips a trailing carriage return when splitting on newlines.
func dropCR(data []byte, delim byte) []byte {
	if delim == '\n' && len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}
	return data
}

func exitStatus(err error) (int, bool) {
	type exitCoder interface{ ExitCode() int }
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode(), true
	}
	return 1, false
}
