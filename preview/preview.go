// Package preview runs the channel's preview command for the highlighted
// entry without ever blocking input: requests are debounced and coalesced,
// executions happen on a bounded worker pool, and results are cached per
// entry output under the current channel revision.
package preview

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/television/television/entry"
	"github.com/television/television/internal/ansi"
	"github.com/television/television/internal/util"
)

// Defaults. The debounce keeps rapid cursor movement from spawning one
// subprocess per row; the deadline keeps a wedged preview command from
// pinning a worker slot forever.
const (
	DefaultDebounce = 50 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 1024 * 1024
	DefaultWorkers  = 1
)

// Status of a preview cache entry.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

// FailKind classifies preview failures.
type FailKind int

const (
	FailNone FailKind = iota
	FailSpawn
	FailCommand
	FailTimeout
)

func (k FailKind) String() string {
	switch k {
	case FailSpawn:
		return "failed to spawn preview command"
	case FailCommand:
		return "preview command failed"
	case FailTimeout:
		return "preview command timed out"
	}
	return ""
}

// Content is the result of one preview execution.
type Content struct {
	Status    Status
	Text      string // sanitized stdout
	Stderr    string // first-line excerpt on failure
	Kind      FailKind
	Truncated bool
	Offset    int // initial scroll offset from the offset template
}

// Options configures a Previewer for one channel.
type Options struct {
	Commands []string // ordered preview command list; cycleable
	Offset   entry.Template
	Debounce time.Duration
	Timeout  time.Duration
	MaxBytes int
	Workers  int
	CacheMax int
	NoCache  bool // --no-cache-preview
	Env      []string
	Dir      string
}

type request struct {
	e   *entry.Entry
	rev uint64
}

// Previewer schedules preview executions.
type Previewer struct {
	mutex    sync.Mutex
	opts     Options
	cache    *cache
	reqCh    chan request
	onUpdate func()
	current  int // index into opts.Commands

	running map[uint64]*runningJob
	nextJob uint64
}

type runningJob struct {
	rev    uint64
	cancel context.CancelFunc
}

// New creates a Previewer. onUpdate is invoked when content lands in the
// cache; it must not block.
func New(opts Options, onUpdate func()) *Previewer {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Previewer{
		opts:     opts,
		cache:    newCache(opts.CacheMax),
		reqCh:    make(chan request, 1),
		onUpdate: onUpdate,
		running:  make(map[uint64]*runningJob),
	}
}

// Enabled reports whether the channel has a preview command at all.
func (p *Previewer) Enabled() bool {
	return len(p.opts.Commands) > 0
}

// Command returns the active preview command line.
func (p *Previewer) Command() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if len(p.opts.Commands) == 0 {
		return ""
	}
	return p.opts.Commands[p.current]
}

// CyclePreview advances to the next preview command and invalidates the
// cache for the current revision by treating it like a new one: callers
// bump the revision when cycling.
func (p *Previewer) CyclePreview() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if len(p.opts.Commands) > 1 {
		p.current = (p.current + 1) % len(p.opts.Commands)
	}
}

// Request asks for a preview of e under channel revision rev. Requests
// made during the debounce window coalesce; only the latest survives.
func (p *Previewer) Request(e *entry.Entry, rev uint64) {
	if !p.Enabled() || e == nil {
		return
	}
	req := request{e: e, rev: rev}
	for {
		select {
		case p.reqCh <- req:
			return
		default:
			select {
			case <-p.reqCh:
			default:
			}
		}
	}
}

// Get is a non-blocking cache lookup.
func (p *Previewer) Get(rev uint64, output string) (Content, bool) {
	return p.cache.get(NewKey(rev, output))
}

// CancelAllBefore aborts in-flight previews from revisions older than rev
// and purges their cache entries. Called on channel switch.
func (p *Previewer) CancelAllBefore(rev uint64) {
	p.mutex.Lock()
	for id, job := range p.running {
		if job.rev < rev {
			job.cancel()
			delete(p.running, id)
		}
	}
	p.mutex.Unlock()
	p.cache.purgeOlder(rev)
}

// Run is the previewer supervisor: it debounces requests and dispatches
// executions onto the worker pool.
func (p *Previewer) Run(ctx context.Context) {
	if pdebug.Enabled {
		g := pdebug.Marker("Previewer.Run")
		defer g.End()
	}

	slots := make(chan struct{}, p.opts.Workers)
	for i := 0; i < p.opts.Workers; i++ {
		slots <- struct{}{}
	}

	var (
		pending  *request
		debounce <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.reqCh:
			pending = &req
			debounce = time.After(p.opts.Debounce)
		case <-debounce:
			if pending == nil {
				continue
			}
			req := *pending
			pending = nil
			debounce = nil

			select {
			case <-slots:
			case <-ctx.Done():
				return
			}
			go func() {
				defer func() { slots <- struct{}{} }()
				p.execute(ctx, req)
			}()
		}
	}
}

// execute runs one preview command to completion and caches the result.
func (p *Previewer) execute(ctx context.Context, req request) {
	key := NewKey(req.rev, req.e.Output())

	if !p.opts.NoCache {
		if c, ok := p.cache.get(key); ok && c.Status != StatusPending {
			p.updated()
			return
		}
	}
	p.cache.put(key, Content{Status: StatusPending})
	p.updated()

	cmdline := p.Command()
	tmpl := entry.Placeholder{Pattern: cmdline}
	rendered := tmpl.Render(req.e.Output())

	cctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	p.mutex.Lock()
	p.nextJob++
	jobID := p.nextJob
	p.running[jobID] = &runningJob{rev: req.rev, cancel: cancel}
	p.mutex.Unlock()
	defer func() {
		p.mutex.Lock()
		delete(p.running, jobID)
		p.mutex.Unlock()
	}()

	content := p.run(cctx, rendered, req.e)

	if cctx.Err() == context.Canceled {
		// Aborted by a channel switch; clear the Pending marker so a
		// retry under the same key (if any) is possible.
		p.cache.drop(key)
		return
	}

	if p.opts.NoCache && content.Status == StatusReady {
		// Still store it (it is the only hand-off path to the draw
		// layer), but a fresh request will re-run the command.
		p.cache.put(key, content)
		p.updated()
		return
	}

	p.cache.put(key, content)
	p.updated()
}

// run spawns the preview command and captures up to MaxBytes of stdout.
func (p *Previewer) run(ctx context.Context, cmdline string, e *entry.Entry) Content {
	cmd := util.Shell(ctx, cmdline)
	if len(p.opts.Env) > 0 {
		cmd.Env = p.opts.Env
	}
	cmd.Dir = p.opts.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Content{Status: StatusFailed, Kind: FailSpawn, Stderr: firstLine(err.Error())}
	}
	var stderr strings.Builder
	cmd.Stderr = &limitWriter{w: &stderr, n: 4096}

	if err := cmd.Start(); err != nil {
		log.WithField("command", cmdline).WithError(err).Warn("preview spawn failed")
		return Content{Status: StatusFailed, Kind: FailSpawn, Stderr: firstLine(err.Error())}
	}

	buf := make([]byte, p.opts.MaxBytes+1)
	n, truncated := readUpTo(stdout, buf)
	if truncated {
		// Discard the remainder so the child is not blocked on a full
		// pipe while we wait for it.
		go func() { _, _ = io.Copy(io.Discard, stdout) }()
	}

	waitErr := cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		util.KillGroup(cmd)
		return Content{Status: StatusFailed, Kind: FailTimeout}
	}

	text := ansi.SanitizePreview(entry.Sanitize(buf[:n]))
	offset := p.offsetFor(e)

	if waitErr != nil {
		if n > 0 {
			// Partial output is better than none; surface the warning
			return Content{Status: StatusReady, Text: text, Truncated: truncated, Stderr: firstLine(stderr.String()), Offset: offset}
		}
		return Content{Status: StatusFailed, Kind: FailCommand, Stderr: firstLine(stderr.String())}
	}

	return Content{Status: StatusReady, Text: text, Truncated: truncated, Offset: offset}
}

// offsetFor renders the channel's offset template; a failed template
// defaults to 0.
func (p *Previewer) offsetFor(e *entry.Entry) int {
	if p.opts.Offset == nil {
		return 0
	}
	s := strings.TrimSpace(p.opts.Offset.Render(e.Output()))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (p *Previewer) updated() {
	if p.onUpdate != nil {
		p.onUpdate()
	}
}

// readUpTo fills buf from r; reports whether more data than len(buf)-1
// was available.
func readUpTo(r io.Reader, buf []byte) (int, bool) {
	var n int
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, false
		}
	}
	return n - 1, true
}

type limitWriter struct {
	w io.Writer
	n int
}

func (lw *limitWriter) Write(b []byte) (int, error) {
	if lw.n <= 0 {
		return len(b), nil
	}
	if len(b) > lw.n {
		_, err := lw.w.Write(b[:lw.n])
		lw.n = 0
		return len(b), errors.WithStack(err)
	}
	lw.n -= len(b)
	return lw.w.Write(b)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
