// Package television implements the interactive engine: the state
// machine that owns all mutable application state, serializes mutations
// through the action bus, and coordinates the source ingestor, matcher,
// previewer and render loop.
package television

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/television/television/channels"
	"github.com/television/television/config"
	"github.com/television/television/entry"
	"github.com/television/television/frecency"
	"github.com/television/television/hub"
	"github.com/television/television/ingest"
	"github.com/television/television/matcher"
	"github.com/television/television/picker"
	"github.com/television/television/preview"
	"github.com/television/television/query"
	"github.com/television/television/render"
	"github.com/television/television/sig"
	"github.com/television/television/ui"
)

const version = "v0.1.0"

// Television is the application: one instance per run.
type Television struct {
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	opts   CLIOptions
	args   []string
	config config.Config
	cable  *channels.Cable

	dataDir string
	workdir string

	screen  ui.Screen
	styles  *ui.StyleSet
	bus     *hub.Hub[Action]
	renders *render.Loop
	keymap  Keymap

	// state below is owned by the state task; the render loop reads it
	// under stateMu when assembling frames
	stateMu sync.Mutex
	mode    Mode
	scope   *scope
	overlay *scope

	revision atomic.Uint64 // channel version counter

	features      ui.Features
	layout        ui.LayoutType
	uiScale       int
	previewSize   int
	prompt        string
	inputHeader   string
	previewScroll int

	frec        *frecency.Store
	history     *query.History
	historyPath string

	expectKeys    []string
	expectPressed string
	outputs       []string
	emitQuery     bool

	banner      string
	bannerUntil time.Time
	spinnerIdx  int

	uiMutex sync.Mutex
	lastUI  ui.Result

	selectOne bool // --select-1
	takeOne   bool // --take-1
	takeFast  bool // --take-1-fast
	exact     bool // --exact

	logCloser  io.Closer
	cancelFunc func()
	err        error
	readyCh    chan struct{}

	// test hooks
	skipScreen bool
}

// New creates a Television wired to the process environment.
func New() *Television {
	return &Television{
		Argv:    os.Args,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		bus:     hub.New[Action](),
		styles:  ui.DefaultStyles(),
		readyCh: make(chan struct{}),
		uiScale: 100,
		layout:  ui.Landscape,
	}
}

// Ready is closed once the engine is accepting input.
func (t *Television) Ready() <-chan struct{} {
	return t.readyCh
}

// Err returns the error the run ended with.
func (t *Television) Err() error {
	return t.err
}

// Exit ends the run with err.
func (t *Television) Exit(ctx context.Context, err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Television.Exit (err = %v)", err)
		defer g.End()
	}
	t.err = err
	if cf := t.cancelFunc; cf != nil {
		cf()
	}
}

// Bus exposes the action bus for subsystems and tests.
func (t *Television) Bus() *hub.Hub[Action] {
	return t.bus
}

// Setup parses the command line, loads configuration and the cable, and
// resolves the starting channel. Config problems are fatal here, before
// the terminal is touched.
func (t *Television) Setup(ctx context.Context) error {
	if pdebug.Enabled {
		g := pdebug.Marker("Television.Setup")
		defer g.End()
	}

	remaining, err := t.opts.parse(t.Argv)
	if err != nil {
		return configError(err)
	}
	t.args = remaining

	if t.opts.OptHelp {
		_, _ = t.Stdout.Write(t.opts.help())
		return makeIgnorable(errors.New("help requested"))
	}
	if t.opts.OptVersion {
		fmt.Fprintf(t.Stdout, "television %s\n", version)
		return makeIgnorable(errors.New("version requested"))
	}

	t.config.Init()
	if err := t.readConfigFile(); err != nil {
		return configError(err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return configError(err)
	}
	t.dataDir = dataDir

	if t.logCloser == nil {
		if closer, err := config.SetupLogging(dataDir, t.config.Log.Level); err == nil {
			t.logCloser = closer
		} else {
			config.DisableLogging()
		}
	}

	cableDir := t.opts.OptCableDir
	if cableDir == "" {
		cableDir = t.config.CableDir
	}
	if cableDir == "" {
		if cableDir, err = config.DefaultCableDir(); err != nil {
			return configError(err)
		}
	}
	cable, err := channels.NewCable(cableDir)
	if err != nil {
		return configError(err)
	}
	t.cable = cable

	if done, err := t.runSubcommand(); done {
		return err
	}

	if err := t.applyConfig(); err != nil {
		return err
	}

	km, err := NewKeymap(t.config.Keybindings)
	if err != nil {
		return err
	}
	t.keymap = km

	return nil
}

func (t *Television) readConfigFile() error {
	path := t.opts.OptConfigFile
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(p); statErr != nil {
			return nil // no user config is fine
		}
		path = p
	}
	return t.config.ReadFilename(path)
}

// applyConfig merges config and CLI options into engine state.
func (t *Television) applyConfig() error {
	if v := t.config.Layout; v != "" {
		t.layout = ui.LayoutType(v)
	}
	if v := t.opts.OptLayout; v != "" {
		if !ui.IsValidLayoutType(v) {
			return configErrorf("unknown layout %q", v)
		}
		t.layout = ui.LayoutType(v)
	}

	t.uiScale = t.config.UIScale
	if t.opts.OptUIScale != nil {
		if *t.opts.OptUIScale < 0 || *t.opts.OptUIScale > 100 {
			return configErrorf("--ui-scale must be within 0..100")
		}
		t.uiScale = *t.opts.OptUIScale
	}

	t.features = ui.Features{
		Preview: true,
		Status:  true,
		Remote:  true,
	}
	applyToggle(&t.features.Preview, t.opts.OptNoPreview || t.opts.OptHidePreview, t.opts.OptShowPreview)
	applyToggle(&t.features.Status, t.opts.OptNoStatusBar || t.opts.OptHideStatusBar, t.opts.OptShowStatusBar)
	applyToggle(&t.features.Help, t.opts.OptNoHelpPanel || t.opts.OptHideHelpPanel, t.opts.OptShowHelpPanel)
	applyToggle(&t.features.Remote, t.opts.OptNoRemote || t.opts.OptHideRemote, t.opts.OptShowRemote)

	t.prompt = ">"
	t.inputHeader = t.opts.OptInputHeader

	t.selectOne = t.opts.OptSelect1
	t.takeOne = t.opts.OptTake1
	t.takeFast = t.opts.OptTake1Fast
	t.exact = t.opts.OptExact

	if t.opts.OptExpect != "" {
		for _, k := range splitCommaList(t.opts.OptExpect) {
			t.expectKeys = append(t.expectKeys, k)
		}
	}

	if len(t.args) > 1 {
		t.workdir = t.args[1]
		if st, err := os.Stat(t.workdir); err != nil || !st.IsDir() {
			return configErrorf("working directory %q does not exist", t.workdir)
		}
	}

	if t.opts.OptPreviewSize != nil {
		if *t.opts.OptPreviewSize < 1 || *t.opts.OptPreviewSize > 99 {
			return configErrorf("--preview-size must be within 1..99")
		}
		t.previewSize = *t.opts.OptPreviewSize
	}

	return nil
}

func applyToggle(target *bool, off, on bool) {
	if off {
		*target = false
	}
	if on {
		*target = true
	}
}

// resolvePrototype decides which channel to load first: an ad-hoc
// channel built from --source-command, the positional channel name, or
// the configured default.
func (t *Television) resolvePrototype() (*channels.Prototype, error) {
	if t.opts.OptSourceCommand != "" {
		return t.adhocPrototype(), nil
	}

	name := ""
	if len(t.args) > 0 {
		name = t.args[0]
	}
	if name == "" {
		name = t.config.DefaultChannel
	}
	if name == "" {
		if !isTty(t.Stdin) {
			// stdin is piped: an implicit ad-hoc channel reading it
			return t.stdinPrototype(), nil
		}
		return nil, configErrorf("no channel given and no default_channel configured")
	}

	proto, ok := t.cable.Get(name)
	if !ok {
		return nil, configErrorf("unknown channel %q (cable dir %s)", name, t.cable.Dir())
	}
	return proto, nil
}

// adhocPrototype builds a channel from the --source-* / --preview-*
// flags alone.
func (t *Television) adhocPrototype() *channels.Prototype {
	p := &channels.Prototype{}
	p.Metadata.Name = "custom"
	p.Source.Command = channels.NewCommandList(t.opts.OptSourceCommand)
	p.Source.Display = t.opts.OptSourceDisplay
	p.Source.Output = t.opts.OptSourceOutput
	p.Source.EntryDelimiter = t.opts.OptSourceDelimiter
	p.Source.ANSI = t.opts.OptANSI
	if t.opts.OptPreviewCommand != "" {
		p.Preview.Command = channels.NewCommandList(t.opts.OptPreviewCommand)
		p.Preview.Header = t.opts.OptPreviewHeader
		p.Preview.Footer = t.opts.OptPreviewFooter
		p.Preview.Offset = t.opts.OptPreviewOffset
	}
	if t.opts.OptWatch > 0 {
		p.Source.Watch = t.opts.OptWatch
	}
	return p
}

// stdinPrototype reads candidates from the inherited stdin via cat.
func (t *Television) stdinPrototype() *channels.Prototype {
	p := &channels.Prototype{}
	p.Metadata.Name = "stdin"
	p.Source.Command = channels.NewCommandList("cat /dev/stdin")
	if t.opts.OptPreviewCommand != "" {
		p.Preview.Command = channels.NewCommandList(t.opts.OptPreviewCommand)
	}
	return p
}

// loadChannel tears down the current scope (if any) and builds a fresh
// one for proto: new revision, new matcher, new ingestor, new previewer.
func (t *Television) loadChannel(ctx context.Context, proto *channels.Prototype) error {
	if err := proto.CheckRequirements(); err != nil {
		// ChannelLoadError: recoverable when a channel is already up
		if t.scope != nil {
			t.setBanner(err.Error(), 5*time.Second)
			return nil
		}
		return configError(err)
	}

	rev := t.revision.Add(1)

	if err := t.keymap.ApplyChannel(proto, t.expectKeys); err != nil {
		if t.scope != nil {
			t.setBanner(err.Error(), 5*time.Second)
			return nil
		}
		return err
	}

	if old := t.scope; old != nil {
		old.stop()
		if old.previewer != nil {
			old.previewer.CancelAllBefore(rev)
		}
	}

	sctx, cancel := context.WithCancel(ctx)

	sc := &scope{
		proto:    proto,
		revision: rev,
		picker:   picker.New(),
		query:    query.New(),
		caret:    &query.Caret{},
		cancel:   cancel,
		loading:  true,
	}

	var opts []matcher.Option
	opts = append(opts, matcher.WithUpdateFunc(t.submitSnapshotUpdate))
	if t.config.Frecency.Enabled {
		store, err := frecency.Load(config.FrecencyPath(t.dataDir), proto.Metadata.Name)
		if err == nil {
			t.frec = store
			opts = append(opts, matcher.WithBias(store))
		} else {
			log.WithError(err).Warn("frecency store unavailable")
		}
	}
	sc.matcher = matcher.New(opts...)
	go sc.matcher.Run(sctx)

	sc.ingestor = ingest.New(ingest.Options{
		Commands:  proto.Source.Command.Commands(),
		Display:   templateFor(proto.Source.Display),
		Output:    templateFor(proto.Source.Output),
		Delimiter: t.sourceDelimiter(proto),
		ANSI:      proto.Source.ANSI || t.opts.OptANSI,
		Dir:       t.workdir,
	}, sc.matcher, t.submitIngestNotice)

	if !proto.Preview.Command.IsEmpty() && t.features.Preview {
		popts := preview.Options{
			Commands: proto.Preview.Command.Commands(),
			Dir:      t.workdir,
			NoCache:  t.opts.OptNoCachePreview || !proto.CacheEnabled(),
			Workers:  t.config.Preview.Workers,
			CacheMax: t.config.Preview.CacheBytes,
		}
		if proto.Preview.Offset != "" {
			popts.Offset = entry.Placeholder{Pattern: proto.Preview.Offset}
		}
		if t.config.Preview.DebounceMs > 0 {
			popts.Debounce = time.Duration(t.config.Preview.DebounceMs) * time.Millisecond
		}
		sc.previewer = preview.New(popts, t.submitPreviewUpdate)
		go sc.previewer.Run(sctx)
	}

	if w := t.watchInterval(proto); w > 0 {
		sc.watcher = ingest.NewWatcher(w, func() {
			_ = t.bus.Submit(namedAction("reload"))
		})
		sc.watcher.Start(sctx)
	}

	t.scope = sc
	t.mode = ModeChannel
	t.previewScroll = 0
	t.expectPressed = ""
	t.loadHistory(proto.Metadata.Name)
	t.applyChannelUI(proto)

	gen := sc.query.Set(t.opts.OptInput)
	sc.caret.SetPos(len([]rune(t.opts.OptInput)))
	sc.matcher.SetQuery(sc.query.String(), gen, t.exact)

	if err := sc.ingestor.Start(sctx); err != nil {
		log.WithError(err).Error("source spawn failed")
		t.setBanner("failed to start source: "+err.Error(), 5*time.Second)
	}

	t.dirty()
	return nil
}

func (t *Television) sourceDelimiter(proto *channels.Prototype) string {
	if t.opts.OptSourceDelimiter != "" {
		return unescapeDelimiter(t.opts.OptSourceDelimiter)
	}
	if proto.Source.EntryDelimiter != "" {
		return unescapeDelimiter(proto.Source.EntryDelimiter)
	}
	return "\n"
}

func (t *Television) watchInterval(proto *channels.Prototype) time.Duration {
	secs := proto.Source.Watch
	if t.opts.OptWatch > 0 {
		secs = t.opts.OptWatch
	}
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// applyChannelUI layers the channel's UI defaults under the CLI flags.
func (t *Television) applyChannelUI(proto *channels.Prototype) {
	if v := proto.UI.Layout; v != "" && t.opts.OptLayout == "" {
		t.layout = ui.LayoutType(v)
	}
	if t.previewSize == 0 {
		if v := proto.UI.PreviewPanel.Size; v != 0 {
			t.previewSize = v
		}
	}
	if t.inputHeader == "" {
		t.inputHeader = proto.UI.InputHeader
	}
	f := proto.UI.Features
	if f.PreviewVisible != nil && !cliTouchedPreview(t.opts) {
		t.features.Preview = *f.PreviewVisible
	}
	if f.StatusVisible != nil && !cliTouchedStatus(t.opts) {
		t.features.Status = *f.StatusVisible
	}
	if f.HelpVisible != nil && !cliTouchedHelp(t.opts) {
		t.features.Help = *f.HelpVisible
	}
	if f.RemoteVisible != nil && !cliTouchedRemote(t.opts) {
		t.features.Remote = *f.RemoteVisible
	}
}

func (t *Television) loadHistory(channel string) {
	if t.config.History.Global || t.opts.OptGlobalHistory {
		channel = ""
	}
	t.historyPath = config.HistoryPath(t.dataDir, channel)
	h, err := query.LoadHistory(t.historyPath, t.config.History.Limit)
	if err != nil {
		log.WithError(err).Warn("history unavailable")
		h = query.NewHistory(t.config.History.Limit)
	}
	t.history = h
}

// Run is the whole interactive session: setup, the task swarm, the state
// loop, teardown, and the stdout contract.
func (t *Television) Run(ctx context.Context) (err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Television.Run")
		defer g.End()
	}

	var readyOnce sync.Once
	defer readyOnce.Do(func() { close(t.readyCh) })

	if err := t.Setup(ctx); err != nil {
		return err
	}

	proto, err := t.resolvePrototype()
	if err != nil {
		return err
	}

	var cancelOnce sync.Once
	ctx, rawCancel := context.WithCancel(ctx)
	cancel := func() { cancelOnce.Do(rawCancel) }
	defer cancel()
	t.cancelFunc = cancel

	// terminal acquisition; restore is unconditional
	if t.screen == nil {
		t.screen = t.newScreen()
	}
	if !t.skipScreen {
		if err := t.screen.Init(); err != nil {
			return setExitStatus(errors.Wrap(err, "failed to acquire terminal"), ExitFatal)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			t.screen.Close()
			panic(r)
		}
		t.screen.Close()
	}()

	sigH := sig.New(func(s os.Signal) {
		code := ExitOK
		if sig.IsInterrupt(s) {
			code = ExitInterrupt
		}
		t.Exit(ctx, setExitStatus(errors.New("received signal: "+s.String()), code))
	}, t.suspend)
	go func() { _ = sigH.Loop(ctx, cancel) }()

	t.renders = render.New(t.screen, t.styles, t.config.FrameRate, t.buildFrame, t.submitUIState)
	go t.renders.Run(ctx)

	go t.inputLoop(ctx)

	t.stateMu.Lock()
	err = t.loadChannel(ctx, proto)
	t.stateMu.Unlock()
	if err != nil {
		return err
	}

	if t.cable != nil {
		if err := t.cable.Watch(func() { _ = t.bus.Submit(ActionFunc(func(context.Context, *Television) {})) }); err != nil {
			log.WithError(err).Debug("cable watcher unavailable")
		}
		defer t.cable.StopWatch()
	}

	readyOnce.Do(func() { close(t.readyCh) })
	t.dirty()

	t.stateLoop(ctx)

	// teardown: subordinate tasks see the cancel; subprocesses die with
	// their process groups
	cancel()
	if t.scope != nil {
		t.scope.stop()
	}
	if t.overlay != nil {
		t.overlay.stop()
	}
	t.bus.Close()
	t.persistState()
	if t.logCloser != nil {
		_ = t.logCloser.Close()
	}

	t.screen.Close()
	t.printResults()

	if t.err != nil && !isCollectResults(t.err) {
		return t.err
	}
	return nil
}

// stateLoop drains the bus and applies actions in order: the single
// place application state mutates.
func (t *Television) stateLoop(ctx context.Context) {
	for {
		if !t.bus.Wait(ctx) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		actions := t.bus.Drain(config.DefaultTick)
		t.stateMu.Lock()
		for _, a := range actions {
			a.Execute(ctx, t)
			if ctx.Err() != nil {
				t.stateMu.Unlock()
				return
			}
		}
		// preview requests derive from where the selection ended up
		// after the whole tick, coalescing flicker
		t.requestPreviewForSelection()
		t.maybeAutoSelect(ctx)
		t.stateMu.Unlock()
	}
}

// requestPreviewForSelection asks the previewer for the entry that is
// highlighted now.
func (t *Television) requestPreviewForSelection() {
	sc := t.scope
	if sc == nil || sc.previewer == nil || !t.features.Preview || t.overlay != nil {
		return
	}
	e := sc.picker.Current(sc.snapshot())
	if e == nil {
		return
	}
	sc.previewer.Request(e, sc.revision)
}

// maybeAutoSelect services --select-1, --take-1 and --take-1-fast.
func (t *Television) maybeAutoSelect(ctx context.Context) {
	sc := t.scope
	if sc == nil || t.overlay != nil {
		return
	}
	if !t.selectOne && !t.takeOne && !t.takeFast {
		return
	}

	s := sc.snapshot()
	ready := sc.ingestor.State() == ingest.Ready && s.Complete && s.TotalPool == sc.matcher.Pool().Size()

	switch {
	case t.selectOne:
		if ready && s.TotalMatched == 1 {
			t.confirm(ctx)
		}
	case t.takeOne:
		if ready && s.TotalMatched > 0 {
			t.confirm(ctx)
		}
	case t.takeFast:
		if s.TotalMatched > 0 {
			t.confirm(ctx)
		}
	}
}

// confirm resolves the outputs per the stdout contract and ends the run.
func (t *Television) confirm(ctx context.Context) {
	sc := t.active()
	if sc == nil {
		return
	}
	s := sc.snapshot()

	switch t.mode {
	case ModeRemote:
		e := sc.picker.Current(s)
		t.leaveOverlay()
		if e != nil {
			if proto, ok := t.cable.Get(e.Output()); ok {
				if err := t.loadChannel(ctx, proto); err != nil {
					t.Exit(ctx, err)
				}
			}
		}
		t.dirty()
		return
	case ModeActionPicker:
		e := sc.picker.Current(s)
		t.leaveOverlay()
		if e != nil {
			t.runChannelAction(ctx, e.Output())
		}
		t.dirty()
		return
	}

	outputs := sc.picker.Confirm(s)
	if len(outputs) == 0 {
		if t.config.FallthroughOnEmpty {
			t.emitQuery = true
			t.Exit(ctx, errCollectResults{})
		}
		return
	}

	if t.frec != nil {
		for _, e := range sc.picker.ConfirmedEntries(s) {
			t.frec.Bump(e.Output())
		}
	}
	if t.history != nil {
		t.history.Push(sc.query.String())
	}

	t.outputs = outputs
	t.Exit(ctx, errCollectResults{})
}

// confirmWithExpect is confirm via an --expect chord: the key name is
// printed first.
func (t *Television) confirmWithExpect(ctx context.Context, keyName string) {
	t.expectPressed = keyName
	t.confirm(ctx)
}

// runChannelAction executes one declared channel action.
func (t *Television) runChannelAction(ctx context.Context, name string) {
	sc := t.scope
	if sc == nil || sc.proto == nil {
		return
	}
	spec, ok := sc.proto.Actions[name]
	if !ok {
		return
	}

	e := sc.picker.Current(sc.snapshot())
	out := ""
	if e != nil {
		out = e.Output()
	}
	cmdline := entry.Placeholder{Pattern: spec.Command}.Render(out)

	switch spec.Mode {
	case "switch":
		if proto, ok := t.cable.Get(cmdline); ok {
			if err := t.loadChannel(ctx, proto); err != nil {
				t.Exit(ctx, err)
			}
			return
		}
		t.setBanner("unknown channel "+cmdline, 3*time.Second)
	case "emit":
		if out != "" {
			t.outputs = []string{cmdline}
			t.Exit(ctx, errCollectResults{})
		}
	default: // external
		go func() {
			cmd := shellCommand(ctx, cmdline, t.workdir)
			if err := cmd.Run(); err != nil {
				log.WithField("action", name).WithError(err).Warn("channel action failed")
			}
		}()
	}
}

// printResults writes the stdout contract after the terminal is
// restored: expect key first if one was used, then outputs, or the raw
// query on fall-through.
func (t *Television) printResults() {
	var buf bytes.Buffer

	if t.emitQuery {
		if sc := t.scope; sc != nil {
			buf.WriteString(sc.query.String())
			buf.WriteByte('\n')
		}
	} else if len(t.outputs) > 0 {
		if t.expectPressed != "" {
			buf.WriteString(t.expectPressed)
			buf.WriteByte('\n')
		}
		for _, out := range t.outputs {
			buf.WriteString(out)
			buf.WriteByte('\n')
		}
	}

	if buf.Len() > 0 {
		_, _ = t.Stdout.Write(buf.Bytes())
	}
}

// persistState saves history and frecency; failures are logged, never
// fatal.
func (t *Television) persistState() {
	if t.history != nil && t.historyPath != "" {
		if err := t.history.Save(t.historyPath); err != nil {
			log.WithError(err).Warn("failed to save history")
		}
	}
	if t.frec != nil {
		if err := t.frec.Save(); err != nil {
			log.WithError(err).Warn("failed to save frecency store")
		}
	}
}

func (t *Television) newScreen() ui.Screen {
	if t.opts.OptInline || t.opts.OptHeight > 0 {
		h := t.opts.OptHeight
		if h <= 0 {
			h = 15
		}
		return ui.NewInline(h, t.config.Mouse)
	}
	return ui.NewFullscreen(t.config.Mouse)
}

// suspend hands the terminal back to the shell on SIGTSTP.
func (t *Television) suspend() {
	if err := t.screen.Suspend(); err != nil {
		return
	}
	_ = syscallKill()
	_ = t.screen.Resume()
	t.dirty()
}

// dirty requests a redraw.
func (t *Television) dirty() {
	if t.renders != nil {
		t.renders.Request()
	}
}

func (t *Television) setBanner(msg string, d time.Duration) {
	t.banner = msg
	t.bannerUntil = time.Now().Add(d)
	t.dirty()
}

// submitSnapshotUpdate runs on the matcher worker; it must not touch
// state directly.
func (t *Television) submitSnapshotUpdate() {
	_ = t.bus.Submit(ActionFunc(func(_ context.Context, t *Television) {
		if sc := t.active(); sc != nil {
			sc.picker.Sync(sc.snapshot())
		}
		t.dirty()
	}))
}

// submitPreviewUpdate runs on a preview worker.
func (t *Television) submitPreviewUpdate() {
	_ = t.bus.Submit(ActionFunc(func(_ context.Context, t *Television) {
		t.dirty()
	}))
}

// submitIngestNotice converts ingestor events into state mutations.
func (t *Television) submitIngestNotice(n ingest.Notice) {
	_ = t.bus.Submit(ActionFunc(func(_ context.Context, t *Television) {
		sc := t.scope
		switch n.Kind {
		case ingest.NoticeStateChange:
			if sc != nil {
				sc.loading = n.State == ingest.Loading
				if n.State == ingest.Ready && sc.watcher != nil {
					sc.watcher.ReloadDone()
				}
			}
		case ingest.NoticeSpawnFailed:
			t.setBanner("failed to spawn source: "+firstLineOf(n.Err), 5*time.Second)
		case ingest.NoticeExitNonZero:
			t.setBanner(fmt.Sprintf("source exited with status %d", n.Status), 5*time.Second)
		}
		t.dirty()
	}))
}

// submitUIState feeds render-layer layout facts back into the core.
func (t *Television) submitUIState(r ui.Result) {
	t.uiMutex.Lock()
	t.lastUI = r
	t.uiMutex.Unlock()
	_ = t.bus.Submit(ActionFunc(func(_ context.Context, t *Television) {
		if sc := t.active(); sc != nil && r.ResultRows > 0 {
			sc.picker.SetHeight(r.ResultRows)
		}
	}))
}

func cliTouchedPreview(o CLIOptions) bool {
	return o.OptNoPreview || o.OptHidePreview || o.OptShowPreview
}

func cliTouchedStatus(o CLIOptions) bool {
	return o.OptNoStatusBar || o.OptHideStatusBar || o.OptShowStatusBar
}

func cliTouchedHelp(o CLIOptions) bool {
	return o.OptNoHelpPanel || o.OptHideHelpPanel || o.OptShowHelpPanel
}

func cliTouchedRemote(o CLIOptions) bool {
	return o.OptNoRemote || o.OptHideRemote || o.OptShowRemote
}

func firstLineOf(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

func templateFor(pattern string) entry.Template {
	if pattern == "" || pattern == "{}" {
		return entry.Identity{}
	}
	return entry.Placeholder{Pattern: pattern}
}

func unescapeDelimiter(s string) string {
	switch s {
	case `\n`:
		return "\n"
	case `\0`:
		return "\x00"
	case `\t`:
		return "\t"
	}
	return s
}

func splitCommaList(s string) []string {
	var out []string
	for _, p := range bytes.Split([]byte(s), []byte{','}) {
		v := string(bytes.TrimSpace(p))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isTty(r io.Reader) bool {
	type fder interface{ Fd() uintptr }
	f, ok := r.(fder)
	if !ok {
		return false
	}
	return isTerminal(int(f.Fd()))
}
