package television

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// CLIOptions is the flag surface, parsed by go-flags.
type CLIOptions struct {
	OptHelp    bool `short:"h" long:"help" description:"show this help message and exit"`
	OptVersion bool `long:"version" description:"print the version and exit"`

	// data
	OptSourceCommand   string `long:"source-command" description:"command whose stdout provides the candidate entries"`
	OptSourceDisplay   string `long:"source-display" description:"template rendering an entry for display"`
	OptSourceOutput    string `long:"source-output" description:"template rendering an entry for output on confirm"`
	OptSourceDelimiter string `long:"source-entry-delimiter" description:"entry delimiter in the source stream (\\n default, \\0 for NUL)"`
	OptANSI            bool   `long:"ansi" description:"keep ANSI styling from the source in the result list"`

	// preview
	OptPreviewCommand  string `long:"preview-command" description:"command producing the preview for the focused entry"`
	OptPreviewHeader   string `long:"preview-header" description:"template for the preview panel header"`
	OptPreviewFooter   string `long:"preview-footer" description:"template for the preview panel footer"`
	OptPreviewOffset   string `long:"preview-offset" description:"template producing the initial preview scroll offset"`
	OptPreviewSize     *int   `long:"preview-size" description:"preview panel size as a percentage (1..99)"`
	OptPreviewBorder   string `long:"preview-border" description:"preview panel border style"`
	OptPreviewPadding  *int   `long:"preview-padding" description:"preview panel padding in cells"`
	OptPreviewWordWrap bool   `long:"preview-word-wrap" description:"wrap long preview lines"`
	OptNoPreview       bool   `long:"no-preview" description:"disable the preview panel entirely"`
	OptHidePreview     bool   `long:"hide-preview" description:"start with the preview panel hidden"`
	OptShowPreview     bool   `long:"show-preview" description:"start with the preview panel shown"`

	// ui
	OptUIScale       *int   `long:"ui-scale" description:"percentage of the terminal the interface uses (0..100)"`
	OptLayout        string `long:"layout" description:"panel layout: landscape or portrait"`
	OptInline        bool   `long:"inline" description:"render inline at the cursor row instead of fullscreen"`
	OptHeight        int    `long:"height" description:"rows used in inline mode"`
	OptWidth         int    `long:"width" description:"columns used in inline mode"`
	OptInput         string `long:"input" description:"initial query string"`
	OptInputHeader   string `long:"input-header" description:"header line above the input bar"`
	OptNoHelpPanel   bool   `long:"no-help-panel" description:"disable the help panel"`
	OptHideHelpPanel bool   `long:"hide-help-panel" description:"start with the help panel hidden"`
	OptShowHelpPanel bool   `long:"show-help-panel" description:"start with the help panel shown"`
	OptNoStatusBar   bool   `long:"no-status-bar" description:"disable the status bar"`
	OptHideStatusBar bool   `long:"hide-status-bar" description:"start with the status bar hidden"`
	OptShowStatusBar bool   `long:"show-status-bar" description:"start with the status bar shown"`
	OptNoRemote      bool   `long:"no-remote" description:"disable the remote control"`
	OptHideRemote    bool   `long:"hide-remote" description:"start with the remote control hidden"`
	OptShowRemote    bool   `long:"show-remote" description:"start with the remote control shown"`

	// matching
	OptExact     bool `long:"exact" description:"match query atoms as exact substrings instead of fuzzily"`
	OptTake1     bool `long:"take-1" description:"non-interactive: print the best match once the source is done"`
	OptTake1Fast bool `long:"take-1-fast" description:"non-interactive: print the best match from the first batch"`
	OptSelect1   bool `long:"select-1" description:"select automatically when exactly one entry matches"`

	// behavior
	OptWatch          float64 `long:"watch" description:"reload the source every N seconds"`
	OptExpect         string  `long:"expect" description:"comma-separated keys that confirm and print their own name first"`
	OptGlobalHistory  bool    `long:"global-history" description:"use one query history across all channels"`
	OptNoCachePreview bool    `long:"no-cache-preview" description:"re-run the preview command on every request"`

	// config
	OptConfigFile         string `long:"config-file" description:"path to the configuration file"`
	OptCableDir           string `long:"cable-dir" description:"path to the channel prototype directory"`
	OptAutocompletePrompt string `long:"autocomplete-prompt" description:"prompt line to parse for shell autocomplete integration"`
	OptForce              bool   `long:"force" description:"overwrite existing files (update-channels)"`
}

// parse parses argv and returns the remaining positional arguments:
// [subcommand|channel] [working_directory].
func (options *CLIOptions) parse(argv []string) ([]string, error) {
	p := flags.NewParser(options, flags.PassDoubleDash)
	args, err := p.ParseArgs(argv[1:])
	if err != nil {
		return nil, errors.Wrap(err, "invalid command line options")
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return args, nil
}

// Validate checks flag values whose constraints go-flags cannot express.
func (options CLIOptions) Validate() error {
	if v := options.OptLayout; v != "" && v != "landscape" && v != "portrait" {
		return errors.Errorf("unknown layout %q: must be landscape or portrait", v)
	}
	if v := options.OptPreviewSize; v != nil && (*v < 1 || *v > 99) {
		return errors.New("--preview-size must be within 1..99")
	}
	if v := options.OptUIScale; v != nil && (*v < 0 || *v > 100) {
		return errors.New("--ui-scale must be within 0..100")
	}
	if options.OptHeight < 0 || options.OptWidth < 0 {
		return errors.New("--height and --width must not be negative")
	}
	if options.OptWatch < 0 {
		return errors.New("--watch must not be negative")
	}
	if options.OptTake1 && options.OptTake1Fast {
		return errors.New("--take-1 and --take-1-fast are mutually exclusive")
	}
	return nil
}

// help generates the usage text from the struct tags.
func (options CLIOptions) help() []byte {
	var buf bytes.Buffer

	fmt.Fprint(&buf, `
Usage: tv [options] [channel] [working_directory]
       tv init <shell>
       tv list-channels
       tv update-channels [--force]

Options:
`)

	t := reflect.TypeFor[CLIOptions]()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag

		var o string
		if s := tag.Get("short"); s != "" {
			o = fmt.Sprintf("-%s, --%s", s, tag.Get("long"))
		} else {
			o = fmt.Sprintf("--%s", tag.Get("long"))
		}

		desc := tag.Get("description")
		if strings.Contains(desc, "\n") {
			desc = strings.ReplaceAll(desc, "\n", "\n                          ")
		}
		fmt.Fprintf(&buf, "  %-24s %s\n", o, desc)
	}

	return buf.Bytes()
}
