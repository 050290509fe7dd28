// Package channels loads and models channel prototypes: the declarative
// bundles describing a source command, preview, templates, keybindings
// and UI defaults. Prototypes are immutable at runtime; loading one into
// the core bumps the channel revision.
package channels

import (
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Prototype is one channel definition, as read from a cable file.
type Prototype struct {
	Metadata Metadata `yaml:"metadata"`
	Source   Source   `yaml:"source"`
	Preview  Preview  `yaml:"preview,omitempty"`
	UI       UI       `yaml:"ui,omitempty"`

	// Keybindings map a chord to one action name or an action list.
	Keybindings map[string]ActionList `yaml:"keybindings,omitempty"`

	// Shortcuts are channel-wide chord assignments active across modes.
	Shortcuts map[string]string `yaml:"shortcuts,omitempty"`

	// Actions are named commands the action picker can execute.
	Actions map[string]ActionSpec `yaml:"actions,omitempty"`
}

type Metadata struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Requirements []string `yaml:"requirements,omitempty"`
}

type Source struct {
	Command        CommandList `yaml:"command"`
	Display        string      `yaml:"display,omitempty"`
	Output         string      `yaml:"output,omitempty"`
	EntryDelimiter string      `yaml:"entry_delimiter,omitempty"`
	ANSI           bool        `yaml:"ansi,omitempty"`
	Watch          float64     `yaml:"watch,omitempty"` // seconds
}

type Preview struct {
	Command CommandList `yaml:"command,omitempty"`
	Header  string      `yaml:"header,omitempty"`
	Footer  string      `yaml:"footer,omitempty"`
	Offset  string      `yaml:"offset,omitempty"`
	Cached  *bool       `yaml:"cached,omitempty"`
}

type UI struct {
	Layout       string       `yaml:"layout,omitempty"` // landscape | portrait
	UIScale      int          `yaml:"ui_scale,omitempty"`
	InputHeader  string       `yaml:"input_header,omitempty"`
	PreviewPanel PreviewPanel `yaml:"preview_panel,omitempty"`
	Features     Features     `yaml:"features,omitempty"`
}

type PreviewPanel struct {
	Size      int    `yaml:"size,omitempty"` // percentage 1..99
	Scrollbar bool   `yaml:"scrollbar,omitempty"`
	Border    string `yaml:"border,omitempty"`
	Padding   int    `yaml:"padding,omitempty"`
	WordWrap  bool   `yaml:"word_wrap,omitempty"`
}

type Features struct {
	PreviewVisible *bool `yaml:"preview,omitempty"`
	HelpVisible    *bool `yaml:"help,omitempty"`
	StatusVisible  *bool `yaml:"status_bar,omitempty"`
	RemoteVisible  *bool `yaml:"remote,omitempty"`
}

// ActionSpec is one declared channel action.
type ActionSpec struct {
	Command string `yaml:"command"`
	Mode    string `yaml:"mode,omitempty"` // switch | external | emit
}

// CommandList is a string-or-list YAML value. A list means the commands
// are cycleable. Marshalling preserves the original shape so a prototype
// round-trips.
type CommandList struct {
	commands []string
	wasList  bool
}

// NewCommandList builds a command list; more than one command marshals
// as a YAML list.
func NewCommandList(cmds ...string) CommandList {
	return CommandList{commands: cmds, wasList: len(cmds) > 1}
}

func (c CommandList) Commands() []string {
	return c.commands
}

func (c CommandList) IsEmpty() bool {
	return len(c.commands) == 0
}

// IsZero lets omitempty fields skip only empty lists; without it the
// encoder treats the struct (no exported fields) as always empty.
func (c CommandList) IsZero() bool {
	return len(c.commands) == 0
}

func (c *CommandList) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err == nil {
		c.commands = []string{s}
		c.wasList = false
		return nil
	}
	var list []string
	if err := yaml.Unmarshal(b, &list); err != nil {
		return errors.Wrap(err, "command must be a string or a list of strings")
	}
	c.commands = list
	c.wasList = true
	return nil
}

func (c CommandList) MarshalYAML() (interface{}, error) {
	if c.wasList {
		return c.commands, nil
	}
	if len(c.commands) == 0 {
		return nil, nil
	}
	return c.commands[0], nil
}

// ActionList is a string-or-list of action names bound to one chord.
type ActionList struct {
	actions []string
	wasList bool
}

func NewActionList(names ...string) ActionList {
	return ActionList{actions: names, wasList: len(names) > 1}
}

func (a ActionList) Actions() []string {
	return a.actions
}

func (a *ActionList) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err == nil {
		a.actions = []string{s}
		a.wasList = false
		return nil
	}
	var list []string
	if err := yaml.Unmarshal(b, &list); err != nil {
		return errors.Wrap(err, "keybinding must name an action or a list of actions")
	}
	a.actions = list
	a.wasList = true
	return nil
}

func (a ActionList) MarshalYAML() (interface{}, error) {
	if a.wasList {
		return a.actions, nil
	}
	if len(a.actions) == 0 {
		return nil, nil
	}
	return a.actions[0], nil
}

// Parse decodes a prototype and validates the invariants every channel
// must hold.
func Parse(b []byte) (*Prototype, error) {
	var p Prototype
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse channel prototype")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Emit serializes a prototype back to YAML. Parse(Emit(p)) is the
// identity on well-formed prototypes.
func (p *Prototype) Emit() ([]byte, error) {
	b, err := yaml.Marshal(p)
	return b, errors.Wrap(err, "failed to emit channel prototype")
}

// Validate checks the structural invariants.
func (p *Prototype) Validate() error {
	name := p.Metadata.Name
	if name == "" {
		return errors.New("channel prototype is missing metadata.name")
	}
	if !isKebabCase(name) {
		return errors.Errorf("channel name %q is not a kebab-case identifier", name)
	}
	if p.Source.Command.IsEmpty() {
		return errors.Errorf("channel %q has no source command", name)
	}
	if s := p.UI.PreviewPanel.Size; s != 0 && (s < 1 || s > 99) {
		return errors.Errorf("channel %q preview_panel.size must be within 1..99", name)
	}
	switch p.UI.Layout {
	case "", "landscape", "portrait":
	default:
		return errors.Errorf("channel %q layout must be landscape or portrait", name)
	}
	for chord, spec := range p.Actions {
		if spec.Command == "" {
			return errors.Errorf("channel %q action %q has no command", name, chord)
		}
		switch spec.Mode {
		case "", "switch", "external", "emit":
		default:
			return errors.Errorf("channel %q action %q has unknown mode %q", name, chord, spec.Mode)
		}
	}
	return nil
}

// CheckRequirements verifies that every executable the channel declares
// is present. The error lists the missing ones.
func (p *Prototype) CheckRequirements() error {
	var missing []string
	for _, bin := range p.Metadata.Requirements {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("channel %q requires missing executables: %s",
			p.Metadata.Name, strings.Join(missing, ", "))
	}
	return nil
}

// CacheEnabled reports whether preview caching is on (the default).
func (p *Prototype) CacheEnabled() bool {
	if p.Preview.Cached == nil {
		return true
	}
	return *p.Preview.Cached
}

func isKebabCase(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return len(s) > 0
}
