package television

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/television/television/channels"
)

// runSubcommand services the non-interactive entry points. Returns done
// = true when the invocation was a subcommand and the run should end.
func (t *Television) runSubcommand() (bool, error) {
	if len(t.args) == 0 {
		return false, nil
	}

	switch t.args[0] {
	case "list-channels":
		for _, name := range t.cable.Names() {
			fmt.Fprintln(t.Stdout, name)
		}
		return true, makeIgnorable(errors.New("list-channels done"))

	case "update-channels":
		if err := t.updateChannels(t.opts.OptForce); err != nil {
			return true, configError(err)
		}
		return true, makeIgnorable(errors.New("update-channels done"))

	case "init":
		if len(t.args) < 2 {
			return true, configErrorf("init requires a shell name (bash, zsh, fish)")
		}
		snippet, err := shellInit(t.args[1], t.opts.OptAutocompletePrompt)
		if err != nil {
			return true, configError(err)
		}
		fmt.Fprint(t.Stdout, snippet)
		return true, makeIgnorable(errors.New("init done"))
	}

	return false, nil
}

// updateChannels installs the builtin prototypes into the cable dir.
func (t *Television) updateChannels(force bool) error {
	for _, p := range builtinPrototypes() {
		if err := t.cable.WritePrototype(p, force); err != nil {
			return err
		}
	}
	return t.cable.Rescan()
}

// shellInit emits the shell integration snippet binding tv to the smart
// keybinding for the given shell.
func shellInit(shell, prompt string) (string, error) {
	if prompt == "" {
		prompt = "tv"
	}
	switch shell {
	case "bash":
		return fmt.Sprintf(`# television shell integration
tv_smart_autocomplete() {
  local output
  output=$(%s --autocomplete-prompt "$READLINE_LINE")
  if [ -n "$output" ]; then
    READLINE_LINE="$READLINE_LINE$output"
    READLINE_POINT=${#READLINE_LINE}
  fi
}
bind -x '"\C-t": tv_smart_autocomplete'
`, prompt), nil
	case "zsh":
		return fmt.Sprintf(`# television shell integration
_tv_smart_autocomplete() {
  local output
  output=$(%s --autocomplete-prompt "$BUFFER")
  if [ -n "$output" ]; then
    LBUFFER="$BUFFER$output"
    zle reset-prompt
  fi
}
zle -N _tv_smart_autocomplete
bindkey '^T' _tv_smart_autocomplete
`, prompt), nil
	case "fish":
		return fmt.Sprintf(`# television shell integration
function tv_smart_autocomplete
  set -l output (%s --autocomplete-prompt (commandline))
  if test -n "$output"
    commandline -i $output
  end
end
bind \ct tv_smart_autocomplete
`, prompt), nil
	}
	return "", errors.Errorf("unsupported shell %q (bash, zsh and fish are supported)", shell)
}

// builtinPrototypes are the channels shipped with the binary, installed
// by update-channels.
func builtinPrototypes() []*channels.Prototype {
	files := &channels.Prototype{}
	files.Metadata.Name = "files"
	files.Metadata.Description = "Search files under the working directory"
	files.Source.Command = channels.NewCommandList("find . -type f")
	files.Preview.Command = channels.NewCommandList("cat {}")
	files.UI.PreviewPanel.Size = 50

	dirs := &channels.Prototype{}
	dirs.Metadata.Name = "dirs"
	dirs.Metadata.Description = "Search directories under the working directory"
	dirs.Source.Command = channels.NewCommandList("find . -type d")
	dirs.Preview.Command = channels.NewCommandList("ls -la {}")

	env := &channels.Prototype{}
	env.Metadata.Name = "env"
	env.Metadata.Description = "Search environment variables"
	env.Source.Command = channels.NewCommandList("env")
	env.Source.Display = "{}"
	env.Preview.Command = channels.NewCommandList(`printf '%s' "{}"`)

	return []*channels.Prototype{files, dirs, env}
}
