//go:build windows

package television

import (
	"context"
	"os/exec"

	"github.com/television/television/internal/util"
	"golang.org/x/term"
)

func isTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// syscallKill is a no-op on Windows; there is no SIGTSTP to resume from.
func syscallKill() error {
	return nil
}

func shellCommand(ctx context.Context, cmdline, dir string) *exec.Cmd {
	cmd := util.Shell(ctx, cmdline)
	cmd.Dir = dir
	return cmd
}
