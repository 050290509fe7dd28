//go:build !windows

package television

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"github.com/television/television/internal/util"
	"golang.org/x/term"
)

func isTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// syscallKill stops the process after the screen is suspended, handing
// control back to the shell until fg.
func syscallKill() error {
	return syscall.Kill(os.Getpid(), syscall.SIGSTOP)
}

func shellCommand(ctx context.Context, cmdline, dir string) *exec.Cmd {
	cmd := util.Shell(ctx, cmdline)
	cmd.Dir = dir
	return cmd
}
