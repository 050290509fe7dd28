// Package sig routes OS signals into the application: termination
// signals become Quit actions, SIGWINCH-style resizes are handled by the
// screen layer, and SIGTSTP suspends the terminal.
package sig

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Handler dispatches received signals.
type Handler struct {
	onTerminate func(os.Signal)
	onSuspend   func()
	sigCh       chan os.Signal
}

// New creates a signal handler. onTerminate fires for SIGTERM, SIGINT
// and SIGHUP; onSuspend (optional) for SIGTSTP.
func New(onTerminate func(os.Signal), onSuspend func()) *Handler {
	sigs := []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP}
	if onSuspend != nil {
		sigs = append(sigs, syscall.SIGTSTP)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	return &Handler{
		onTerminate: onTerminate,
		onSuspend:   onSuspend,
		sigCh:       ch,
	}
}

// Loop listens for signals until the context is cancelled. Termination
// signals fire the handler and end the loop; suspend signals keep it
// alive.
func (h *Handler) Loop(ctx context.Context, cancel func()) error {
	defer cancel()
	defer signal.Stop(h.sigCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-h.sigCh:
			if sig == syscall.SIGTSTP {
				if h.onSuspend != nil {
					h.onSuspend()
				}
				continue
			}
			h.onTerminate(sig)
			return nil
		}
	}
}

// IsInterrupt reports whether the signal maps to exit code 130.
func IsInterrupt(sig os.Signal) bool {
	return sig == syscall.SIGINT
}
