package sig

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTerminateEndsLoop(t *testing.T) {
	got := make(chan os.Signal, 1)
	h := New(func(s os.Signal) { got <- s }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Loop(ctx, cancel)
	}()

	h.sigCh <- syscall.SIGTERM

	select {
	case s := <-got:
		assert.Equal(t, syscall.SIGTERM, s)
	case <-time.After(time.Second):
		t.Fatal("termination handler never fired")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not end after a termination signal")
	}
	assert.Error(t, ctx.Err(), "loop exit must cancel the context")
}

func TestSuspendKeepsLoopAlive(t *testing.T) {
	suspended := make(chan struct{}, 1)
	h := New(func(os.Signal) {}, func() { suspended <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.Loop(ctx, cancel) }()

	h.sigCh <- syscall.SIGTSTP
	select {
	case <-suspended:
	case <-time.After(time.Second):
		t.Fatal("suspend handler never fired")
	}
	assert.NoError(t, ctx.Err(), "suspend must not end the loop")
}

func TestIsInterrupt(t *testing.T) {
	assert.True(t, IsInterrupt(syscall.SIGINT))
	assert.False(t, IsInterrupt(syscall.SIGTERM))
}
