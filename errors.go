package television

import "github.com/pkg/errors"

// Exit codes per the CLI contract: 0 on selection or plain quit, 1 on
// fatal configuration / terminal errors, 130 on interrupt.
const (
	ExitOK        = 0
	ExitFatal     = 1
	ExitInterrupt = 130
)

type errIgnorable struct {
	err error
}

func (e errIgnorable) Ignorable() bool { return true }

func (e errIgnorable) Cause() error {
	return e.err
}

func (e errIgnorable) Error() string {
	return e.err.Error()
}

func makeIgnorable(err error) error {
	return &errIgnorable{err: err}
}

type errWithExitStatus struct {
	err    error
	status int
}

func (e errWithExitStatus) Error() string {
	return e.err.Error()
}

func (e errWithExitStatus) Cause() error {
	return e.err
}

func (e errWithExitStatus) ExitStatus() int {
	return e.status
}

func setExitStatus(err error, status int) error {
	return &errWithExitStatus{err: err, status: status}
}

// errConfig marks fatal startup problems: malformed config, a missing
// referenced channel, an unknown key or action name.
type errConfig struct {
	err error
}

func (e errConfig) Error() string {
	return e.err.Error()
}

func (e errConfig) Cause() error {
	return e.err
}

func (e errConfig) ExitStatus() int {
	return ExitFatal
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	return &errConfig{err: err}
}

func configErrorf(format string, args ...interface{}) error {
	return &errConfig{err: errors.Errorf(format, args...)}
}

// errCollectResults signals a confirm: the run loop winds down and the
// selected outputs are printed.
type errCollectResults struct{}

func (e errCollectResults) Error() string {
	return "collect results"
}

func (e errCollectResults) CollectResults() bool {
	return true
}

type collectResulter interface {
	CollectResults() bool
}

func isCollectResults(err error) bool {
	for err != nil {
		if v, ok := err.(collectResulter); ok {
			return v.CollectResults()
		}
		if c, ok := err.(interface{ Cause() error }); ok {
			err = c.Cause()
			continue
		}
		err = errors.Unwrap(err)
	}
	return false
}
