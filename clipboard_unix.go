//go:build !windows

package television

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// writeClipboard copies text via OSC 52, which works through SSH and
// terminal multiplexers without an X/Wayland dependency. The tty is
// acquired lazily on first copy.
func writeClipboard(s string) error {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrap(err, "failed to open tty")
	}
	defer tty.Close()

	_, err = fmt.Fprintf(tty, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(s)))
	return errors.Wrap(err, "failed to write clipboard sequence")
}
