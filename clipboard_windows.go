//go:build windows

package television

import "github.com/pkg/errors"

func writeClipboard(string) error {
	return errors.New("clipboard is not supported on this platform")
}
