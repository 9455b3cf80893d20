//go:build !unix

package frontend

import (
	"errors"
)

var ErrTerminalUnsupported = errors.New(f("terminal frontend is not supported on this platform"))

func readKeys(fd int) (keys <-chan byte, stop func(), err error) {
	err = ErrTerminalUnsupported
	return
}
