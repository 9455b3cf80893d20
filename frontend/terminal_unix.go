//go:build unix

package frontend

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// readKeys switches fd to nonblocking mode and delivers its bytes until
// stop is called.
func readKeys(fd int) (keys <-chan byte, stop func(), err error) {
	err = unix.SetNonblock(fd, true)
	if err != nil {
		return
	}

	ch := make(chan byte, 16)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		buf := make([]byte, 16)
		for {
			select {
			case <-quit:
				return
			default:
			}

			n, err := unix.Read(fd, buf)
			for _, b := range buf[:max(n, 0)] {
				select {
				case ch <- b:
				case <-quit:
					return
				}
			}
			switch {
			case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR), err == nil && n == 0:
				time.Sleep(5 * time.Millisecond)
			case err != nil:
				return
			}
		}
	}()

	keys = ch
	stop = func() {
		close(quit)
		<-done
		_ = unix.SetNonblock(fd, false)
	}

	return
}
