//go:build !windows

package cmd

import (
	"os"
	"syscall"
	"unsafe"
)

// terminalSize reports the size of the terminal on stdout, or 0, 0 when it
// cannot be determined.
func terminalSize() (cols, rows int) {
	if c, r, ok := sizeFromEnv(); ok {
		return c, r
	}

	var ws struct {
		Row, Col, Xpixel, Ypixel uint16
	}
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL,
		os.Stdout.Fd(),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(&ws)))
	if errno != 0 {
		return 0, 0
	}
	return int(ws.Col), int(ws.Row)
}
