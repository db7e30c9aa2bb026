//go:build windows

package cmd

import (
	"syscall"
	"unsafe"
)

var procGetConsoleScreenBufferInfo = syscall.NewLazyDLL("kernel32.dll").NewProc("GetConsoleScreenBufferInfo")

type consoleInfo struct {
	size, cursor             [2]int16
	attributes               int16
	left, top, right, bottom int16
	maxSize                  [2]int16
}

// terminalSize reports the size of the console on stdout, or 0, 0 when it
// cannot be determined.
func terminalSize() (cols, rows int) {
	if c, r, ok := sizeFromEnv(); ok {
		return c, r
	}

	var info consoleInfo
	ret, _, _ := procGetConsoleScreenBufferInfo.Call(uintptr(syscall.Stdout), uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, 0
	}
	return int(info.right-info.left) + 1, int(info.bottom-info.top) + 1
}
