package termimg

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = windows.NewLazyDLL("kernel32.dll")
	procGetCurrentConsoleFont = modkernel32.NewProc("GetCurrentConsoleFont")
)

type consoleFontInfo struct {
	nFont      uint32
	dwFontSize windows.Coord
}

// cellSize returns the console font size, which is the size of one cell.
func cellSize() (int, int) {
	handle := windows.Handle(os.Stdout.Fd())

	var cfi consoleFontInfo
	r, _, _ := procGetCurrentConsoleFont.Call(uintptr(handle), 0, uintptr(unsafe.Pointer(&cfi)))
	if r == 0 || cfi.dwFontSize.X <= 0 || cfi.dwFontSize.Y <= 0 {
		return defaultCellW, defaultCellH
	}
	return int(cfi.dwFontSize.X), int(cfi.dwFontSize.Y)
}
