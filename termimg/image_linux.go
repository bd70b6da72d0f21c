package termimg

import (
	"os"

	"golang.org/x/sys/unix"
)

// cellSize returns the pixel size of one terminal cell, falling back to
// a common 8x16 when the terminal doesn't report pixel dimensions.
func cellSize() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return defaultCellW, defaultCellH
	}
	return max(1, int(ws.Xpixel)/int(ws.Col)), max(1, int(ws.Ypixel)/int(ws.Row))
}
