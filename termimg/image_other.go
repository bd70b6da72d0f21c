//go:build !linux && !windows

package termimg

func cellSize() (int, int) {
	return defaultCellW, defaultCellH
}
