// Package termimg draws cover art with the kitty graphics protocol.
package termimg

import (
	"bytes"
	"image"
	"strings"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dolmen-go/kittyimg"
	"github.com/nfnt/resize"
)

// deleteAll removes every image kitty has placed on screen.
const deleteAll = "\x1b_Ga=d\x1b\\"

// apcStart opens a graphics command. C=1 on the first chunk keeps the
// cursor where the image starts so callers can reserve its rows themselves.
const (
	apcStart     = "\x1b_G"
	apcStartStay = "\x1b_GC=1,"
)

const (
	defaultCellW = 8
	defaultCellH = 16
)

// Image is cover art encoded as a kitty escape sequence, sized in
// terminal cells.
type Image struct {
	Cols int
	Rows int
	Data string
}

// Empty reports whether there is nothing to draw.
func (i Image) Empty() bool {
	return i.Data == ""
}

// Clear returns the sequence that removes previously drawn art.
func Clear() string {
	return deleteAll
}

func cropToSquare(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	size := min(h, w)
	x0 := b.Min.X + (w-size)/2
	y0 := b.Min.Y + (h-size)/2
	rect := image.Rect(x0, y0, x0+size, y0+size)

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return img
	}
	return sub.SubImage(rect)
}

// Encode decodes jpeg or png art, crops it square and scales it to at most
// maxCols terminal columns. Empty data yields an empty Image.
func Encode(data []byte, maxCols int) (Image, error) {
	if len(data) == 0 || maxCols <= 0 {
		return Image{}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, err
	}
	square := cropToSquare(img)

	cellW, cellH := cellSize()
	cols := min(maxCols, max(1, square.Bounds().Dx()/cellW))
	px := uint(cols * cellW)
	scaled := resize.Resize(px, px, square, resize.Bilinear)

	var w bytes.Buffer
	kittyimg.Fprint(&w, scaled)

	return Image{
		Cols: cols,
		Rows: max(1, (cols*cellW+cellH-1)/cellH),
		Data: strings.Replace(w.String(), apcStart, apcStartStay, 1),
	}, nil
}
