package render

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	parseOnce sync.Once
	goRegular *opentype.Font
)

// labelFace returns Go Regular at roughly 1/60 of the image height, never
// below 11pt. basicfont is the fallback if the embedded font will not load.
func labelFace(imageHeight int) (font.Face, func()) {
	parseOnce.Do(func() {
		if f, err := opentype.Parse(goregular.TTF); err == nil {
			goRegular = f
		}
	})
	if goRegular == nil {
		return basicfont.Face7x13, func() {}
	}
	size := float64(imageHeight) / 60
	if size < 11 {
		size = 11
	}
	face, err := opentype.NewFace(goRegular, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13, func() {}
	}
	return face, func() { _ = face.Close() }
}
