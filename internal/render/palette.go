package render

import "image/color"

// NamedColor is a palette entry.
type NamedColor struct {
	Name string
	RGBA color.NRGBA
}

// Palette cycles: entry i is reused for pair i+len(p).
type Palette []NamedColor

func (p Palette) At(i int) NamedColor {
	return p[i%len(p)]
}

func named(name string, r, g, b uint8) NamedColor {
	return NamedColor{Name: name, RGBA: color.NRGBA{R: r, G: g, B: b, A: 255}}
}

// FormPalette holds the 16 HTML basic colours, in pair order.
var FormPalette = Palette{
	named("navy", 0x00, 0x00, 0x80),
	named("blue", 0x00, 0x00, 0xff),
	named("aqua", 0x00, 0xff, 0xff),
	named("teal", 0x00, 0x80, 0x80),
	named("olive", 0x80, 0x80, 0x00),
	named("green", 0x00, 0x80, 0x00),
	named("lime", 0x00, 0xff, 0x00),
	named("yellow", 0xff, 0xff, 0x00),
	named("orange", 0xff, 0xa5, 0x00),
	named("red", 0xff, 0x00, 0x00),
	named("maroon", 0x80, 0x00, 0x00),
	named("fuchsia", 0xff, 0x00, 0xff),
	named("purple", 0x80, 0x00, 0x80),
	named("black", 0x00, 0x00, 0x00),
	named("gray", 0x80, 0x80, 0x80),
	named("silver", 0xc0, 0xc0, 0xc0),
}

// PresetColor draws every invoice/receipt field.
var PresetColor = named("red", 0xff, 0x00, 0x00)

// labelTextColor picks black or white text for legibility on c.
func labelTextColor(c color.NRGBA) color.NRGBA {
	// ITU-R BT.601 luma
	luma := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
	if luma > 140 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}
