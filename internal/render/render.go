// Package render draws DEEPREAD extraction geometry over the source image so
// a reviewer can check what was found where.
package render

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/extract"
)

const defaultThickness = 2

// Box is one overlay. Rect is the canonical (unclipped) pixel rectangle of Raw.
type Box struct {
	Raw   extract.BoundingBox
	Rect  image.Rectangle
	Label string
	Color NamedColor
	Pair  int // form pair index; -1 for preset fields
}

// Visualization is a fresh image with the overlays drawn on it.
type Visualization struct {
	Image  *image.NRGBA
	Layout extract.Layout
	Boxes  []Box
}

type Options struct {
	Thickness int // outline width in pixels, default 2
}

type Renderer struct {
	thickness int
	logger    *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Renderer {
	if opts.Thickness <= 0 {
		opts.Thickness = defaultThickness
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{thickness: opts.Thickness, logger: logger}
}

// Render decodes data according to pt and draws it over a copy of src.
// src is never modified.
func (r *Renderer) Render(data json.RawMessage, src image.Image, pt constants.ProcessType) (*Visualization, error) {
	layout := extract.LayoutFor(pt)

	var boxes []Box
	switch layout {
	case extract.LayoutForm:
		pairs, err := extract.DecodeForm(data)
		if err != nil {
			return nil, common.NewAppError(common.CodeRender, "decode form pairs", err)
		}
		boxes = PlanForm(pairs)
	case extract.LayoutPreset:
		fields, err := extract.DecodePreset(data)
		if err != nil {
			return nil, common.NewAppError(common.CodeRender, "decode preset fields", err)
		}
		boxes = PlanPreset(fields)
	default:
		return nil, common.NewAppError(common.CodeRender, fmt.Sprintf("unknown layout %v", layout), nil)
	}

	canvas := toOpaque(imaging.Clone(src))
	face, closeFace := labelFace(canvas.Bounds().Dy())
	defer closeFace()

	drawn := 0
	for _, b := range boxes {
		paint := r.paintRect(b.Rect)
		if paint.Intersect(canvas.Bounds()).Empty() {
			r.logger.Debug("render.box_outside_image", "label", b.Label, "box", b.Raw)
			continue
		}
		r.drawOutline(canvas, paint, b.Color.RGBA)
		drawLabel(canvas, paint, b.Label, b.Color.RGBA, face)
		drawn++
	}

	r.logger.Debug("render.ok",
		"process_type", pt,
		"layout", layout.String(),
		"boxes", len(boxes),
		"drawn", drawn,
	)
	return &Visualization{Image: canvas, Layout: layout, Boxes: boxes}, nil
}

// PlanForm gives each pair one palette colour, shared by its key and value boxes.
func PlanForm(pairs []extract.FormPair) []Box {
	boxes := make([]Box, 0, 2*len(pairs))
	for i, p := range pairs {
		c := FormPalette.At(i)
		boxes = append(boxes, newBox(p.Key.BoundingBox, "key", c, i))
		if p.Value != nil {
			boxes = append(boxes, newBox(p.Value.BoundingBox, "value", c, i))
		}
	}
	return boxes
}

// PlanPreset labels every field with its own name, all in PresetColor.
func PlanPreset(fields extract.PresetFields) []Box {
	boxes := make([]Box, 0, len(fields))
	for _, f := range fields {
		boxes = append(boxes, newBox(f.Region.BoundingBox, f.Name, PresetColor, -1))
	}
	return boxes
}

func newBox(bb extract.BoundingBox, label string, c NamedColor, pair int) Box {
	return Box{Raw: bb, Rect: toRect(bb), Label: label, Color: c, Pair: pair}
}

// toRect reads the four values as two opposite corners.
func toRect(bb extract.BoundingBox) image.Rectangle {
	return image.Rect(
		int(math.Round(bb[0])),
		int(math.Round(bb[1])),
		int(math.Round(bb[2])),
		int(math.Round(bb[3])),
	)
}

// toOpaque drops alpha the way an RGB conversion would, keeping colour values.
func toOpaque(img *image.NRGBA) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// paintRect widens a zero-width or zero-height box to the outline thickness
// so lines and points still show up.
func (r *Renderer) paintRect(rect image.Rectangle) image.Rectangle {
	if rect.Dx() < r.thickness {
		rect.Max.X = rect.Min.X + r.thickness
	}
	if rect.Dy() < r.thickness {
		rect.Max.Y = rect.Min.Y + r.thickness
	}
	return rect
}

// drawOutline paints inside rect; draw.Draw clips to dst.
func (r *Renderer) drawOutline(dst *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	t := r.thickness
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t),
		image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y),
		image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(rect), src, image.Point{}, draw.Src)
	}
}

// drawLabel puts label on a filled tab above rect, or just inside its top
// edge when there is no room above.
func drawLabel(dst *image.NRGBA, rect image.Rectangle, label string, c color.NRGBA, face font.Face) {
	if label == "" {
		return
	}
	const pad = 2
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	w := font.MeasureString(face, label).Ceil() + 2*pad
	h := ascent + descent + 2*pad

	tab := image.Rect(rect.Min.X, rect.Min.Y-h, rect.Min.X+w, rect.Min.Y)
	if tab.Min.Y < dst.Bounds().Min.Y {
		tab = tab.Add(image.Pt(0, h))
	}
	draw.Draw(dst, tab, image.NewUniform(c), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelTextColor(c)),
		Face: face,
		Dot:  fixed.P(tab.Min.X+pad, tab.Min.Y+pad+ascent),
	}
	d.DrawString(label)
}
