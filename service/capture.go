package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
)

// Point is a pad coordinate in CSS pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen-down drag path
type Stroke []Point

// Pad converts pointer/touch drag paths into a raster signature image. The
// surface is sized in CSS pixels but backed by a buffer scaled by the
// device pixel ratio, so the export stays sharp on high-density displays.
// It knows nothing about contracts; the export is an opaque payload.
type Pad struct {
	width     int
	height    int
	dpr       float64
	lineWidth float64

	img     *image.RGBA
	penDown bool
	last    Point
}

// NewPad creates a cleared white pad of width x height CSS pixels at the
// given device pixel ratio.
func NewPad(width, height int, dpr float64) *Pad {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	if dpr <= 0 {
		dpr = 1
	}

	p := &Pad{
		width:     width,
		height:    height,
		dpr:       dpr,
		lineWidth: 2,
	}
	p.img = image.NewRGBA(image.Rect(0, 0,
		int(math.Round(float64(width)*dpr)),
		int(math.Round(float64(height)*dpr)),
	))
	p.Clear()
	return p
}

// PixelSize returns the backing buffer dimensions: surface size scaled by
// the device pixel ratio.
func (p *Pad) PixelSize() (int, int) {
	b := p.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear resets the pad to a blank white surface and lifts the pen
func (p *Pad) Clear() {
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	p.penDown = false
}

// BeginStroke starts a new stroke at the given surface coordinates
func (p *Pad) BeginStroke(x, y float64) {
	p.penDown = true
	p.last = Point{X: x, Y: y}
	p.stamp(x, y)
}

// StrokeTo continues the current stroke to the given coordinates. Ignored
// when the pen is up.
func (p *Pad) StrokeTo(x, y float64) {
	if !p.penDown {
		return
	}
	p.segment(p.last, Point{X: x, Y: y})
	p.last = Point{X: x, Y: y}
}

// EndStroke lifts the pen
func (p *Pad) EndStroke() {
	p.penDown = false
}

// ExportDataURI encodes the current surface as a PNG data URI. Discarding
// the pad without calling this leaves no trace anywhere.
func (p *Pad) ExportDataURI() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// segment draws a round-capped line between two surface points by stamping
// discs along the way in device coordinates.
func (p *Pad) segment(from, to Point) {
	x0, y0 := from.X*p.dpr, from.Y*p.dpr
	x1, y1 := to.X*p.dpr, to.Y*p.dpr

	dist := math.Hypot(x1-x0, y1-y0)
	steps := int(dist*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.stampDevice(x0+(x1-x0)*t, y0+(y1-y0)*t)
	}
}

func (p *Pad) stamp(x, y float64) {
	p.stampDevice(x*p.dpr, y*p.dpr)
}

func (p *Pad) stampDevice(cx, cy float64) {
	r := p.lineWidth / 2 * p.dpr
	minX := int(math.Floor(cx - r))
	maxX := int(math.Ceil(cx + r))
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(p.img.Bounds()) {
				p.img.Set(x, y, color.Black)
			}
		}
	}
}

// RenderStrokes rasterizes a full set of captured stroke paths in one call,
// for clients that buffer the drag locally and submit the paths with the
// signature.
func RenderStrokes(width, height int, dpr float64, strokes []Stroke) (string, error) {
	if len(strokes) == 0 {
		return "", errors.New("no strokes captured")
	}

	pad := NewPad(width, height, dpr)
	for _, stroke := range strokes {
		if len(stroke) == 0 {
			continue
		}
		pad.BeginStroke(stroke[0].X, stroke[0].Y)
		for _, pt := range stroke[1:] {
			pad.StrokeTo(pt.X, pt.Y)
		}
		pad.EndStroke()
	}
	return pad.ExportDataURI()
}

// ValidateSignaturePayload checks that a submitted payload is a decodable
// image data URI. The pixels themselves are never interpreted.
func ValidateSignaturePayload(payload string) error {
	if !strings.HasPrefix(payload, "data:image/") {
		return errors.New("signature payload must be an image data URI")
	}
	idx := strings.Index(payload, ";base64,")
	if idx < 0 {
		return errors.New("signature payload must be base64 encoded")
	}
	if _, err := base64.StdEncoding.DecodeString(payload[idx+len(";base64,"):]); err != nil {
		return errors.New("signature payload is not valid base64")
	}
	return nil
}
