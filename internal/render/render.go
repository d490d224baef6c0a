// Package render draws the synthetic scan for a slice index onto a raster surface.
//
// The drawing is a stylised axial section: two lung fields that breathe with
// the slice index, the first detected nodule fading in around its reference
// slice, an optional heatmap centred on the nodule and a text overlay with the
// slice position and display window.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/mrsinham/neurolung/internal/casefile"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	// Size is the width and height of the scan surface in pixels.
	Size = 512

	MinSlice = 1
	MaxSlice = 100

	// FadeWindow is the distance in slices beyond which a nodule is no longer drawn.
	FadeWindow = 15

	// SliceThickness is the distance between two slices in millimetres.
	SliceThickness = 1.5

	WindowLevel = -500
	WindowWidth = 1500
)

// Geometry of the drawing, relative to the surface centre.
const (
	lungOffsetX   = 80
	lungRadiusX   = 60
	lungRadiusY   = 100
	lungRotation  = 0.1
	markerOffsetX = 60
	markerOffsetY = -30
	markerRadius  = 8
	heatInner     = 2
	heatOuter     = 40
	heatBox       = 60
	ellipseSteps  = 96
)

var (
	background  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	lungColor   = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	textColor   = color.White
	markerLevel = uint8(200)
)

// Frame is everything the renderer needs to draw one slice.
type Frame struct {
	Slice   int
	Nodules []casefile.Nodule
	Heatmap bool
	// Segmentation is tracked by the viewer but has no drawing yet.
	Segmentation bool
}

// Renderer draws frames. The zero value is not usable; call New.
type Renderer struct {
	face font.Face
}

// New returns a renderer using the built-in fixed-width face.
func New() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// NewSurface allocates a Size×Size surface.
func NewSurface() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, Size, Size))
}

// ClampSlice bounds a slice index to [MinSlice, MaxSlice].
func ClampSlice(slice int) int {
	return max(MinSlice, min(MaxSlice, slice))
}

// MarkerOpacity returns the nodule marker opacity at slice for a nodule centred
// on ref: 1 at the reference slice, falling linearly to 0 at FadeWindow.
func MarkerOpacity(ref, slice int) float64 {
	d := ref - slice
	if d < 0 {
		d = -d
	}
	if d >= FadeWindow {
		return 0
	}
	return 1 - float64(d)/FadeWindow
}

// MarkerCenter returns where the marker for a nodule at location is drawn
// on a surface with bounds b.
func MarkerCenter(b image.Rectangle, location string) image.Point {
	cx := b.Min.X + b.Dx()/2
	cy := b.Min.Y + b.Dy()/2
	offset := -markerOffsetX
	if strings.Contains(location, "Left") {
		offset = markerOffsetX
	}
	return image.Pt(cx+offset, cy+markerOffsetY)
}

// Position returns the table position of a slice in millimetres.
func Position(slice int) float64 {
	return float64(slice) * SliceThickness
}

// Render overwrites dst entirely with the drawing for f. Only the first nodule
// is drawn. Out-of-range slices are clamped.
func (r *Renderer) Render(dst draw.Image, f Frame) {
	b := dst.Bounds()
	slice := ClampSlice(f.Slice)

	draw.Draw(dst, b, image.NewUniform(background), image.Point{}, draw.Src)

	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2
	scale := 1 + math.Sin(float64(slice)*0.05)*0.1
	fillEllipse(dst, cx-lungOffsetX, cy, lungRadiusX*scale, lungRadiusY*scale, lungRotation, lungColor)
	fillEllipse(dst, cx+lungOffsetX, cy, lungRadiusX*scale, lungRadiusY*scale, -lungRotation, lungColor)

	if len(f.Nodules) > 0 {
		n := f.Nodules[0]
		if op := MarkerOpacity(n.Slice, slice); op > 0 {
			c := MarkerCenter(b, n.Location)
			mx := float64(c.X - b.Min.X)
			my := float64(c.Y - b.Min.Y)
			a := alpha(op)
			fillEllipse(dst, mx, my, markerRadius, markerRadius, 0,
				color.NRGBA{markerLevel, markerLevel, markerLevel, a})
			if f.Heatmap {
				drawHeatmap(dst, c, op)
			}
		}
	}

	r.drawText(dst, 20, 30, fmt.Sprintf("Slice: %d/%d", slice, MaxSlice))
	r.drawText(dst, 20, 50, fmt.Sprintf("Pos: %.1fmm", Position(slice)))
	r.drawText(dst, 20, b.Dy()-20, fmt.Sprintf("WL: %d WW: %d", WindowLevel, WindowWidth))
}

func alpha(op float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, op)) * 255))
}

// fillEllipse rasterizes a rotated ellipse polygon onto dst, composited over.
func fillEllipse(dst draw.Image, x, y, rx, ry, rotation float64, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	sin, cos := math.Sincos(rotation)
	for i := 0; i < ellipseSteps; i++ {
		t := 2 * math.Pi * float64(i) / ellipseSteps
		ex := rx * math.Cos(t)
		ey := ry * math.Sin(t)
		px := float32(x + ex*cos - ey*sin)
		py := float32(y + ex*sin + ey*cos)
		if i == 0 {
			z.MoveTo(px, py)
		} else {
			z.LineTo(px, py)
		}
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// drawHeatmap paints a red to orange radial gradient centred on c, clipped
// to the heatBox square around it.
func drawHeatmap(dst draw.Image, c image.Point, op float64) {
	box := image.Rect(c.X-heatBox, c.Y-heatBox, c.X+heatBox, c.Y+heatBox)
	tile := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))

	// Premultiplied stop colours.
	inner := premul(255, 0, 0, 0.8*op)
	mid := premul(255, 165, 0, 0.5*op)

	for y := 0; y < box.Dy(); y++ {
		for x := 0; x < box.Dx(); x++ {
			dx := float64(x-heatBox) + 0.5
			dy := float64(y-heatBox) + 0.5
			d := math.Hypot(dx, dy)
			t := (d - heatInner) / (heatOuter - heatInner)
			switch {
			case t <= 0:
				tile.SetRGBA(x, y, toRGBA(inner))
			case t < 0.5:
				tile.SetRGBA(x, y, toRGBA(lerp(inner, mid, t/0.5)))
			case t < 1:
				tile.SetRGBA(x, y, toRGBA(lerp(mid, [4]float64{}, (t-0.5)/0.5)))
			}
		}
	}

	clip := box.Intersect(dst.Bounds())
	draw.Draw(dst, clip, tile, clip.Min.Sub(box.Min), draw.Over)
}

func premul(r, g, b, a float64) [4]float64 {
	a = math.Max(0, math.Min(1, a))
	return [4]float64{r * a, g * a, b * a, 255 * a}
}

func lerp(from, to [4]float64, t float64) [4]float64 {
	var out [4]float64
	for i := range out {
		out[i] = from[i] + (to[i]-from[i])*t
	}
	return out
}

func toRGBA(v [4]float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(v[0])),
		G: uint8(math.Round(v[1])),
		B: uint8(math.Round(v[2])),
		A: uint8(math.Round(v[3])),
	}
}

// drawText draws text with its baseline at (x, y).
func (r *Renderer) drawText(dst draw.Image, x, y int, text string) {
	b := dst.Bounds()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: r.face,
		Dot:  fixed.P(b.Min.X+x, b.Min.Y+y),
	}
	d.DrawString(text)
}
