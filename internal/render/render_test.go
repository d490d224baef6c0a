package render

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/mrsinham/neurolung/internal/casefile"
)

func leftNodule(slice int) casefile.Nodule {
	return casefile.Nodule{ID: 1, Location: "LUL (Left Upper Lobe)", Size: "6mm", Confidence: 0.45, Slice: slice}
}

func renderFrame(t *testing.T, f Frame) *image.RGBA {
	t.Helper()
	img := NewSurface()
	New().Render(img, f)
	return img
}

func TestMarkerOpacity(t *testing.T) {
	tests := []struct {
		ref, slice int
		want       float64
	}{
		{50, 50, 1},
		{50, 53, 0.8},
		{50, 47, 0.8},
		{50, 64, 1.0 / 15},
		{50, 65, 0},
		{50, 35, 0},
		{50, 100, 0},
	}

	for _, tc := range tests {
		got := MarkerOpacity(tc.ref, tc.slice)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("MarkerOpacity(%d, %d) = %v, want %v", tc.ref, tc.slice, got, tc.want)
		}
	}
}

func TestClampSlice(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {50, 50}, {100, 100}, {101, 100},
	}
	for _, tc := range tests {
		if got := ClampSlice(tc.in); got != tc.want {
			t.Errorf("ClampSlice(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMarkerCenter(t *testing.T) {
	b := image.Rect(0, 0, Size, Size)
	if got := MarkerCenter(b, "LUL (Left Upper Lobe)"); got != image.Pt(316, 226) {
		t.Errorf("left marker center = %v, want (316,226)", got)
	}
	if got := MarkerCenter(b, "RUL (Right Upper Lobe)"); got != image.Pt(196, 226) {
		t.Errorf("right marker center = %v, want (196,226)", got)
	}
	if got := MarkerCenter(b, "Mediastinal"); got != image.Pt(196, 226) {
		t.Errorf("mediastinal marker center = %v, want (196,226)", got)
	}
}

func TestRender_Deterministic(t *testing.T) {
	f := Frame{Slice: 42, Nodules: []casefile.Nodule{leftNodule(45)}, Heatmap: true}
	a := renderFrame(t, f)
	b := renderFrame(t, f)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("rendering the same frame twice produced different pixels")
	}
}

func TestRender_OverwritesSurface(t *testing.T) {
	f := Frame{Slice: 30}
	want := renderFrame(t, f)

	dirty := NewSurface()
	r := New()
	r.Render(dirty, Frame{Slice: 80, Nodules: []casefile.Nodule{leftNodule(80)}, Heatmap: true})
	r.Render(dirty, f)

	if !bytes.Equal(want.Pix, dirty.Pix) {
		t.Error("render left pixels from the previous frame")
	}
}

func TestRender_MarkerVisibility(t *testing.T) {
	c := MarkerCenter(image.Rect(0, 0, Size, Size), "LUL (Left Upper Lobe)")

	tests := []struct {
		name    string
		slice   int
		visible bool
	}{
		{"on reference slice", 45, true},
		{"inside window", 59, true},
		{"at window edge", 60, false},
		{"far away", 90, false},
		{"below window", 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := renderFrame(t, Frame{Slice: tc.slice, Nodules: []casefile.Nodule{leftNodule(45)}})
			px := img.RGBAAt(c.X, c.Y)
			if tc.visible && px.R <= lungColor.R {
				t.Errorf("marker should be visible at slice %d, pixel %v", tc.slice, px)
			}
			if !tc.visible && px != lungColor {
				t.Errorf("marker should be hidden at slice %d, pixel %v want %v", tc.slice, px, lungColor)
			}
		})
	}
}

func TestRender_MarkerFullOpacity(t *testing.T) {
	c := MarkerCenter(image.Rect(0, 0, Size, Size), "LUL (Left Upper Lobe)")
	img := renderFrame(t, Frame{Slice: 45, Nodules: []casefile.Nodule{leftNodule(45)}})
	want := color.RGBA{200, 200, 200, 255}
	if px := img.RGBAAt(c.X, c.Y); px != want {
		t.Errorf("marker pixel = %v, want %v", px, want)
	}
}

func TestRender_MarkerFades(t *testing.T) {
	c := MarkerCenter(image.Rect(0, 0, Size, Size), "LUL (Left Upper Lobe)")
	prev := uint8(255)
	for d := 0; d < FadeWindow; d++ {
		img := renderFrame(t, Frame{Slice: 45 + d, Nodules: []casefile.Nodule{leftNodule(45)}})
		r := img.RGBAAt(c.X, c.Y).R
		if r > prev {
			t.Errorf("marker brightness increased from %d to %d at distance %d", prev, r, d)
		}
		prev = r
	}
}

func TestRender_HeatmapConfinedToBox(t *testing.T) {
	nodules := []casefile.Nodule{leftNodule(50)}
	off := renderFrame(t, Frame{Slice: 50, Nodules: nodules})
	on := renderFrame(t, Frame{Slice: 50, Nodules: nodules, Heatmap: true})

	c := MarkerCenter(off.Bounds(), nodules[0].Location)
	box := image.Rect(c.X-60, c.Y-60, c.X+60, c.Y+60)

	changed := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if off.RGBAAt(x, y) == on.RGBAAt(x, y) {
				continue
			}
			changed++
			if !image.Pt(x, y).In(box) {
				t.Fatalf("heatmap changed pixel (%d,%d) outside %v", x, y, box)
			}
		}
	}
	if changed == 0 {
		t.Error("heatmap changed no pixels")
	}

	px := on.RGBAAt(c.X, c.Y)
	if px.R <= px.G {
		t.Errorf("heatmap centre should be red dominated, got %v", px)
	}
}

func TestRender_HeatmapNeedsVisibleMarker(t *testing.T) {
	nodules := []casefile.Nodule{leftNodule(10)}
	off := renderFrame(t, Frame{Slice: 80, Nodules: nodules})
	on := renderFrame(t, Frame{Slice: 80, Nodules: nodules, Heatmap: true})
	if !bytes.Equal(off.Pix, on.Pix) {
		t.Error("heatmap drawn although the nodule is out of range")
	}

	empty := renderFrame(t, Frame{Slice: 50, Heatmap: true})
	none := renderFrame(t, Frame{Slice: 50})
	if !bytes.Equal(empty.Pix, none.Pix) {
		t.Error("heatmap drawn for a case without nodules")
	}
}

func TestRender_OnlyFirstNodule(t *testing.T) {
	far := casefile.Nodule{ID: 1, Location: "RUL (Right Upper Lobe)", Slice: 90}
	near := casefile.Nodule{ID: 2, Location: "LUL (Left Upper Lobe)", Slice: 50}

	withSecond := renderFrame(t, Frame{Slice: 50, Nodules: []casefile.Nodule{far, near}, Heatmap: true})
	firstOnly := renderFrame(t, Frame{Slice: 50, Nodules: []casefile.Nodule{far}, Heatmap: true})
	if !bytes.Equal(withSecond.Pix, firstOnly.Pix) {
		t.Error("nodules after the first one should not be drawn")
	}
}

func TestRender_SegmentationIgnored(t *testing.T) {
	nodules := []casefile.Nodule{leftNodule(50)}
	a := renderFrame(t, Frame{Slice: 50, Nodules: nodules})
	b := renderFrame(t, Frame{Slice: 50, Nodules: nodules, Segmentation: true})
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("segmentation flag changed the drawing")
	}
}

func TestRender_ClampsSlice(t *testing.T) {
	if !bytes.Equal(renderFrame(t, Frame{Slice: 0}).Pix, renderFrame(t, Frame{Slice: 1}).Pix) {
		t.Error("slice 0 should render as slice 1")
	}
	if !bytes.Equal(renderFrame(t, Frame{Slice: 250}).Pix, renderFrame(t, Frame{Slice: 100}).Pix) {
		t.Error("slice 250 should render as slice 100")
	}
}

func TestRender_SliceChangesDrawing(t *testing.T) {
	if bytes.Equal(renderFrame(t, Frame{Slice: 10}).Pix, renderFrame(t, Frame{Slice: 40}).Pix) {
		t.Error("different slices rendered identically")
	}
}

func TestRender_TextOverlay(t *testing.T) {
	img := renderFrame(t, Frame{Slice: 50})

	countWhite := func(r image.Rectangle) int {
		n := 0
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if img.RGBAAt(x, y) == (color.RGBA{255, 255, 255, 255}) {
					n++
				}
			}
		}
		return n
	}

	if countWhite(image.Rect(20, 18, 140, 32)) == 0 {
		t.Error("slice label not drawn")
	}
	if countWhite(image.Rect(20, 38, 140, 52)) == 0 {
		t.Error("position label not drawn")
	}
	if countWhite(image.Rect(20, Size-32, 160, Size-18)) == 0 {
		t.Error("window label not drawn")
	}
}

func TestPosition(t *testing.T) {
	if got := Position(50); got != 75 {
		t.Errorf("Position(50) = %v, want 75", got)
	}
}

func TestGray16(t *testing.T) {
	img := renderFrame(t, Frame{Slice: 45, Nodules: []casefile.Nodule{leftNodule(45)}})
	pixels := Gray16(img)
	if len(pixels) != Size*Size {
		t.Fatalf("Gray16 returned %d samples, want %d", len(pixels), Size*Size)
	}
	if pixels[0] != 0 {
		t.Errorf("background sample = %d, want 0", pixels[0])
	}
	for i, p := range pixels {
		if p > MaxGray12 {
			t.Fatalf("sample %d = %d exceeds 12-bit range", i, p)
		}
	}
	c := MarkerCenter(img.Bounds(), "LUL (Left Upper Lobe)")
	if got, want := pixels[c.Y*Size+c.X], uint16(200*MaxGray12/255); got != want {
		t.Errorf("marker sample = %d, want %d", got, want)
	}
}

func TestTerminal(t *testing.T) {
	img := renderFrame(t, Frame{Slice: 50})
	out := Terminal(img, 32, 16)

	lines := strings.Split(out, "\n")
	if len(lines) != 16 {
		t.Fatalf("Terminal produced %d lines, want 16", len(lines))
	}
	if n := strings.Count(out, halfBlock); n != 32*16 {
		t.Errorf("Terminal produced %d cells, want %d", n, 32*16)
	}
	if Terminal(img, 0, 10) != "" {
		t.Error("Terminal with zero columns should be empty")
	}
}
