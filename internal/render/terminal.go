package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

const halfBlock = "▀"

// Terminal downsamples img to cols×(2·rows) pixels and encodes it as rows
// lines of upper half-block cells: the foreground carries the top pixel, the
// background the bottom one.
func Terminal(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	small := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	styles := make(map[[2]color.RGBA]lipgloss.Style)
	var sb strings.Builder
	for y := 0; y < rows; y++ {
		run := 0
		var current [2]color.RGBA
		flush := func() {
			if run == 0 {
				return
			}
			style, ok := styles[current]
			if !ok {
				style = lipgloss.NewStyle().
					Foreground(lipgloss.Color(hex(current[0]))).
					Background(lipgloss.Color(hex(current[1])))
				styles[current] = style
			}
			sb.WriteString(style.Render(strings.Repeat(halfBlock, run)))
			run = 0
		}

		for x := 0; x < cols; x++ {
			pair := [2]color.RGBA{small.RGBAAt(x, 2*y), small.RGBAAt(x, 2*y+1)}
			if run > 0 && pair != current {
				flush()
			}
			current = pair
			run++
		}
		flush()
		if y < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
