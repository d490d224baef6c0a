package render

import "image"

// MaxGray12 is the largest value of 12-bit stored pixel data.
const MaxGray12 = 4095

// Gray16 converts img to row-major 12-bit grayscale samples (0-4095), averaging
// the colour channels the way the DICOM overlay does.
func Gray16(img image.Image) []uint16 {
	b := img.Bounds()
	pixels := make([]uint16, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// RGBA() returns 16-bit values, convert to 8-bit first
			gray8 := (r + g + bl) / (3 * 256)
			pixels = append(pixels, uint16(gray8*MaxGray12/255))
		}
	}
	return pixels
}
