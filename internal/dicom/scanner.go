package dicom

import (
	"fmt"
	"math/rand/v2"

	"github.com/mrsinham/neurolung/internal/render"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// CTImageStorage is the CT Image Storage SOP Class UID.
const CTImageStorage = "1.2.840.10008.5.1.4.1.1.2"

// Scanner is a CT device the export claims to come from.
type Scanner struct {
	Manufacturer string
	Model        string
	DetectorRows int
}

// chestScanners are the devices a chest series is attributed to.
var chestScanners = []Scanner{
	{Manufacturer: "SIEMENS", Model: "SOMATOM Definition AS+", DetectorRows: 128},
	{Manufacturer: "SIEMENS", Model: "SOMATOM Force", DetectorRows: 192},
	{Manufacturer: "GE MEDICAL SYSTEMS", Model: "Revolution CT", DetectorRows: 256},
	{Manufacturer: "PHILIPS", Model: "Brilliance iCT", DetectorRows: 256},
	{Manufacturer: "CANON", Model: "Aquilion ONE", DetectorRows: 320},
}

// SeriesParams holds the acquisition parameters shared by every slice of a series.
type SeriesParams struct {
	Scanner           Scanner
	KVP               float64 // Tube voltage (kV)
	XRayTubeCurrent   int     // Tube current (mA)
	ConvolutionKernel string
	PixelSpacing      float64
	SliceThickness    float64
	WindowCenter      float64
	WindowWidth       float64
	RescaleIntercept  float64 // HU offset
	RescaleSlope      float64
}

// chestSeriesParams draws low-dose chest CT parameters. The display window is
// the lung window the viewer overlay reports.
func chestSeriesParams(rng *rand.Rand) SeriesParams {
	kvpOptions := []float64{100, 120}
	return SeriesParams{
		Scanner:           chestScanners[rng.IntN(len(chestScanners))],
		KVP:               kvpOptions[rng.IntN(len(kvpOptions))],
		XRayTubeCurrent:   40 + rng.IntN(61), // 40-100 mA, low dose
		ConvolutionKernel: "LUNG",
		PixelSpacing:      0.6 + rng.Float64()*0.2,
		SliceThickness:    render.SliceThickness,
		WindowCenter:      render.WindowLevel,
		WindowWidth:       render.WindowWidth,
		RescaleIntercept:  -1024,
		RescaleSlope:      1,
	}
}

// ctElements returns the CT acquisition elements of a series.
func ctElements(p SeriesParams) []*dicom.Element {
	return []*dicom.Element{
		mustNewElement(tag.KVP, []string{floatToDS(p.KVP)}),
		mustNewElement(tag.XRayTubeCurrent, []string{intToIS(p.XRayTubeCurrent)}),
		mustNewElement(tag.ConvolutionKernel, []string{p.ConvolutionKernel}),
		mustNewElement(tag.RescaleIntercept, []string{floatToDS(p.RescaleIntercept)}),
		mustNewElement(tag.RescaleSlope, []string{floatToDS(p.RescaleSlope)}),
		mustNewElement(tag.RescaleType, []string{"HU"}),
	}
}

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// floatToDS converts a float64 to a DICOM Decimal String.
func floatToDS(f float64) string {
	return fmt.Sprintf("%.6g", f)
}

// intToIS converts an int to a DICOM Integer String.
func intToIS(i int) string {
	return fmt.Sprintf("%d", i)
}
