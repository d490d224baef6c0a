// Package dicom writes the synthetic scan of a case as a DICOM CT series.
package dicom

import (
	"fmt"
	"hash/fnv"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/render"
	"github.com/mrsinham/neurolung/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ExportOptions controls a series export.
type ExportOptions struct {
	OutputDir string // Files go to OutputDir/<patient ID>/
	Heatmap   bool   // Burn the heatmap overlay into the pixels
	Workers   int    // Number of parallel workers (0 = auto-detect based on CPU cores)

	// Tags overrides selected descriptive tags (institution, station, ...).
	Tags util.TagOverrides

	// Output control
	Quiet            bool                     // Suppress progress output (for TUI integration)
	ProgressCallback func(current, total int) // Optional callback for progress updates
}

// ExportedFile describes one written slice.
type ExportedFile struct {
	Path           string
	Slice          int
	PatientID      string
	StudyUID       string
	SeriesUID      string
	SOPInstanceUID string
}

// sliceTask contains all data needed to write a single slice
type sliceTask struct {
	slice    int
	filePath string
	metadata []*dicom.Element
	frame    render.Frame
	sopUID   string
}

// Pixel layout of exported slices: 12 bits stored in 16.
const (
	bitsAllocated = 16
	bitsStored    = 12
	highBit       = 11
)

// ExportSeries renders every slice of pc and writes it as a CT image. The
// files are named SL0001.dcm to SL0100.dcm. UIDs are derived from the patient
// ID, so exporting the same case twice yields identical files.
func ExportSeries(pc casefile.PatientCase, opts ExportOptions) ([]ExportedFile, error) {
	if pc.ID == "" {
		return nil, fmt.Errorf("patient ID is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	seriesDir := filepath.Join(opts.OutputDir, pc.ID)
	if err := os.MkdirAll(seriesDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(pc.ID)) // hash.Write never returns an error
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed))
	params := chestSeriesParams(rng)

	studyUID := util.GenerateDeterministicUID(pc.ID + "_study")
	seriesUID := util.GenerateDeterministicUID(pc.ID + "_series")
	frameOfReferenceUID := util.GenerateDeterministicUID(pc.ID + "_frame")

	studyDate := ""
	if !pc.ScanDate.IsZero() {
		studyDate = pc.ScanDate.Format("20060102")
	}
	nodules := pc.Results().Nodules

	if !opts.Quiet {
		fmt.Printf("Exporting %d slices for %s (%s)\n", render.MaxSlice, pc.ID, pc.Name)
		fmt.Printf("  Scanner: %s %s, kernel %s\n", params.Scanner.Manufacturer, params.Scanner.Model, params.ConvolutionKernel)
	}

	total := render.MaxSlice - render.MinSlice + 1
	tasks := make([]sliceTask, 0, total)
	for slice := render.MinSlice; slice <= render.MaxSlice; slice++ {
		sopUID := util.GenerateDeterministicUID(fmt.Sprintf("%s_slice_%d", pc.ID, slice))
		z := render.Position(slice)

		metadata := []*dicom.Element{
			mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
			mustNewElement(tag.PatientName, []string{util.PersonName(pc.Name)}),
			mustNewElement(tag.PatientID, []string{pc.ID}),
			mustNewElement(tag.PatientAge, []string{fmt.Sprintf("%03dY", pc.Age)}),
			mustNewElement(tag.StudyInstanceUID, []string{studyUID}),
			mustNewElement(tag.StudyID, []string{pc.ID}),
			mustNewElement(tag.StudyDate, []string{studyDate}),
			mustNewElement(tag.StudyTime, []string{"120000"}),
			mustNewElement(tag.StudyDescription, []string{opts.Tags.Value("StudyDescription", "CT CHEST LOW DOSE")}),
			mustNewElement(tag.AccessionNumber, []string{opts.Tags.Value("AccessionNumber", "")}),
			mustNewElement(tag.SeriesInstanceUID, []string{seriesUID}),
			mustNewElement(tag.SeriesNumber, []string{"1"}),
			mustNewElement(tag.SeriesDescription, []string{opts.Tags.Value("SeriesDescription", seriesDescription(opts.Heatmap))}),
			mustNewElement(tag.Modality, []string{"CT"}),
			mustNewElement(tag.BodyPartExamined, []string{"CHEST"}),
			mustNewElement(tag.SOPInstanceUID, []string{sopUID}),
			mustNewElement(tag.SOPClassUID, []string{CTImageStorage}),
			mustNewElement(tag.InstanceNumber, []string{intToIS(slice)}),
			mustNewElement(tag.PixelSpacing, []string{
				fmt.Sprintf("%.6f", params.PixelSpacing),
				fmt.Sprintf("%.6f", params.PixelSpacing),
			}),
			mustNewElement(tag.SliceThickness, []string{fmt.Sprintf("%.6f", params.SliceThickness)}),
			mustNewElement(tag.SpacingBetweenSlices, []string{fmt.Sprintf("%.6f", params.SliceThickness)}),
			mustNewElement(tag.Manufacturer, []string{opts.Tags.Value("Manufacturer", params.Scanner.Manufacturer)}),
			mustNewElement(tag.ManufacturerModelName, []string{opts.Tags.Value("ManufacturerModelName", params.Scanner.Model)}),
			mustNewElement(tag.InstitutionName, []string{opts.Tags.Value("InstitutionName", "NEUROLUNG AI")}),
			mustNewElement(tag.InstitutionalDepartmentName, []string{opts.Tags.Value("InstitutionalDepartmentName", "Radiology")}),
			mustNewElement(tag.StationName, []string{opts.Tags.Value("StationName", "NEUROLUNG")}),
			mustNewElement(tag.ReferringPhysicianName, []string{opts.Tags.Value("ReferringPhysicianName", "")}),
			mustNewElement(tag.OperatorsName, []string{opts.Tags.Value("OperatorsName", "")}),
			mustNewElement(tag.RequestedProcedureDescription, []string{opts.Tags.Value("RequestedProcedureDescription", "Lung nodule follow-up")}),
			mustNewElement(tag.WindowCenter, []string{fmt.Sprintf("%.1f", params.WindowCenter)}),
			mustNewElement(tag.WindowWidth, []string{fmt.Sprintf("%.1f", params.WindowWidth)}),
			mustNewElement(tag.ImagePositionPatient, []string{"0.000000", "0.000000", fmt.Sprintf("%.6f", z)}),
			mustNewElement(tag.ImageOrientationPatient, []string{"1", "0", "0", "0", "1", "0"}),
			mustNewElement(tag.SliceLocation, []string{fmt.Sprintf("%.6f", z)}),
			mustNewElement(tag.FrameOfReferenceUID, []string{frameOfReferenceUID}),
			mustNewElement(tag.Rows, []int{render.Size}),
			mustNewElement(tag.Columns, []int{render.Size}),
			mustNewElement(tag.BitsAllocated, []int{bitsAllocated}),
			mustNewElement(tag.BitsStored, []int{bitsStored}),
			mustNewElement(tag.HighBit, []int{highBit}),
			mustNewElement(tag.PixelRepresentation, []int{0}),
			mustNewElement(tag.SamplesPerPixel, []int{1}),
			mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		}
		metadata = append(metadata, ctElements(params)...)

		tasks = append(tasks, sliceTask{
			slice:    slice,
			filePath: filepath.Join(seriesDir, fmt.Sprintf("SL%04d.dcm", slice)),
			metadata: metadata,
			frame:    render.Frame{Slice: slice, Nodules: nodules, Heatmap: opts.Heatmap},
			sopUID:   sopUID,
		})
	}

	// Process tasks in parallel
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}

	if !opts.Quiet {
		fmt.Printf("Writing slices with %d parallel workers...\n", numWorkers)
	}

	taskChan := make(chan sliceTask, len(tasks))
	resultChan := make(chan struct {
		slice int
		err   error
	}, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker draws on its own surface
			r := render.New()
			surface := render.NewSurface()
			for task := range taskChan {
				err := writeSlice(r, surface, task)
				resultChan <- struct {
					slice int
					err   error
				}{task.slice, err}
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	var firstErr error
	for result := range resultChan {
		if result.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("write slice %d: %w", result.slice, result.err)
		}
		completed++
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(completed, len(tasks))
		}
		if !opts.Quiet && (completed%10 == 0 || completed == len(tasks)) {
			progress := float64(completed) / float64(len(tasks)) * 100
			fmt.Printf("  Progress: %d/%d (%.0f%%)\n", completed, len(tasks), progress)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	files := make([]ExportedFile, len(tasks))
	for i, task := range tasks {
		files[i] = ExportedFile{
			Path:           task.filePath,
			Slice:          task.slice,
			PatientID:      pc.ID,
			StudyUID:       studyUID,
			SeriesUID:      seriesUID,
			SOPInstanceUID: task.sopUID,
		}
	}

	if !opts.Quiet {
		fmt.Printf("\n✓ %d DICOM files created in: %s/\n", len(files), seriesDir)
	}

	return files, nil
}

func seriesDescription(heatmap bool) string {
	if heatmap {
		return "AXIAL LUNG + AI HEATMAP"
	}
	return "AXIAL LUNG"
}

// writeSlice renders one slice into surface and writes it with its metadata.
func writeSlice(r *render.Renderer, surface *image.RGBA, task sliceTask) error {
	r.Render(surface, task.frame)
	pixels := render.Gray16(surface)

	pixelsPerFrame := render.Size * render.Size
	nativeFrame := frame.NewNativeFrame[uint16](bitsAllocated, render.Size, render.Size, pixelsPerFrame, 1)
	copy(nativeFrame.RawData, pixels)

	pixelDataInfo := dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData:   nativeFrame,
			},
		},
	}

	elements := make([]*dicom.Element, len(task.metadata)+1)
	copy(elements, task.metadata)
	elements[len(task.metadata)] = mustNewElement(tag.PixelData, pixelDataInfo)

	return writeDatasetToFile(task.filePath, dicom.Dataset{Elements: elements})
}

// writeDatasetToFile writes a DICOM dataset to a file
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}
