package workstation

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/render"
	"github.com/mrsinham/neurolung/internal/viewer"
)

var fixedNow = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func openDemo(t *testing.T, id string) *Workstation {
	t.Helper()
	roster, err := casefile.NewRoster(casefile.DemoRoster()...)
	if err != nil {
		t.Fatalf("NewRoster failed: %v", err)
	}
	pc, ok := roster.Get(id)
	if !ok {
		t.Fatalf("demo case %s not found", id)
	}
	return Open(pc, WithClock(func() time.Time { return fixedNow }))
}

func TestOpen_InitialState(t *testing.T) {
	w := openDemo(t, "PT-2024-089")

	want := viewer.State{Slice: 50, Heatmap: true, Segmentation: false}
	if got := w.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
	if w.Renders() != 1 {
		t.Errorf("Renders() = %d after open, want 1", w.Renders())
	}
	if w.Surface() == nil || w.Surface().Bounds() != image.Rect(0, 0, render.Size, render.Size) {
		t.Errorf("unexpected surface %v", w.Surface())
	}
}

func TestOpen_SurfaceMatchesFrame(t *testing.T) {
	w := openDemo(t, "PT-2024-089")
	w.SetSlice(45)

	want := render.NewSurface()
	render.New().Render(want, w.Frame())
	if string(want.Pix) != string(w.Surface().Pix) {
		t.Error("session surface differs from a fresh render of its frame")
	}
}

func TestNavigation_RedrawsEveryChange(t *testing.T) {
	w := openDemo(t, "PT-2024-095")

	w.SetSlice(10)
	w.Step(5)
	w.ToggleHeatmap()
	w.ToggleSegmentation()

	if w.Renders() != 5 {
		t.Errorf("Renders() = %d, want 5", w.Renders())
	}
	want := viewer.State{Slice: 15, Heatmap: false, Segmentation: true}
	if got := w.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestSetSlice_Clamps(t *testing.T) {
	w := openDemo(t, "PT-2024-089")

	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-20, 1},
		{101, 100},
		{77, 77},
	}
	for _, tc := range tests {
		w.SetSlice(tc.in)
		if got := w.State().Slice; got != tc.want {
			t.Errorf("SetSlice(%d) -> %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestJumpToNodule(t *testing.T) {
	w := openDemo(t, "PT-2024-095")

	for i, want := range []int{55, 48, 70} {
		if err := w.JumpToNodule(i); err != nil {
			t.Fatalf("JumpToNodule(%d) failed: %v", i, err)
		}
		if got := w.State().Slice; got != want {
			t.Errorf("JumpToNodule(%d) -> slice %d, want %d", i, got, want)
		}
	}

	for _, bad := range []int{-1, 3} {
		err := w.JumpToNodule(bad)
		if !errors.Is(err, ErrNoSuchNodule) {
			t.Errorf("JumpToNodule(%d) error = %v, want ErrNoSuchNodule", bad, err)
		}
	}
	if got := w.State().Slice; got != 70 {
		t.Errorf("failed jump moved slice to %d", got)
	}
}

func TestJumpToNodule_DrawsLikeSetSlice(t *testing.T) {
	jumped := openDemo(t, "PT-2024-095")
	moved := openDemo(t, "PT-2024-095")

	for i, n := range jumped.Case().Analysis.Nodules {
		if err := jumped.JumpToNodule(i); err != nil {
			t.Fatalf("JumpToNodule(%d) failed: %v", i, err)
		}
		moved.SetSlice(n.Slice)
		if jumped.State() != moved.State() {
			t.Errorf("row %d: state %+v, want %+v", i, jumped.State(), moved.State())
		}
		if string(jumped.Surface().Pix) != string(moved.Surface().Pix) {
			t.Errorf("row %d: jump to slice %d draws different pixels than SetSlice", i, n.Slice)
		}
	}
}

func TestToggleHeatmap_TwiceRestoresPixels(t *testing.T) {
	w := openDemo(t, "PT-2024-089")
	w.SetSlice(45)
	before := string(w.Surface().Pix)

	w.ToggleHeatmap()
	if string(w.Surface().Pix) == before {
		t.Fatal("heatmap off should change the drawing at the nodule slice")
	}
	w.ToggleHeatmap()
	if string(w.Surface().Pix) != before {
		t.Error("toggling the heatmap twice did not restore the drawing")
	}
}

func TestDemoCase_DrawsFirstNoduleOnly(t *testing.T) {
	w := openDemo(t, "PT-2024-089")
	w.ToggleHeatmap()
	nodules := w.Case().Analysis.Nodules

	tests := []struct {
		name  string
		slice int
		at    casefile.Nodule
		want  color.RGBA
	}{
		{"first nodule at full opacity", 45, nodules[0], color.RGBA{200, 200, 200, 255}},
		{"second nodule never drawn", 62, nodules[1], color.RGBA{0x1a, 0x1a, 0x1a, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.SetSlice(tt.slice)
			c := render.MarkerCenter(w.Surface().Bounds(), tt.at.Location)
			if got := w.Surface().RGBAAt(c.X, c.Y); got != tt.want {
				t.Errorf("pixel at %v on slice %d = %v, want %v", c, tt.slice, got, tt.want)
			}
		})
	}
	if op := render.MarkerOpacity(nodules[0].Slice, 45); op != 1 {
		t.Errorf("MarkerOpacity at the reference slice = %v, want 1", op)
	}
}

func TestJumpToNodule_NoAnalysis(t *testing.T) {
	pc := casefile.PatientCase{ID: "PT-2024-100", Name: "Pending Case", Status: casefile.StatusPending, Stage: "-"}
	w := Open(pc)

	if err := w.JumpToNodule(0); !errors.Is(err, ErrNoSuchNodule) {
		t.Errorf("JumpToNodule on a case without nodules = %v", err)
	}
	if len(w.Panel().Rows) != 0 {
		t.Errorf("panel has %d rows, want 0", len(w.Panel().Rows))
	}
}

func TestPanel(t *testing.T) {
	w := openDemo(t, "PT-2024-089")
	p := w.Panel()

	if p.Stage != "IIIA" {
		t.Errorf("Stage = %q, want IIIA", p.Stage)
	}
	if len(p.Rows) != 2 || p.Rows[0].Action != "Go to Slice 45" {
		t.Errorf("unexpected rows %+v", p.Rows)
	}
}

func TestReport_UsesClock(t *testing.T) {
	w := openDemo(t, "PT-2024-089")
	text := w.Report()

	if !strings.Contains(text, "Analysis Date: 2024-05-20") {
		t.Errorf("report does not carry the session date:\n%s", text)
	}
	if !strings.HasPrefix(text, "NEUROLUNG AI - CLINICAL REPORT\n") {
		t.Errorf("unexpected report header:\n%s", text)
	}
}

func TestExportReport(t *testing.T) {
	w := openDemo(t, "PT-2024-092")
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := w.ExportReport(dir)
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}
	if filepath.Base(path) != "PT-2024-092_Report.txt" {
		t.Errorf("report written to %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != w.Report() {
		t.Error("saved report differs from Report()")
	}
	for _, want := range []string{
		"Tumor (T): T1b",
		"Node (N):  N0",
		"Metastasis (M): M0",
		"Adenocarcinoma: 12.0%",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved report lacks %q", want)
		}
	}
}

func TestClose(t *testing.T) {
	w := openDemo(t, "PT-2024-089")
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !w.Closed() || w.Surface() != nil {
		t.Error("closed session still holds its surface")
	}
	renders := w.Renders()
	w.SetSlice(10)
	w.ToggleHeatmap()
	if w.Renders() != renders {
		t.Error("closed session kept drawing")
	}
	if w.State().Slice != 50 {
		t.Errorf("closed session moved to slice %d", w.State().Slice)
	}

	if err := w.JumpToNodule(0); !errors.Is(err, ErrClosed) {
		t.Errorf("JumpToNodule after close = %v, want ErrClosed", err)
	}
	if _, err := w.ExportReport(t.TempDir()); !errors.Is(err, ErrClosed) {
		t.Errorf("ExportReport after close = %v, want ErrClosed", err)
	}
	if err := w.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := openDemo(t, "PT-2024-089")
	a.SetSlice(12)
	a.ToggleHeatmap()
	_ = a.Close()

	b := openDemo(t, "PT-2024-089")
	if got := b.State(); got != viewer.Initial() {
		t.Errorf("reopened case starts in %+v, want %+v", got, viewer.Initial())
	}
}

func TestWithRenderer(t *testing.T) {
	r := render.New()
	w := Open(casefile.DemoRoster()[0], WithRenderer(r), WithRenderer(nil))
	if w.renderer != r {
		t.Error("WithRenderer did not install the renderer")
	}
}
