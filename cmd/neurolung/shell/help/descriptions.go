// Package help holds the key reference shown by the shell screens.
package help

// HelpText describes the keys of one screen.
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Texts is keyed by screen name.
var Texts = map[string]HelpText{
	"dashboard": {
		Title:       "RECENT SCANS",
		Description: "Cases loaded in this session, newest analyses first.",
		Details: `↑/↓     Select a case
Enter   Open an analyzed case in the viewer
/       Filter by patient ID or name (Esc clears)
u       Start a new analysis
q       Quit`,
	},
	"upload": {
		Title:       "NEW ANALYSIS",
		Description: "Path of the scan to analyze.",
		Details: `Any regular file is accepted. Its content is never read;
the file only starts the analysis pipeline.
Enter   Start analysis
Esc     Back to the dashboard`,
	},
	"processing": {
		Title:       "ANALYZING CT SCAN",
		Description: "The pipeline runs through its stages and opens the viewer when done.",
		Details:     "Esc     Abandon the analysis and return to the dashboard",
	},
	"viewer": {
		Title:       "ANALYSIS WORKSTATION",
		Description: "Slice viewer with the AI findings of the case.",
		Details: `←/→        Previous/next slice
PgUp/PgDn  Ten slices back/forward
h          Toggle Grad-CAM heatmap
s          Toggle segmentation
↑/↓        Select a nodule, Enter jumps to its slice
d          Save the clinical report
x          Export the series as DICOM
Esc        Close the case`,
	},
}
