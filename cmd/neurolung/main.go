package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell/screens"
	"github.com/mrsinham/neurolung/internal/analysis"
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/dicom"
	"github.com/mrsinham/neurolung/internal/report"
	"github.com/mrsinham/neurolung/internal/util"
)

// version is set at build time via -ldflags
var version = "dev"

// options are the parsed command-line settings.
type options struct {
	casesFile   string
	reportDir   string
	dicomDir    string
	seed        int64
	tick        time.Duration
	settle      time.Duration
	workers     int
	heatmap     bool
	logFile     string
	reportID    string
	exportID    string
	saveCases   string
	tags        util.TagOverrides
	showVersion bool
	showHelp    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	if opts.showVersion {
		fmt.Printf("neurolung %s\n", version)
		os.Exit(0)
	}

	if opts.showHelp {
		printHelp()
		os.Exit(0)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	var tagFlags []string

	fs := flag.NewFlagSet("neurolung", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.casesFile, "cases", "", "Load the case roster from a YAML file (demo roster if not specified)")
	fs.StringVar(&opts.reportDir, "report-dir", "reports", "Directory for clinical reports")
	fs.StringVar(&opts.dicomDir, "dicom-dir", "dicom_export", "Directory for DICOM series exports")
	fs.Int64Var(&opts.seed, "seed", 0, "Seed for the demo analysis provider (time-based if not specified)")
	fs.DurationVar(&opts.tick, "tick", analysis.DefaultTick, "Interval between two analysis progress steps")
	fs.DurationVar(&opts.settle, "settle", analysis.DefaultSettle, "Pause between 100% progress and the result")
	fs.IntVar(&opts.workers, "workers", 0, fmt.Sprintf("Number of parallel DICOM workers (default: %d = CPU cores)", runtime.NumCPU()))
	fs.BoolVar(&opts.heatmap, "heatmap", true, "Burn the heatmap overlay into exported DICOM slices")
	fs.StringVar(&opts.logFile, "log-file", "", "Write diagnostic logs to this file")
	fs.StringVar(&opts.reportID, "report", "", "Print and save the report of a case, then exit")
	fs.StringVar(&opts.exportID, "export-dicom", "", "Export the DICOM series of a case, then exit")
	fs.StringVar(&opts.saveCases, "save-cases", "", "Save the case roster to a YAML file, then exit")
	fs.Func("tag", "Set DICOM tag on exported slices: 'TagName=Value' (repeatable)", func(s string) error {
		tagFlags = append(tagFlags, s)
		return nil
	})
	fs.BoolVar(&opts.showVersion, "version", false, "Show version")
	fs.BoolVar(&opts.showHelp, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			opts.showHelp = true
			return opts, nil
		}
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if opts.tick <= 0 {
		return opts, fmt.Errorf("--tick must be > 0")
	}
	if opts.workers < 0 {
		return opts, fmt.Errorf("--workers must be >= 0")
	}

	tags, err := util.ParseTagOverrides(tagFlags)
	if err != nil {
		return opts, err
	}
	opts.tags = tags

	return opts, nil
}

// batch reports whether a non-interactive mode was requested.
func (o options) batch() bool {
	return o.reportID != "" || o.exportID != "" || o.saveCases != ""
}

func run(opts options) error {
	roster, err := loadRoster(opts.casesFile)
	if err != nil {
		return err
	}

	if opts.batch() {
		log.SetOutput(io.Discard)
		return runBatch(opts, roster)
	}

	if opts.logFile != "" {
		f, err := tea.LogToFile(opts.logFile, "neurolung")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return shell.Run(shell.Config{
		Roster:   roster,
		Provider: analysis.NewDemoProvider(seed),
		Job:      analysis.JobOptions{Tick: opts.tick, Settle: settleOption(opts.settle)},
		Viewer: screens.ViewerOptions{
			ReportDir: opts.reportDir,
			DicomDir:  opts.dicomDir,
			Tags:      opts.tags,
			Workers:   opts.workers,
		},
	})
}

// settleOption maps a zero pause to the job's "no pause" value.
func settleOption(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

func loadRoster(path string) (*casefile.Roster, error) {
	if path == "" {
		return casefile.NewRoster(casefile.DemoRoster()...)
	}
	roster, err := casefile.LoadRosterYAML(path)
	if err != nil {
		return nil, fmt.Errorf("loading cases: %w", err)
	}
	return roster, nil
}

func findCase(roster *casefile.Roster, id string) (casefile.PatientCase, error) {
	pc, ok := roster.Get(id)
	if !ok {
		return pc, fmt.Errorf("case %q not found (%d cases loaded)", id, roster.Len())
	}
	return pc, nil
}

func runBatch(opts options, roster *casefile.Roster) error {
	if opts.reportID != "" {
		pc, err := findCase(roster, opts.reportID)
		if err != nil {
			return err
		}
		now := time.Now()
		fmt.Print(report.Format(pc, now))
		path, err := report.Save(opts.reportDir, pc, now)
		if err != nil {
			return err
		}
		fmt.Printf("\n✓ Report saved to %s\n", path)
	}

	if opts.exportID != "" {
		pc, err := findCase(roster, opts.exportID)
		if err != nil {
			return err
		}
		if len(opts.tags) > 0 {
			fmt.Printf("Custom tags: %d specified\n", len(opts.tags))
		}
		fmt.Println("neurolung")
		fmt.Println("=========")
		fmt.Println()
		if _, err := dicom.ExportSeries(pc, dicom.ExportOptions{
			OutputDir: opts.dicomDir,
			Heatmap:   opts.heatmap,
			Workers:   opts.workers,
			Tags:      opts.tags,
		}); err != nil {
			return fmt.Errorf("exporting DICOM series: %w", err)
		}
	}

	if opts.saveCases != "" {
		if err := casefile.SaveRosterYAML(roster, opts.saveCases); err != nil {
			return fmt.Errorf("saving cases: %w", err)
		}
		fmt.Printf("✓ %d cases saved to %s\n", roster.Len(), opts.saveCases)
	}

	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage:")
	fmt.Fprintln(os.Stderr, "  neurolung [options]")
	fmt.Fprintln(os.Stderr, "\nRun 'neurolung --help' for the list of options.")
}

func printHelp() {
	lines := []string{
		"neurolung",
		"=========",
		"",
		"Lung CT review workstation: case dashboard, simulated AI analysis,",
		"slice viewer with findings, clinical reports and DICOM export.",
		"",
		"Usage:",
		"  neurolung [options]              Launch the interactive workstation",
		"  neurolung --report <ID>          Print and save the report of a case",
		"  neurolung --export-dicom <ID>    Write the 100-slice series of a case",
		"",
		"Cases:",
		"  --cases <FILE>        Load the roster from YAML (default: built-in demo cases)",
		"  --save-cases <FILE>   Save the roster to YAML and exit",
		"",
		"Output:",
		"  --report-dir <DIR>    Report directory (default: 'reports')",
		"  --dicom-dir <DIR>     DICOM export directory (default: 'dicom_export')",
		fmt.Sprintf("  --workers <N>         Parallel DICOM workers (default: %d = CPU cores)", runtime.NumCPU()),
		"  --heatmap=false       Export slices without the heatmap overlay",
		"  --tag <NAME=VALUE>    Set a DICOM tag on exported slices (repeatable)",
		"                        Example: --tag \"InstitutionName=CHU Bordeaux\"",
		"                        Tags: " + strings.Join(util.OverridableTagNames(), ", "),
		"",
		"Analysis:",
		"  --seed <N>            Seed for the demo analysis (time-based if not specified)",
		"  --tick <DURATION>     Progress step interval (default: 200ms)",
		"  --settle <DURATION>   Pause after 100% before the result (default: 800ms)",
		"",
		"  --log-file <FILE>     Write diagnostic logs of the interactive session",
		"  --version             Show version",
		"  --help                Show this help message",
		"",
		"Examples:",
		"  # Review the demo cases",
		"  neurolung",
		"",
		"  # Save the report of a demo case into ./out",
		"  neurolung --report PT-2024-089 --report-dir out",
		"",
		"  # Export a case as DICOM with a custom institution",
		"  neurolung --export-dicom PT-2024-095 --tag \"InstitutionName=Mercy General\"",
		"",
		"  # Fast, reproducible analyses",
		"  neurolung --seed 42 --tick 20ms --settle 0",
	}
	for _, l := range lines {
		fmt.Println(l)
	}
}
