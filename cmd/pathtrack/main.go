// Command pathtrack replays a recorded readings log against a waypoint path,
// writes the telemetry stream, stores the run and prints the run summary.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/pathtrack/internal/config"
	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/version"
)

var (
	configPath  = flag.String("config", "", "Tuning config file (.json, .yaml); package defaults when empty")
	waypoints   = flag.String("waypoints", "", "Waypoint CSV (overrides config waypoint_file)")
	readings    = flag.String("readings", "", "Readings CSV to replay (required)")
	outFile     = flag.String("out", "", "Telemetry output file (overrides config output_file)")
	dbPath      = flag.String("db", "", "Run database (overrides config database_path; \"-\" disables)")
	plotsDir    = flag.String("plots", "", "Directory for PNG charts")
	htmlFile    = flag.String("html", "", "HTML chart output file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("pathtrack"))
		return
	}
	if *readings == "" {
		log.Fatal("-readings is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	res, err := replay(fsutil.OSFileSystem{}, cfg, resolveOptions(cfg))
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	log.Printf("Run %s after %d ticks on a %.2f m path", res.Outcome, res.Ticks, res.PathLength)
	if res.RunID != "" {
		log.Printf("Run ID: %s", res.RunID)
	}
	fmt.Println(res.Summary.Line())
}

// resolveOptions merges command-line overrides over the tuning config.
func resolveOptions(cfg *config.TuningConfig) replayOptions {
	opts := replayOptions{
		WaypointFile: cfg.GetWaypointFile(),
		ReadingsFile: *readings,
		OutputFile:   cfg.GetOutputFile(),
		DatabasePath: cfg.GetDatabasePath(),
		PlotsDir:     *plotsDir,
		HTMLFile:     *htmlFile,
	}
	if *waypoints != "" {
		opts.WaypointFile = *waypoints
	}
	if *outFile != "" {
		opts.OutputFile = *outFile
	}
	switch *dbPath {
	case "":
	case "-":
		opts.DatabasePath = ""
	default:
		opts.DatabasePath = *dbPath
	}
	return opts
}
