// Command telemetry-dump reads a telemetry stream written at the end of a run
// and prints its buffer counts and summary statistics, optionally exporting
// CSV and charts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/version"
)

var (
	inFile      = flag.String("in", "telemetry.bin", "Telemetry stream to read")
	csvFile     = flag.String("csv", "", "Write samples as CSV to this file")
	plotsDir    = flag.String("plots", "", "Directory for PNG charts")
	htmlFile    = flag.String("html", "", "HTML chart output file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("telemetry-dump"))
		return
	}

	opts := dumpOptions{
		InFile:   *inFile,
		CSVFile:  *csvFile,
		PlotsDir: *plotsDir,
		HTMLFile: *htmlFile,
	}
	if err := dump(fsutil.OSFileSystem{}, opts, os.Stdout); err != nil {
		log.Fatalf("Dump failed: %v", err)
	}
}
