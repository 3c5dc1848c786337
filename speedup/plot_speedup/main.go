// Command plot_speedup renders the speedup curve of every
// run recorded in the results log.
package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/devalvesg/hpc/resultlog"
	"github.com/devalvesg/hpc/speedup"
	"github.com/unixpickle/essentials"
)

func main() {
	var resultsDir string
	var outPath string
	flag.StringVar(&resultsDir, "results", "results", "directory containing the results log")
	flag.StringVar(&outPath, "out", "", "chart path (default <results>/speedup.png)")
	flag.Parse()

	log.SetPrefix("plot_speedup: ")

	if outPath == "" {
		outPath = filepath.Join(resultsDir, speedup.DefaultFilename)
	}
	resultsLog := resultlog.NewLog(resultsDir)

	_, err := speedup.Report(resultsLog, outPath, os.Stdout)
	if errors.Is(err, resultlog.ErrMissingLog) {
		essentials.Die("no results log found:", resultsLog.Path)
	} else if errors.Is(err, speedup.ErrMissingBaseline) {
		essentials.Die("no run with 1 process to use as a baseline in", resultsLog.Path)
	} else if err != nil {
		essentials.Die(err)
	}
	log.Println("chart saved to", outPath)
}
