// Command viprcomp completes a certificate whose "lin" derivations carry
// incomplete or weak payloads, writing a fully-specified certificate next
// to the input (or to --outfile).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/vipr/complete"
	"github.com/crillab/vipr/parser"
	"github.com/crillab/vipr/writer"
)

var (
	soplex    string
	verbosity int
	threads   int
	debugmode string
	outfile   string
)

func main() {
	cmd := &cobra.Command{
		Use:          "viprcomp <certificate-file>",
		Short:        "complete weak and incomplete derivations of a MIP certificate",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	cmd.Flags().StringVar(&soplex, "soplex", "off", "use an external SoPlex oracle (on/off); this build always falls back to the in-process oracle")
	cmd.Flags().IntVar(&verbosity, "verbosity", 0, "verbosity level (0-5)")
	cmd.Flags().IntVar(&threads, "threads", 0, "maximal number of completion workers (0 = one per CPU)")
	cmd.Flags().StringVar(&debugmode, "debugmode", "off", "extra debug output (on/off)")
	cmd.Flags().StringVar(&outfile, "outfile", "", "output path (default: input with _complete.vipr extension)")
	// Accept soplex=on style flags written with underscores too.
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string) error {
	log := newLogger(verbosity, debugmode == "on")
	if soplex == "on" {
		log.Warn("no external SoPlex oracle is compiled in; using the in-process exact oracle")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	model, parseErr := parser.Parse(f)
	f.Close()
	if parseErr != nil {
		log.Error(parseErr)
		return parseErr
	}

	engine := complete.NewEngine(model, complete.Options{
		Threads: threads,
		Logger:  log,
	})
	stats, err := engine.Run(context.Background())
	if err != nil {
		log.Error(err)
		return err
	}
	fmt.Printf("Completed %d out of %d derivations needing completion.\n", stats.Completed, stats.Total)

	dest := outfile
	if dest == "" {
		dest = completedName(path)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writer.Write(out, model); err != nil {
		log.Error(err)
		return err
	}
	fmt.Printf("Wrote %s\n", dest)
	if stats.Warnings > 0 {
		return fmt.Errorf("%d derivations left incomplete", stats.Warnings)
	}
	return nil
}

// completedName substitutes the input's extension with _complete.vipr.
func completedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_complete.vipr"
}

func newLogger(verbosity int, debug bool) *logrus.Logger {
	log := logrus.New()
	switch {
	case debug || verbosity >= 3:
		log.SetLevel(logrus.DebugLevel)
	case verbosity > 0:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
