// Command viprchk verifies a certificate file: it parses the certificate,
// checks every declared solution, walks the derivation list, and exits 0
// iff the relation to prove is discharged.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/vipr/checker"
	"github.com/crillab/vipr/parser"
)

var verbosity int

func main() {
	cmd := &cobra.Command{
		Use:          "viprchk <certificate-file>",
		Short:        "verify a MIP certificate in exact rational arithmetic",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	cmd.Flags().IntVar(&verbosity, "verbosity", 0, "verbosity level (0-5)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string) error {
	log := newLogger(verbosity)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	model, err := parser.Parse(f)
	if err != nil {
		log.Error(err)
		return err
	}
	res, err := checker.New(model, logrus.NewEntry(log)).Check()
	if err != nil {
		log.Error(err)
		return err
	}
	if res.BestSolutionValue != nil {
		fmt.Printf("Best objval over all solutions: %s\n", res.BestSolutionValue)
	}
	fmt.Println("Successfully verified.")
	return nil
}

// newLogger maps the 0..5 verbosity scale onto logrus levels: 0 warns
// only, 5 traces every derivation.
func newLogger(verbosity int) *logrus.Logger {
	log := logrus.New()
	switch {
	case verbosity <= 0:
		log.SetLevel(logrus.WarnLevel)
	case verbosity <= 2:
		log.SetLevel(logrus.InfoLevel)
	case verbosity <= 4:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.TraceLevel)
	}
	return log
}
