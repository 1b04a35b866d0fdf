package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/analysis"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
	"github.com/vmunix/glicol-verb/pkg/router"
)

func runParams(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("params", "", stderr)
	load := fs.String("load", "", "Show the values stored in a state file")
	showEQ := fs.Bool("eq", false, "Also print the EQ magnitude response")
	rate := fs.Float64("rate", dsp.SampleRate44k1, "Sample rate for -eq in Hz")
	var sets settings
	fs.Var(&sets, "set", "Apply name=value before listing (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := router.New(router.DefaultConfig())
	if err != nil {
		return err
	}
	if *load != "" {
		f, err := os.Open(*load)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		err = r.LoadState(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("load state %s: %w", *load, err)
		}
	}
	if err := sets.apply(r.Parameters()); err != nil {
		return err
	}
	if err := listParameters(stdout, r.Parameters()); err != nil {
		return err
	}
	if !*showEQ {
		return nil
	}
	if *rate < 2*eqBands[len(eqBands)-1] {
		return fmt.Errorf("-rate %g Hz is too low to measure up to %g Hz", *rate, eqBands[len(eqBands)-1])
	}
	fmt.Fprintln(stdout)
	return listResponse(stdout, r.EQResponse(*rate, eqResponseSize))
}

// eqBands are the octave centres listResponse reports.
var eqBands = []float64{31.5, 63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// eqResponseSize gives under 3 Hz per bin at 44.1 kHz.
const eqResponseSize = 16384

func listResponse(w io.Writer, resp *analysis.Response) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FREQ\tGAIN\t")
	for _, f := range eqBands {
		fmt.Fprintf(tw, "%g Hz\t%+.1f dB\t\n", f, resp.GainDBAt(f))
	}
	return tw.Flush()
}

// listParameters prints one row per parameter with its display strings.
func listParameters(w io.Writer, reg *param.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVALUE\tDEFAULT\tRANGE")
	for _, p := range reg.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s .. %s\n",
			p.ShortName,
			p.FormatValue(p.GetValue()),
			p.FormatValue(p.DefaultValue),
			p.FormatValue(0), p.FormatValue(1))
	}
	return tw.Flush()
}
