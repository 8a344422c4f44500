package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"blockmotion/pkg/histogram"
	"blockmotion/pkg/pgm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run prints the relative frequency of each of the 16 top-four-bit groups of
// a PGM image, one "<group> <frequency>" line per group
func run(args []string, stdout io.Writer) int {
	fs := pflag.NewFlagSet("pgmhist", pflag.ContinueOnError)
	fs.SetOutput(stdout)

	byteOrder := fs.String("byte-order", "native", "Byte order of 2-byte samples (native, little, big).")
	entropy := fs.BoolP("entropy", "e", false, "Also print the entropy of the group distribution in bits.")
	fs.Usage = func() {
		fmt.Fprintln(stdout, "Usage: pgmhist [flags] <image.pgm>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stdout, "\nA file in PGM format is required as an argument...")
		fs.Usage()
		return 1
	}

	order, err := pgm.ParseByteOrder(*byteOrder)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return 1
	}

	h, err := histogram.Compute(fs.Arg(0), order)
	if err != nil {
		fmt.Fprintf(stdout, "\nFailed to read image: %v\n", err)
		return 1
	}

	for group, freq := range h.Frequencies {
		fmt.Fprintf(stdout, "%d %f\n", group, freq)
	}
	if *entropy {
		fmt.Fprintf(stdout, "entropy %f\n", h.Entropy())
	}
	return 0
}
