package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"blockmotion/internal/logger"
	"blockmotion/pkg/config"
	"blockmotion/pkg/motion"
	"blockmotion/pkg/pgm"
)

const usage = "Usage: blockmotion [flags] <block-index>\n\nProgramme requires a block number as an argument!\n"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. The
// displacement and every fatal message go to stdout; the verbose summary goes
// to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("blockmotion", pflag.ContinueOnError)
	fs.SetOutput(stdout)

	configPath := fs.StringP("config", "c", "blockmotion.yaml", "Path to the YAML configuration file.")
	reference := fs.StringP("reference", "r", "", "Reference image the block is taken from.")
	target := fs.StringP("target", "t", "", "Target image that is searched.")
	byteOrder := fs.String("byte-order", "", "Byte order of 2-byte samples (native, little, big).")
	dumpDir := fs.String("dump-dir", "", "Directory to save debug images of the search.")
	dumpFormat := fs.String("dump-format", "", "Format of debug images (png, bmp, jpeg, pgm).")
	logFile := fs.String("log-file", "", "File to append log output to.")
	verbose := fs.BoolP("verbose", "v", false, "Log progress and print a summary to stderr.")
	fs.Usage = func() {
		fmt.Fprint(stdout, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(escapeNegativeIndex(args)); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	blockIndex, err := parseBlockIndex(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stdout, "Invalid block index: %v\n", err)
		fs.Usage()
		return 1
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stdout, "Configuration error: %v\n", err)
		return 1
	}
	if fs.Changed("reference") {
		cfg.Images.Reference = *reference
	}
	if fs.Changed("target") {
		cfg.Images.Target = *target
	}
	if fs.Changed("byte-order") {
		cfg.Images.ByteOrder = *byteOrder
	}
	if fs.Changed("dump-dir") {
		cfg.Dump.Dir = *dumpDir
	}
	if fs.Changed("dump-format") {
		cfg.Dump.Format = *dumpFormat
	}
	if fs.Changed("log-file") {
		cfg.Output.LogFile = *logFile
	}
	if fs.Changed("verbose") {
		cfg.Output.Verbose = *verbose
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "Configuration error: %v\n", err)
		return 1
	}

	closer, err := logger.Init(cfg.Output.LogFile, cfg.Output.Verbose)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer closer.Close()

	order, _ := pgm.ParseByteOrder(cfg.Images.ByteOrder)
	estimator := motion.NewEstimator(&motion.Params{
		ReferencePath: cfg.Images.Reference,
		TargetPath:    cfg.Images.Target,
		ByteOrder:     order,
		DumpDir:       cfg.Dump.Dir,
		DumpFormat:    cfg.Dump.Format,
	})

	estimate, err := estimator.Estimate(blockIndex)
	if err != nil {
		log.Printf("Motion estimation failed: %v", err)
		if errors.Is(err, pgm.ErrFileOpen) {
			fmt.Fprintf(stdout, "\n\n%v! Exiting...\n\n", err)
		} else {
			fmt.Fprintf(stdout, "Motion estimation failed: %v\n", err)
		}
		return 1
	}

	fmt.Fprintln(stdout, estimate.Vector)

	if cfg.Output.Verbose {
		printSummary(stderr, estimate)
	}
	return 0
}

// escapeNegativeIndex moves arguments that look like negative integers
// behind a "--" terminator so the flag parser treats them as positional
func escapeNegativeIndex(args []string) []string {
	var flags, positional []string
	for i, arg := range args {
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") {
			if _, err := strconv.ParseInt(arg, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
				positional = append(positional, arg)
				continue
			}
		}
		flags = append(flags, arg)
	}
	return append(append(flags, "--"), positional...)
}

// parseBlockIndex parses a signed decimal index. Values beyond the range of
// int saturate, since any out-of-range index is clamped later anyway.
func parseBlockIndex(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, strconv.IntSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return int(v), nil
}

func printSummary(w io.Writer, estimate *motion.Estimate) {
	labelStyle := lipgloss.NewStyle().Bold(true)
	vectorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	madStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	durationStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("202"))

	mean, std := estimate.SurfaceStats()
	rows, cols := estimate.Surface.Dims()

	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Block:"), estimate.BlockIndex)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Displacement:"), vectorStyle.Render(estimate.Vector.String()))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Minimum MAD:"), madStyle.Render(fmt.Sprintf("%f", estimate.MinMAD)))
	fmt.Fprintf(w, "%s %d (%dx%d), mean MAD %.3f, stddev %.3f\n",
		labelStyle.Render("Candidates:"), rows*cols, rows, cols, mean, std)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Elapsed:"),
		durationStyle.Render(fmt.Sprintf("%.4fs", estimate.Elapsed.Seconds())))
}
