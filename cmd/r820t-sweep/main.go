// r820t-sweep: Sweep an R820T across a frequency range and report PLL lock
//
// This tool steps the tuner from a start to a stop frequency and records at
// each step whether the PLL locked, failed to lock, or could not be
// programmed at all. Use --sim to sweep the simulated chip instead of a
// dongle.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/gousb"
	"github.com/spf13/pflag"

	"github.com/herlein/gortl/internal/cli"
	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/r820t/r820ttest"
	"github.com/herlein/gortl/pkg/rtl2832"
	"github.com/herlein/gortl/pkg/sweep"
)

var (
	start      = cli.FrequencyP(pflag.CommandLine, "start", "", sweep.DefaultStartHz, "Start frequency")
	stop       = cli.FrequencyP(pflag.CommandLine, "stop", "", sweep.DefaultStopHz, "Stop frequency")
	step       = cli.FrequencyP(pflag.CommandLine, "step", "", sweep.DefaultStepHz, "Step size")
	bandwidth  = cli.FrequencyP(pflag.CommandLine, "bandwidth", "b", 0, "IF bandwidth (0 = sample rate)")
	sampleRate = cli.FrequencyP(pflag.CommandLine, "sample-rate", "s", 2048000, "Sample rate")
	dwell      = pflag.Duration("dwell", sweep.DefaultDwell, "Wait after each step")
	duration   = pflag.Duration("duration", 0, "Sweep duration limit (0 = until done)")
	configFile = pflag.StringP("config", "c", "", "Sweep configuration file (JSON or YAML)")
	rtlXtal    = cli.FrequencyP(pflag.CommandLine, "rtl-xtal", "", rtl2832.DefaultXtalHz, "RTL2832U crystal frequency")
	deviceSel  = pflag.StringP("device", "d", "", rtl2832.DeviceFlagUsage())
	sim        = pflag.Bool("sim", false, "Sweep the simulated chip")
	quiet      = pflag.BoolP("quiet", "q", false, "Only print the summary")
	verbose    = pflag.BoolP("verbose", "v", false, "Verbose output")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "R820T PLL lock sweep\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --start 24MHz --stop 1.8GHz --step 10MHz  # Whole range\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --sim -q                                  # Simulated chip, summary only\n", os.Args[0])
	}
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sweepConfig starts from the config file when one is given and lets flags
// set on the command line override it
func sweepConfig(flags *pflag.FlagSet, logger *log.Logger) (sweep.Config, error) {
	cfg := sweep.DefaultConfig()
	if *configFile != "" {
		loaded, err := sweep.LoadConfigFile(*configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if *configFile == "" || flags.Changed("start") {
		cfg.StartHz = start.Hz()
	}
	if *configFile == "" || flags.Changed("stop") {
		cfg.StopHz = stop.Hz()
	}
	if *configFile == "" || flags.Changed("step") {
		cfg.StepHz = step.Hz()
	}
	if *configFile == "" || flags.Changed("dwell") {
		cfg.Dwell = *dwell
	}
	cfg.Logger = logger
	return cfg, cfg.Validate()
}

func run() error {
	logger := cli.NewLogger(os.Stderr, r820t.Info.ID, *verbose)
	cfg, err := sweepConfig(pflag.CommandLine, logger)
	if err != nil {
		return err
	}

	var tuner sweep.Tuner
	if *sim {
		t := r820t.New(r820ttest.NewChip(), &r820ttest.Demod{}, r820t.WithLogger(log.New(io.Discard)))
		if err := t.Initialize(); err != nil {
			return err
		}
		if _, err := t.SetBandwidth(bandwidth.Hz(), sampleRate.Hz()); err != nil {
			return err
		}
		tuner = t
	} else {
		usb := gousb.NewContext()
		defer usb.Close()

		radio, err := cli.Open(usb, rtl2832.DeviceSelector(*deviceSel), rtlXtal.Hz(), logger)
		if err != nil {
			return err
		}
		defer radio.Close()

		if _, err := radio.SetBandwidth(bandwidth.Hz(), sampleRate.Hz()); err != nil {
			return err
		}
		tuner = radio
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	fmt.Printf("Sweeping %.3f-%.3f MHz in %d steps... (Press Ctrl+C to stop)\n",
		float64(cfg.StartHz)/1e6, float64(cfg.StopHz)/1e6, cfg.Steps())
	if !*quiet {
		fmt.Println("\n Freq (MHz)     | Outcome     | LO (MHz)       | MixDiv | N  | SDM")
		fmt.Println("----------------+-------------+----------------+--------+----+-------")
	}

	results := make(chan sweep.Result)
	errc := make(chan error, 1)
	go func() {
		errc <- sweep.Run(ctx, tuner, cfg, results)
	}()

	var all []sweep.Result
	for r := range results {
		all = append(all, r)
		if !*quiet {
			fmt.Printf(" %14.6f | %-11s | %14.6f | %6d | %2d | 0x%04X\n",
				float64(r.FrequencyHz)/1e6, r.Outcome, float64(r.PLL.LOHz)/1e6, r.PLL.MixDiv, r.PLL.N, r.PLL.SDM)
		}
	}
	sweepErr := <-errc

	printSummary(sweep.Summarize(all))

	if errors.Is(sweepErr, context.Canceled) || errors.Is(sweepErr, context.DeadlineExceeded) {
		fmt.Println("\nSweep stopped early")
		return nil
	}
	return sweepErr
}

func printSummary(s sweep.Summary) {
	fmt.Println("\nSummary:")
	fmt.Printf("  Locked:       %d\n", s.Locked)
	fmt.Printf("  Unlocked:     %d\n", s.Unlocked)
	fmt.Printf("  Unreachable:  %d\n", s.Unreachable)
	fmt.Println("\nSpans:")
	for _, span := range s.Spans {
		fmt.Printf("  %12.6f - %12.6f MHz  %-11s (%d steps)\n",
			float64(span.StartHz)/1e6, float64(span.StopHz)/1e6, span.Outcome, span.Steps)
	}
}
