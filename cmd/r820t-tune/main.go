// r820t-tune: Tune an RTL-SDR dongle's R820T
//
// This tool opens a dongle, initializes the tuner and applies a gain mode,
// IF bandwidth and centre frequency, either from flags, a configuration file
// or a named profile. The resulting tuner state can be saved as a snapshot.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/gousb"
	"github.com/spf13/pflag"

	"github.com/herlein/gortl/internal/cli"
	"github.com/herlein/gortl/pkg/config"
	"github.com/herlein/gortl/pkg/profiles"
	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/rtl2832"
)

var (
	freq       = cli.FrequencyP(pflag.CommandLine, "freq", "f", 100000000, "Centre frequency (e.g. 100MHz, 1.09GHz)")
	bandwidth  = cli.FrequencyP(pflag.CommandLine, "bandwidth", "b", 0, "IF bandwidth (0 = sample rate)")
	sampleRate = cli.FrequencyP(pflag.CommandLine, "sample-rate", "s", 2048000, "Sample rate")
	xtal       = cli.FrequencyP(pflag.CommandLine, "xtal", "x", r820t.DefaultCrystalHz, "Tuner crystal frequency")
	capMode    = pflag.String("cap", r820t.XtalLowCap30p.String(), "Crystal cap mode (low-30p, low-20p, low-10p, low-0p, high-0p)")
	gain       = pflag.StringP("gain", "g", "auto", "Gain mode (auto, manual)")
	gainLevel  = pflag.Int("gain-level", 0, "Manual gain in tenths of a dB")
	profile    = pflag.StringP("profile", "p", "", "Apply a named profile instead of the tuning flags")
	configFile = pflag.StringP("config", "c", "", "Tuner configuration file (JSON or YAML)")
	rtlXtal    = cli.FrequencyP(pflag.CommandLine, "rtl-xtal", "", rtl2832.DefaultXtalHz, "RTL2832U crystal frequency")
	deviceSel  = pflag.StringP("device", "d", "", rtl2832.DeviceFlagUsage())
	outputFile = pflag.StringP("output", "o", "", "Save a snapshot (default: etc/rtlsdr/<serial>.json with --save)")
	save       = pflag.Bool("save", false, "Save a snapshot to the default path")
	jsonOutput = pflag.Bool("json", false, "Print the snapshot to stdout as JSON")
	listOnly   = pflag.BoolP("list-profiles", "l", false, "List profiles and exit")
	verbose    = pflag.BoolP("verbose", "v", false, "Verbose output")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Tune the R820T of an RTL-SDR dongle\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -f 144.39MHz -b 200kHz        # Tune to 2 m APRS\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -p adsb -o adsb.yaml          # Apply a profile, save a snapshot\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c etc/tuner.yaml --json      # Apply a config file, print state\n", os.Args[0])
	}
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *listOnly {
		for _, name := range profiles.List() {
			p, _ := profiles.Get(name)
			fmt.Printf("  %-16s %s\n", name, p.Description)
		}
		return nil
	}

	cfg, err := tunerConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	usb := gousb.NewContext()
	defer usb.Close()

	logger := cli.NewLogger(os.Stderr, r820t.Info.ID, *verbose)
	radio, err := cli.Open(usb, rtl2832.DeviceSelector(*deviceSel), rtlXtal.Hz(), logger, opts...)
	if err != nil {
		return err
	}
	defer radio.Close()

	if *verbose {
		fmt.Printf("Connected to: %s\n", radio.Device)
	}

	var tuneErr error
	if *profile != "" {
		p, err := profiles.Get(*profile)
		if err != nil {
			return err
		}
		tuneErr = radio.ApplyProfile(p)
	} else {
		tuneErr = radio.Apply(cfg)
	}

	// an unlocked PLL still leaves a state worth reporting
	if tuneErr != nil && !errors.Is(tuneErr, r820t.ErrPLLNotLocked) {
		return tuneErr
	}

	snapshot := radio.Snapshot()
	if *jsonOutput {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printSummary(snapshot)
	}

	path := *outputFile
	if path == "" && *save {
		path = config.GetConfigPath(radio.Device.Serial)
	}
	if path != "" {
		if err := config.SaveToFile(snapshot, path); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Printf("Snapshot saved to: %s\n", path)
	}

	return tuneErr
}

// tunerConfig builds the configuration from the file, if any, and the flags
// given on the command line
func tunerConfig() (config.TunerConfig, error) {
	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.LoadTunerConfig(*configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := pflag.CommandLine
	if *configFile == "" || flags.Changed("freq") {
		cfg.FrequencyHz = freq.Hz()
	}
	if *configFile == "" || flags.Changed("bandwidth") {
		cfg.BandwidthHz = bandwidth.Hz()
	}
	if *configFile == "" || flags.Changed("sample-rate") {
		cfg.SampleRateHz = sampleRate.Hz()
	}
	if *configFile == "" || flags.Changed("xtal") {
		cfg.CrystalHz = xtal.Hz()
	}
	if *configFile == "" || flags.Changed("cap") {
		cfg.CapMode = *capMode
	}
	if *configFile == "" || flags.Changed("gain") || flags.Changed("gain-level") {
		cfg.Gain = *gain
		cfg.GainLevel = *gainLevel
	}
	return cfg, cfg.Validate()
}

func printSummary(s *config.Snapshot) {
	fmt.Println("\nTuner State:")
	fmt.Printf("  Tuner:        %s\n", s.Tuner.Name)
	fmt.Printf("  Frequency:    %.6f MHz\n", float64(s.FrequencyHz)/1e6)
	fmt.Printf("  IF:           %.3f MHz\n", float64(s.IFHz)/1e6)
	fmt.Printf("  LO:           %.6f MHz\n", float64(s.PLL.LOHz)/1e6)
	fmt.Printf("  PLL:          %s (mixdiv %d, N %d, SDM 0x%04X, %d attempt(s))\n",
		s.PLL.State, s.PLL.MixDiv, s.PLL.N, s.PLL.SDM, s.PLL.Attempts)
	fmt.Printf("  Filter:       %.3f MHz achieved (reg 0x0b = 0x%02X)\n", float64(s.Filter.AchievedHz)/1e6, s.Filter.Reg0B)
	fmt.Printf("  Cap Mode:     %s\n", s.CapMode)
	fmt.Printf("  Gain:         %s\n", s.Gain)
}
