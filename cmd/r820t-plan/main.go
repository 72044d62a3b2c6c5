// r820t-plan: Print the R820T register programming for a tune, offline
//
// This tool runs the tuner driver against a simulated chip and prints every
// I2C frame it would send, followed by the resulting PLL, filter and
// register state. No hardware is needed.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/herlein/gortl/internal/cli"
	"github.com/herlein/gortl/pkg/config"
	"github.com/herlein/gortl/pkg/profiles"
	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/r820t/r820ttest"
	"github.com/herlein/gortl/pkg/registers"
)

var (
	freq       = cli.FrequencyP(pflag.CommandLine, "freq", "f", 100000000, "Centre frequency (e.g. 100MHz, 1.09GHz)")
	bandwidth  = cli.FrequencyP(pflag.CommandLine, "bandwidth", "b", 0, "IF bandwidth (0 = sample rate)")
	sampleRate = cli.FrequencyP(pflag.CommandLine, "sample-rate", "s", 2048000, "Sample rate")
	xtal       = cli.FrequencyP(pflag.CommandLine, "xtal", "x", r820t.DefaultCrystalHz, "Tuner crystal frequency")
	capMode    = pflag.String("cap", r820t.XtalLowCap30p.String(), "Crystal cap mode (low-30p, low-20p, low-10p, low-0p, high-0p)")
	profile    = pflag.StringP("profile", "p", "", "Plan a named profile instead of the tuning flags")
	lockMode   = pflag.String("lock", "always", "Simulated PLL lock behaviour (always, never, boost)")
	fineTune   = pflag.Uint8("fine-tune", 2, "Simulated VCO fine tune reading (0-3)")
	outputFile = pflag.StringP("output", "o", "", "Save the resulting snapshot (JSON or YAML by extension)")
	generate   = pflag.String("generate", "", "Write every profile with its plan into this directory and exit")
	genFormat  = pflag.String("format", "json", "File format for --generate (json, yaml)")
	quiet      = pflag.BoolP("quiet", "q", false, "Only print the summary, not the frames")
	verbose    = pflag.BoolP("verbose", "v", false, "Show driver debug logging")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Offline R820T register planner\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseLockMode(s string) (r820ttest.LockMode, error) {
	switch s {
	case "always":
		return r820ttest.LockAlways, nil
	case "never":
		return r820ttest.LockNever, nil
	case "boost":
		return r820ttest.LockAfterBoost, nil
	}
	return 0, fmt.Errorf("unknown lock mode %q", s)
}

func run() error {
	lock, err := parseLockMode(*lockMode)
	if err != nil {
		return err
	}

	if *generate != "" {
		return generateProfiles(*generate, lock)
	}

	cfg := config.Default()
	cfg.FrequencyHz = freq.Hz()
	cfg.BandwidthHz = bandwidth.Hz()
	cfg.SampleRateHz = sampleRate.Hz()
	cfg.CrystalHz = xtal.Hz()
	cfg.CapMode = *capMode
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	chip := r820ttest.NewChip()
	chip.Lock = lock
	chip.FineTune = *fineTune
	rec := &i2ctest.Record{Bus: chip}
	demod := &r820ttest.Demod{}

	logger := cli.NewLogger(os.Stderr, r820t.Info.ID, *verbose)
	tuner := r820t.New(rec, demod, append(opts, r820t.WithLogger(logger))...)
	if err := tuner.Initialize(); err != nil {
		return err
	}

	var applyErr error
	if *profile != "" {
		p, err := profiles.Get(*profile)
		if err != nil {
			return err
		}
		applyErr = profiles.Apply(tuner, p)
	} else {
		applyErr = config.ApplyToTuner(tuner, cfg)
	}
	if applyErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", applyErr)
	}

	if !*quiet {
		printDemod(demod)
		printFrames(rec.Ops)
	}

	snapshot := config.DumpFromTuner(tuner)
	printSummary(snapshot, tuner.Registers())

	if *outputFile != "" {
		if err := config.SaveToFile(snapshot, *outputFile); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Printf("Snapshot saved to: %s\n", *outputFile)
	}
	return nil
}

func generateProfiles(dir string, lock r820ttest.LockMode) error {
	ext := "." + *genFormat
	if ext != ".json" && ext != ".yaml" {
		return fmt.Errorf("unknown format %q", *genFormat)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	planner := func(p *profiles.Profile) (*config.Snapshot, error) {
		chip := r820ttest.NewChip()
		chip.Lock = lock
		chip.FineTune = *fineTune
		return p.Plan(chip, &r820ttest.Demod{})
	}
	if err := profiles.GenerateProfiles(dir, ext, planner); err != nil {
		return err
	}
	fmt.Printf("Wrote %d profiles to %s\n", len(profiles.All()), dir)
	return nil
}

func printDemod(demod *r820ttest.Demod) {
	fmt.Println("Demodulator:")
	for _, w := range demod.Writes {
		fmt.Printf("  page %d reg 0x%02X = 0x%02X\n", w.Page, w.Addr, w.Val)
	}
	fmt.Printf("  IF = %d Hz\n\n", demod.IFHz)
}

func printFrames(ops []i2ctest.IO) {
	fmt.Println("I2C frames:")
	for i, op := range ops {
		if len(op.R) > 0 {
			fmt.Printf("  %4d  R 0x%02X  %s\n", i, op.Addr, hexBytes(op.R))
			continue
		}
		reg := op.W[0]
		fmt.Printf("  %4d  W 0x%02X  [%-14s] %s\n", i, op.Addr, registers.Name(reg), hexBytes(op.W[1:]))
	}
	fmt.Println()
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, " ")
}

func printSummary(s *config.Snapshot, regs [registers.ShadowCount]uint8) {
	fmt.Println("Plan:")
	fmt.Printf("  Frequency:    %.6f MHz\n", float64(s.FrequencyHz)/1e6)
	fmt.Printf("  IF:           %.3f MHz\n", float64(s.IFHz)/1e6)
	fmt.Printf("  LO:           %.6f MHz (reconstructed %.6f MHz)\n",
		float64(s.PLL.LOHz)/1e6, float64(s.PLL.ReconstructHz())/1e6)
	fmt.Printf("  VCO:          %.3f MHz / %d\n", float64(s.PLL.VCOHz)/1e6, s.PLL.MixDiv)
	fmt.Printf("  PLL:          %s, N %d, SDM 0x%04X, div_num %d, fine tune %d, %d attempt(s)\n",
		s.PLL.State, s.PLL.N, s.PLL.SDM, s.PLL.DivNum, s.PLL.FineTune, s.PLL.Attempts)
	fmt.Printf("  Filter:       %d Hz achieved, reg 0x0a = 0x%02X, reg 0x0b = 0x%02X\n",
		s.Filter.AchievedHz, s.Filter.Reg0A, s.Filter.Reg0B)

	fmt.Println("\nRegisters:")
	for i, v := range regs {
		if i%8 == 0 {
			fmt.Printf("  0x%02x:", registers.ShadowStart+i)
		}
		fmt.Printf(" %02x", v)
		if i%8 == 7 || i == len(regs)-1 {
			fmt.Println()
		}
	}
}
