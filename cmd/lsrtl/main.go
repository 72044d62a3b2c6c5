// lsrtl: List all connected RTL2832U dongles
//
// This tool enumerates all RTL2832U dongles connected to the system and
// displays their serial numbers and, with -v, the tuner found behind each.
package main

import (
	"fmt"
	"os"

	"github.com/google/gousb"
	"github.com/spf13/pflag"

	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/rtl2832"
)

func main() {
	verbose := pflag.BoolP("verbose", "v", false, "Verbose output (probe the tuner of each device)")
	pflag.Parse()

	// Create USB context
	context := gousb.NewContext()
	defer context.Close()

	devices, err := rtl2832.FindAllDevices(context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No RTL2832U devices found")
		os.Exit(0)
	}

	fmt.Printf("Found %d RTL2832U device(s):\n", len(devices))
	fmt.Println()

	for i, device := range devices {
		defer device.Close()

		if *verbose {
			fmt.Printf("Device #%d:\n", i)
			fmt.Printf("  Serial:       %s\n", device.Serial)
			fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
			fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
			fmt.Printf("  Product:      %s\n", device.Product)
			fmt.Printf("  Model:        %s\n", device.Name)
			fmt.Printf("  Tuner:        %s\n", probeTuner(device))
			fmt.Println()
		} else {
			fmt.Printf("  #%d  %s  %d:%d  %s\n", i, device.Serial, device.Bus, device.Address, device.Name)
		}
	}

	if !*verbose {
		fmt.Println()
		fmt.Println("Use -d flag with other tools to select device:")
		fmt.Println("  -d \"#0\"        Select by index")
		fmt.Println("  -d \"1:10\"      Select by bus:address")
		fmt.Println("  -d \"00000001\"  Select by serial (if unique)")
	}
}

// probeTuner reports whether an R820T answers behind the demodulator
func probeTuner(device *rtl2832.Device) string {
	if err := device.InitBaseband(); err != nil {
		return fmt.Sprintf("(error: %v)", err)
	}

	var found bool
	err := device.WithRepeater(func() error {
		var err error
		found, err = r820t.Probe(device.I2CBus())
		return err
	})
	switch {
	case err != nil:
		return fmt.Sprintf("(error: %v)", err)
	case found:
		return fmt.Sprintf("%s at 0x%02X", r820t.Info.Name, r820t.Info.I2CAddr)
	default:
		return "unknown"
	}
}
