// Package cli holds what the gortl commands share: flag types, logger setup
// and opening a dongle with its tuner.
package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/physic"
)

// Frequency is a pflag.Value accepting "100MHz", "2.048MHz" or plain Hz
type Frequency struct {
	physic.Frequency
}

// Set parses a frequency. Numbers without a unit are taken as Hz.
func (f *Frequency) Set(s string) error {
	if hz, err := strconv.ParseUint(s, 10, 32); err == nil {
		f.Frequency = physic.Frequency(hz) * physic.Hertz
		return nil
	}
	var v physic.Frequency
	if err := v.Set(s); err != nil {
		return err
	}
	if v < 0 || v/physic.Hertz > math.MaxUint32 {
		return fmt.Errorf("frequency %s out of range", v)
	}
	f.Frequency = v
	return nil
}

// Type implements pflag.Value
func (f *Frequency) Type() string {
	return "frequency"
}

// Hz returns the frequency in whole Hz
func (f *Frequency) Hz() uint32 {
	return uint32(f.Frequency / physic.Hertz)
}

// FrequencyP defines a frequency flag with a shorthand
func FrequencyP(fs *pflag.FlagSet, name, shorthand string, hz uint32, usage string) *Frequency {
	f := &Frequency{Frequency: physic.Frequency(hz) * physic.Hertz}
	fs.VarP(f, name, shorthand, usage)
	return f
}

var _ pflag.Value = (*Frequency)(nil)
