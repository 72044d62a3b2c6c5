package rtl2832

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// bridge exposes the demodulator's I2C block as an i2c.Bus. Addresses are
// the 8-bit write addresses the dongle firmware expects, 0x34 for an R820T.
// The repeater must be open for transfers to reach the tuner.
type bridge struct {
	dev *Device
}

// I2CBus returns the I2C bus behind the demodulator
func (d *Device) I2CBus() i2c.Bus {
	return &bridge{dev: d}
}

func (b *bridge) String() string {
	return fmt.Sprintf("rtl2832-i2c(%s)", b.dev.Serial)
}

// Tx writes w then reads into r, each as one IICB transfer
func (b *bridge) Tx(addr uint16, w, r []byte) error {
	if addr > 0xff {
		return fmt.Errorf("rtl2832: i2c address 0x%X out of range", addr)
	}
	if len(w) > 0 {
		if err := b.dev.WriteArray(BlockI2C, addr, w); err != nil {
			return fmt.Errorf("i2c write to 0x%02X: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if err := b.dev.ReadArray(BlockI2C, addr, r); err != nil {
			return fmt.Errorf("i2c read from 0x%02X: %w", addr, err)
		}
	}
	return nil
}

// SetSpeed is a no-op; the bridge clock is fixed by the demodulator
func (b *bridge) SetSpeed(f physic.Frequency) error {
	return nil
}

var _ i2c.Bus = (*bridge)(nil)
