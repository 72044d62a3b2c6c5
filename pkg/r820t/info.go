package r820t

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// TunerInfo describes a tuner chip to the surrounding device driver
type TunerInfo struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	I2CAddr   uint16 `json:"i2c_addr" yaml:"i2c_addr"`
	CheckAddr uint8  `json:"check_addr" yaml:"check_addr"`
	CheckVal  uint8  `json:"check_val" yaml:"check_val"`
}

// Info is the descriptor of the Rafael Micro R820T
var Info = TunerInfo{
	ID:        "r820t",
	Name:      "Rafael Micro R820T",
	I2CAddr:   0x34,
	CheckAddr: 0x00,
	CheckVal:  0x69,
}

// Probe reports whether an R820T answers on bus. The check byte is compared
// as it arrives from the bridge, before bit reversal.
func Probe(bus i2c.Bus) (bool, error) {
	dev := i2c.Dev{Bus: bus, Addr: Info.I2CAddr}
	buf := make([]byte, 1)
	if err := dev.Tx([]byte{Info.CheckAddr}, buf); err != nil {
		return false, fmt.Errorf("probe %s: %w", Info.ID, err)
	}
	return buf[0] == Info.CheckVal, nil
}
