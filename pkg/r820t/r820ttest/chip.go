// Package r820ttest provides an in-memory R820T and demodulator for tests
// and offline register planning.
package r820ttest

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"

	"github.com/herlein/gortl/pkg/registers"
)

// LockMode controls when the simulated PLL reports lock
type LockMode int

const (
	// LockAlways reports lock on every poll
	LockAlways LockMode = iota
	// LockNever never reports lock
	LockNever
	// LockAfterBoost reports lock once the VCO current code is 0b011 or lower
	LockAfterBoost
)

const chipID = 0x96

// Chip simulates an R820T on an I2C bus. Reads always start at register 0
// and come back bit-reversed, as they do through the RTL2832U bridge.
type Chip struct {
	mu sync.Mutex

	Addr     uint16
	Regs     [32]uint8
	Lock     LockMode
	FineTune uint8 // VCO fine tune field, 0-3
	Frames   [][]byte
	Reads    int
}

// NewChip returns a chip at the R820T address that locks immediately and
// reports a centred VCO
func NewChip() *Chip {
	c := &Chip{Addr: 0x34, FineTune: 2}
	c.Regs[0] = chipID
	return c
}

func (c *Chip) String() string {
	return fmt.Sprintf("r820ttest.Chip(0x%02X)", c.Addr)
}

// SetSpeed accepts any speed
func (c *Chip) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if addr != c.Addr {
		return fmt.Errorf("r820ttest: no ack from 0x%02X", addr)
	}

	if len(r) > 0 {
		c.Reads++
		status := c.status()
		for i := range r {
			var v uint8
			if i < len(status) {
				v = status[i]
			}
			r[i] = registers.Reverse(v)
		}
		return nil
	}

	if len(w) == 0 {
		return nil
	}
	if len(w) > registers.MaxI2CMsgLen {
		return fmt.Errorf("r820ttest: %d byte frame exceeds %d", len(w), registers.MaxI2CMsgLen)
	}
	reg := int(w[0])
	if reg+len(w)-1 > len(c.Regs) {
		return fmt.Errorf("r820ttest: write past register 0x%02X", len(c.Regs)-1)
	}

	frame := make([]byte, len(w))
	copy(frame, w)
	c.Frames = append(c.Frames, frame)
	copy(c.Regs[reg:], w[1:])
	return nil
}

func (c *Chip) status() []uint8 {
	status := make([]uint8, len(c.Regs))
	copy(status, c.Regs[:])

	locked := false
	switch c.Lock {
	case LockAlways:
		locked = true
	case LockAfterBoost:
		locked = c.Regs[registers.RegVCOCurrent]&0xe0 <= 0x60
	}
	if locked {
		status[registers.StatusLockByte] |= registers.StatusLockBit
	} else {
		status[registers.StatusLockByte] &^= registers.StatusLockBit
	}

	status[registers.StatusFineTuneByte] &^= registers.StatusFineTuneMask
	status[registers.StatusFineTuneByte] |= (c.FineTune << 4) & registers.StatusFineTuneMask
	return status
}

// Reg returns the current value of a register
func (c *Chip) Reg(reg uint8) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Regs[reg]
}

// FramesTo returns the frames that wrote reg, in order
func (c *Chip) FramesTo(reg uint8) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out [][]byte
	for _, f := range c.Frames {
		if reg >= f[0] && int(reg) < int(f[0])+len(f)-1 {
			out = append(out, f)
		}
	}
	return out
}

// Reset clears the recorded frames and read count
func (c *Chip) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Frames = nil
	c.Reads = 0
}
