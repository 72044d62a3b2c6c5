package registers

import (
	"fmt"

	"periph.io/x/conn/v3"
)

// Shadow mirrors the last value written to each register of the writable
// window so masked updates never need a device read. It is filled only by
// writes; reads from the device bypass it.
type Shadow struct {
	conn    conn.Conn
	values  [ShadowCount]uint8
	written [ShadowCount]bool
}

// NewShadow creates an empty shadow that transmits through c
func NewShadow(c conn.Conn) *Shadow {
	return &Shadow{conn: c}
}

func index(reg uint8, length int) (int, error) {
	if !InWindow(reg) || int(reg)+length > ShadowStart+ShadowCount {
		return 0, fmt.Errorf("%w: 0x%02X (+%d)", ErrOutOfRange, reg, length)
	}
	return int(reg) - ShadowStart, nil
}

// ReadCached returns the shadow value of reg
func (s *Shadow) ReadCached(reg uint8) (uint8, error) {
	i, err := index(reg, 1)
	if err != nil {
		return 0, err
	}
	if !s.written[i] {
		return 0, fmt.Errorf("%w: 0x%02X", ErrUninitialized, reg)
	}
	return s.values[i], nil
}

// MaskedWrite replaces the bits of reg selected by mask with those of value
// and transmits the resulting byte. A full mask does not need a prior write.
func (s *Shadow) MaskedWrite(reg, value, mask uint8) error {
	var current uint8
	if mask != 0xff {
		rc, err := s.ReadCached(reg)
		if err != nil {
			return err
		}
		current = rc
	} else if _, err := index(reg, 1); err != nil {
		return err
	}

	applied := (current &^ mask) | (value & mask)
	return s.BulkWrite(reg, []byte{applied})
}

// BulkWrite stores data in the shadow starting at reg and transmits it in
// frames of one address byte followed by at most MaxI2CMsgLen-1 data bytes.
func (s *Shadow) BulkWrite(reg uint8, data []byte) error {
	start, err := index(reg, len(data))
	if err != nil {
		return err
	}
	for i, b := range data {
		s.values[start+i] = b
		s.written[start+i] = true
	}

	for offset := 0; offset < len(data); {
		size := len(data) - offset
		if size > MaxI2CMsgLen-1 {
			size = MaxI2CMsgLen - 1
		}

		frame := make([]byte, size+1)
		frame[0] = reg + uint8(offset)
		copy(frame[1:], data[offset:offset+size])

		if err := s.conn.Tx(frame, nil); err != nil {
			return fmt.Errorf("i2c write at 0x%02X failed: %w", frame[0], err)
		}
		offset += size
	}
	return nil
}

// Read fetches len(buf) registers from the device starting at reg and
// undoes the bridge's bit reversal. The shadow is left untouched.
func (s *Shadow) Read(reg uint8, buf []byte) error {
	if err := s.conn.Tx([]byte{reg}, buf); err != nil {
		return fmt.Errorf("i2c read at 0x%02X failed: %w", reg, err)
	}
	ReverseAll(buf)
	return nil
}

// Snapshot returns a copy of the shadow window
func (s *Shadow) Snapshot() [ShadowCount]uint8 {
	return s.values
}

// Written reports whether reg has been written since the shadow was created
func (s *Shadow) Written(reg uint8) bool {
	i, err := index(reg, 1)
	return err == nil && s.written[i]
}
