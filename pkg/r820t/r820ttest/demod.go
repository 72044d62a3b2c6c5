package r820ttest

import "sync"

// DemodWrite is one recorded demodulator register write
type DemodWrite struct {
	Page   uint8
	Addr   uint16
	Val    uint16
	Length int
}

// Demod records what a tuner asks of the demodulator
type Demod struct {
	mu sync.Mutex

	Writes []DemodWrite
	IFHz   uint32
	Err    error
}

// DemodWriteReg records a register write
func (d *Demod) DemodWriteReg(page uint8, addr uint16, val uint16, length int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Writes = append(d.Writes, DemodWrite{Page: page, Addr: addr, Val: val, Length: length})
	return nil
}

// SetIFFreq records the IF
func (d *Demod) SetIFFreq(hz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.IFHz = hz
	return nil
}
