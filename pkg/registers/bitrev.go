package registers

var nibbleReverse = [16]uint8{
	0x0, 0x8, 0x4, 0xc, 0x2, 0xa, 0x6, 0xe,
	0x1, 0x9, 0x5, 0xd, 0x3, 0xb, 0x7, 0xf,
}

// Reverse mirrors the bit order of b. The RTL2832U I2C bridge returns tuner
// bytes LSB first, so every byte read from the R820T goes through here.
func Reverse(b uint8) uint8 {
	return nibbleReverse[b&0x0f]<<4 | nibbleReverse[b>>4]
}

// ReverseAll reverses every byte of buf in place
func ReverseAll(buf []byte) {
	for i, b := range buf {
		buf[i] = Reverse(b)
	}
}
