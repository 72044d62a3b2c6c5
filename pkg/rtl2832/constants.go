package rtl2832

import "time"

// USB Device Identifiers
const (
	VendorRealtek = 0x0BDA

	ProductGeneric  = 0x2838 // generic RTL2832U OEM
	ProductDVBT     = 0x2832
	ProductEzcapEZ  = 0x2837 // ezcap EzTV
	VendorTerratec  = 0x0CCD
	ProductCinergyT = 0x00A9 // Terratec Cinergy T Stick Black
	ProductNoxonV1  = 0x00B3 // Terratec NOXON DAB/DAB+ USB dongle (rev 1)
	VendorDexatek   = 0x1D19
	ProductDexatek  = 0x1101 // Dexatek DK DVB-T Dongle (Logilink VG0002A)
)

// KnownDevice is one supported VID/PID pair
type KnownDevice struct {
	Vendor  uint16
	Product uint16
	Name    string
}

// KnownDevices lists the dongles this package will open
var KnownDevices = []KnownDevice{
	{VendorRealtek, ProductGeneric, "Generic RTL2832U OEM"},
	{VendorRealtek, ProductDVBT, "Generic RTL2832U"},
	{VendorRealtek, ProductEzcapEZ, "ezcap EzTV"},
	{VendorTerratec, ProductCinergyT, "Terratec Cinergy T Stick Black"},
	{VendorTerratec, ProductNoxonV1, "Terratec NOXON DAB/DAB+ USB dongle (rev 1)"},
	{VendorDexatek, ProductDexatek, "Dexatek DK DVB-T Dongle"},
}

// lookupKnown returns the entry for a VID/PID pair
func lookupKnown(vendor, product uint16) (KnownDevice, bool) {
	for _, k := range KnownDevices {
		if k.Vendor == vendor && k.Product == product {
			return k, true
		}
	}
	return KnownDevice{}, false
}

// Control transfer request types
const (
	RequestTypeIn  = 0xC0 // vendor, device to host
	RequestTypeOut = 0x40 // vendor, host to device
)

// USB Timeouts
const (
	CtrlTimeout = 300 * time.Millisecond
)

// Register blocks addressed through the high byte of wIndex
const (
	BlockDemod = 0
	BlockUSB   = 1
	BlockSys   = 2
	BlockTuner = 3
	BlockROM   = 4
	BlockIR    = 5
	BlockI2C   = 6
)

// USB block registers
const (
	USBSysCtl     = 0x2000
	USBCtrl       = 0x2010
	USBStat       = 0x2014
	USBEPACfg     = 0x2144
	USBEPACtl     = 0x2148
	USBEPAMaxPkt  = 0x2158
	USBEPAMaxPkt2 = 0x215a
	USBEPAFIFOCfg = 0x2160
)

// System block registers
const (
	DemodCtl   = 0x3000
	GPO        = 0x3001
	GPI        = 0x3002
	GPOE       = 0x3003
	GPD        = 0x3004
	SysIntrEn  = 0x3005
	SysIntrSt  = 0x3006
	GPCfg0     = 0x3007
	GPCfg1     = 0x3008
	SysIntrEn2 = 0x3009
	SysIntrSt2 = 0x300a
	DemodCtl1  = 0x300b
	IRSuspend  = 0x300c
)

// Demodulator I2C repeater control, page 1 register 0x01
const (
	repeaterOn  = 0x18
	repeaterOff = 0x10
)

// DefaultXtalHz is the RTL2832U reference crystal
const DefaultXtalHz = 28800000
