// Package rtl2832 talks to the Realtek RTL2832U USB demodulator used by
// RTL-SDR dongles: vendor control transfers for its register blocks and the
// I2C bridge that reaches the tuner behind it.
package rtl2832

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/gousb"
)

// ErrShortTransfer is returned when a control transfer moves fewer bytes
// than requested
var ErrShortTransfer = errors.New("short control transfer")

// controller is the part of a USB device the bridge needs
type controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	Close() error
}

// Device represents an RTL2832U dongle
type Device struct {
	ctrl         controller
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	Serial       string
	Manufacturer string
	Product      string
	Name         string
	Bus          int
	Address      int

	// XtalHz is the RTL2832U reference crystal, trimmed per dongle
	XtalHz uint32

	mu sync.Mutex
}

// FindAllDevices opens every connected dongle with a known VID/PID
func FindAllDevices(context *gousb.Context) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := context.OpenDevices(func(descriptor *gousb.DeviceDesc) bool {
		_, ok := lookupKnown(uint16(descriptor.Vendor), uint16(descriptor.Product))
		return ok
	})
	if err != nil && len(usbDevices) == 0 {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		device, err := wrapDevice(usbDev)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

// OpenDevice opens the first known dongle, optionally requiring a serial
func OpenDevice(context *gousb.Context, serial string) (*Device, error) {
	devices, err := FindAllDevices(context)
	if err != nil {
		return nil, err
	}

	var selected *Device
	for _, d := range devices {
		if selected == nil && (serial == "" || d.Serial == serial) {
			selected = d
			continue
		}
		d.Close()
	}

	if selected == nil {
		if serial != "" {
			return nil, fmt.Errorf("no RTL2832U found with serial %s", serial)
		}
		return nil, fmt.Errorf("no RTL2832U devices found")
	}
	return selected, nil
}

func wrapDevice(usbDev *gousb.Device) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	// the dvb_usb_rtl28xxu kernel driver usually owns the interface
	usbDev.SetAutoDetach(true)
	setControlTimeout(usbDev)

	config, err := usbDev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	iface, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}

	desc := usbDev.Desc
	known, _ := lookupKnown(uint16(desc.Vendor), uint16(desc.Product))

	device := newDevice(usbDev)
	device.usbConfig = config
	device.usbInterface = iface
	device.Serial = serial
	device.Manufacturer = manufacturer
	device.Product = product
	device.Name = known.Name
	device.Bus = desc.Bus
	device.Address = desc.Address
	return device, nil
}

func setControlTimeout(usbDev *gousb.Device) {
	usbDev.ControlTimeout = CtrlTimeout
}

func newDevice(ctrl controller) *Device {
	return &Device{ctrl: ctrl, XtalHz: DefaultXtalHz}
}

// Close releases the interface and the USB device
func (d *Device) Close() error {
	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	if d.ctrl != nil {
		return d.ctrl.Close()
	}
	return nil
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}

func (d *Device) control(rType uint8, val, idx uint16, data []byte) error {
	n, err := d.ctrl.Control(rType, 0, val, idx, data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortTransfer, n, len(data))
	}
	return nil
}

// ReadArray reads len(buf) bytes from addr in a register block
func (d *Device) ReadArray(block uint8, addr uint16, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.control(RequestTypeIn, addr, uint16(block)<<8, buf); err != nil {
		return fmt.Errorf("read block %d at 0x%04X failed: %w", block, addr, err)
	}
	return nil
}

// WriteArray writes data to addr in a register block
func (d *Device) WriteArray(block uint8, addr uint16, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.control(RequestTypeOut, addr, uint16(block)<<8|0x10, data); err != nil {
		return fmt.Errorf("write block %d at 0x%04X failed: %w", block, addr, err)
	}
	return nil
}

// ReadReg reads a one or two byte register. Two byte registers come back
// little-endian.
func (d *Device) ReadReg(block uint8, addr uint16, length int) (uint16, error) {
	data := make([]byte, 2)
	if err := d.ReadArray(block, addr, data[:length]); err != nil {
		return 0, err
	}
	return uint16(data[1])<<8 | uint16(data[0]), nil
}

// WriteReg writes a one or two byte register, most significant byte first
func (d *Device) WriteReg(block uint8, addr uint16, val uint16, length int) error {
	return d.WriteArray(block, addr, regBytes(val, length))
}

func regBytes(val uint16, length int) []byte {
	if length == 1 {
		return []byte{uint8(val)}
	}
	return []byte{uint8(val >> 8), uint8(val)}
}

// DemodReadReg reads a demodulator register from page
func (d *Device) DemodReadReg(page uint8, addr uint16, length int) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := make([]byte, 2)
	if err := d.control(RequestTypeIn, addr<<8|0x20, uint16(page), data[:length]); err != nil {
		return 0, fmt.Errorf("demod read page %d reg 0x%02X failed: %w", page, addr, err)
	}
	return uint16(data[1])<<8 | uint16(data[0]), nil
}

// DemodWriteReg writes a demodulator register on page. Every write is
// followed by a dummy read, which the demodulator needs to latch it.
func (d *Device) DemodWriteReg(page uint8, addr uint16, val uint16, length int) error {
	d.mu.Lock()
	err := d.control(RequestTypeOut, addr<<8|0x20, uint16(page)|0x10, regBytes(val, length))
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("demod write page %d reg 0x%02X failed: %w", page, addr, err)
	}

	_, err = d.DemodReadReg(0x0a, 0x01, 1)
	return err
}

// SetIFFreq programs the demodulator's digital downconverter for an IF of hz
func (d *Device) SetIFFreq(hz uint32) error {
	xtal := d.XtalHz
	if xtal == 0 {
		xtal = DefaultXtalHz
	}
	regs := ifFreqRegs(hz, xtal)
	for i, v := range regs {
		if err := d.DemodWriteReg(1, uint16(0x19+i), uint16(v), 1); err != nil {
			return fmt.Errorf("failed to set IF frequency: %w", err)
		}
	}
	return nil
}

// ifFreqRegs splits the 22-bit fixed point DDC word for hz into the values
// of page 1 registers 0x19, 0x1a and 0x1b
func ifFreqRegs(hz, xtal uint32) [3]uint8 {
	ifFreq := -(int64(hz) << 22) / int64(xtal)
	return [3]uint8{
		uint8((ifFreq >> 16) & 0x3f),
		uint8((ifFreq >> 8) & 0xff),
		uint8(ifFreq & 0xff),
	}
}

// SetI2CRepeater opens or closes the path from the I2C block to the tuner
func (d *Device) SetI2CRepeater(on bool) error {
	val := uint16(repeaterOff)
	if on {
		val = repeaterOn
	}
	if err := d.DemodWriteReg(1, 0x01, val, 1); err != nil {
		return fmt.Errorf("failed to set I2C repeater: %w", err)
	}
	return nil
}

// WithRepeater runs fn with the I2C repeater open and closes it afterwards,
// even when fn fails
func (d *Device) WithRepeater(fn func() error) error {
	if err := d.SetI2CRepeater(true); err != nil {
		return err
	}
	fnErr := fn()
	if err := d.SetI2CRepeater(false); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

// InitBaseband brings the USB endpoint and the demodulator out of reset
func (d *Device) InitBaseband() error {
	steps := []struct {
		name   string
		block  uint8
		addr   uint16
		val    uint16
		length int
	}{
		{"init USB", BlockUSB, USBSysCtl, 0x09, 1},
		{"set EPA max packet", BlockUSB, USBEPAMaxPkt, 0x0002, 2},
		{"reset EPA", BlockUSB, USBEPACtl, 0x1002, 2},
		{"power on demod", BlockSys, DemodCtl1, 0x22, 1},
		{"enable ADC", BlockSys, DemodCtl, 0xe8, 1},
	}
	for _, s := range steps {
		if err := d.WriteReg(s.block, s.addr, s.val, s.length); err != nil {
			return fmt.Errorf("failed to %s: %w", s.name, err)
		}
	}

	// soft reset
	if err := d.DemodWriteReg(1, 0x01, 0x14, 1); err != nil {
		return fmt.Errorf("failed to reset demod: %w", err)
	}
	if err := d.DemodWriteReg(1, 0x01, 0x10, 1); err != nil {
		return fmt.Errorf("failed to reset demod: %w", err)
	}
	return nil
}
