package rtl2832

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector specifies how to identify a dongle
// Supported formats:
//   - ""           : Use first available device
//   - "serial"     : Match by serial number (e.g., "00000001")
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth device, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

// selection is a parsed DeviceSelector
type selection struct {
	index  int
	bus    int
	addr   int
	serial string
	kind   selectorKind
}

type selectorKind int

const (
	selectFirst selectorKind = iota
	selectIndex
	selectBusAddr
	selectSerial
)

func (s DeviceSelector) parse() (selection, error) {
	sel := string(s)

	if sel == "" {
		return selection{kind: selectFirst}, nil
	}

	// Index selector: #0, #1, etc.
	if strings.HasPrefix(sel, "#") {
		index, err := strconv.Atoi(sel[1:])
		if err != nil || index < 0 {
			return selection{}, fmt.Errorf("invalid device index: %s", sel)
		}
		return selection{kind: selectIndex, index: index}, nil
	}

	// Bus:Address selector: 1:10, 2:5, etc.
	if strings.Contains(sel, ":") {
		parts := strings.SplitN(sel, ":", 2)
		bus, err := strconv.Atoi(parts[0])
		if err != nil {
			return selection{}, fmt.Errorf("invalid bus number: %s", parts[0])
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			return selection{}, fmt.Errorf("invalid address number: %s", parts[1])
		}
		return selection{kind: selectBusAddr, bus: bus, addr: addr}, nil
	}

	return selection{kind: selectSerial, serial: sel}, nil
}

// pick chooses one device from devices, closing every other one
func (s selection) pick(devices []*Device) (*Device, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no RTL2832U devices found")
	}

	var matches []*Device
	for i, d := range devices {
		var match bool
		switch s.kind {
		case selectFirst:
			match = i == 0
		case selectIndex:
			match = i == s.index
		case selectBusAddr:
			match = d.Bus == s.bus && d.Address == s.addr
		case selectSerial:
			match = d.Serial == s.serial
		}
		if match {
			matches = append(matches, d)
		} else {
			d.Close()
		}
	}

	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) > 1:
		// Multiple devices with same serial - close all and return error
		for _, d := range matches {
			d.Close()
		}
		return nil, fmt.Errorf("multiple devices (%d) found with serial %s; use bus:addr format (e.g., 1:10) or index format (e.g., #0)", len(matches), s.serial)
	case s.kind == selectIndex:
		return nil, fmt.Errorf("device index %d out of range (found %d devices)", s.index, len(devices))
	case s.kind == selectBusAddr:
		return nil, fmt.Errorf("no RTL2832U found at bus %d address %d", s.bus, s.addr)
	default:
		return nil, fmt.Errorf("no RTL2832U found with serial %s", s.serial)
	}
}

// SelectDevice opens the dongle matching the selector
func SelectDevice(context *gousb.Context, selector DeviceSelector) (*Device, error) {
	sel, err := selector.parse()
	if err != nil {
		return nil, err
	}

	devices, err := FindAllDevices(context)
	if err != nil {
		return nil, err
	}
	return sel.pick(devices)
}

// DeviceFlagUsage returns usage text for a device selector flag
func DeviceFlagUsage() string {
	return `Device selector. Formats:
    ""        - Use first available device
    "serial"  - Match by serial number (e.g., "00000001")
    "bus:addr"- Match by USB location (e.g., "1:10")
    "#N"      - Use Nth device, 0-indexed (e.g., "#0", "#1")`
}
