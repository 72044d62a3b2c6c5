package rtl2832

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorParse(t *testing.T) {
	tests := []struct {
		sel  DeviceSelector
		want selection
	}{
		{"", selection{kind: selectFirst}},
		{"#2", selection{kind: selectIndex, index: 2}},
		{"1:10", selection{kind: selectBusAddr, bus: 1, addr: 10}},
		{"00000001", selection{kind: selectSerial, serial: "00000001"}},
	}
	for _, tt := range tests {
		got, err := tt.sel.parse()
		require.NoError(t, err, "selector %q", tt.sel)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []DeviceSelector{"#x", "#-1", "a:1", "1:b"} {
		_, err := bad.parse()
		assert.Error(t, err, "selector %q", bad)
	}
}

func testDevices() ([]*Device, []*fakeController) {
	var devices []*Device
	var ctrls []*fakeController
	for i, serial := range []string{"00000001", "00000002", "00000002"} {
		c := &fakeController{}
		d := newDevice(c)
		d.Serial = serial
		d.Bus = 1
		d.Address = 10 + i
		devices = append(devices, d)
		ctrls = append(ctrls, c)
	}
	return devices, ctrls
}

func TestSelectionPick(t *testing.T) {
	tests := []struct {
		sel  DeviceSelector
		want int
	}{
		{"", 0},
		{"#1", 1},
		{"1:12", 2},
		{"00000001", 0},
	}
	for _, tt := range tests {
		devices, ctrls := testDevices()
		sel, err := tt.sel.parse()
		require.NoError(t, err)

		d, err := sel.pick(devices)
		require.NoError(t, err, "selector %q", tt.sel)
		assert.Same(t, devices[tt.want], d)
		for i, c := range ctrls {
			assert.Equal(t, i != tt.want, c.closed, "selector %q device %d", tt.sel, i)
		}
	}
}

func TestSelectionPickErrors(t *testing.T) {
	for _, sel := range []DeviceSelector{"#3", "2:10", "00000009", "00000002"} {
		devices, ctrls := testDevices()
		s, err := sel.parse()
		require.NoError(t, err)

		_, err = s.pick(devices)
		assert.Error(t, err, "selector %q", sel)
		for _, c := range ctrls {
			assert.True(t, c.closed)
		}
	}

	_, err := selection{kind: selectFirst}.pick(nil)
	assert.Error(t, err)
}
