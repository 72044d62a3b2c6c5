package profiles

import (
	"fmt"
	"sort"
)

// NewFMBroadcast creates a wideband FM broadcast profile for one station
func NewFMBroadcast(freqHz uint32) *Profile {
	return &Profile{
		Name:         fmt.Sprintf("fm-%s", formatFrequency(freqHz)),
		Description:  fmt.Sprintf("Broadcast FM at %.1f MHz", float64(freqHz)/1e6),
		FrequencyHz:  freqHz,
		BandwidthHz:  200000,
		SampleRateHz: 1024000,
		Gain:         "auto",
	}
}

// NewAirband creates a VHF aviation AM profile centred on freqHz
func NewAirband(freqHz uint32) *Profile {
	return &Profile{
		Name:         fmt.Sprintf("airband-%s", formatFrequency(freqHz)),
		Description:  fmt.Sprintf("Aviation AM around %.3f MHz", float64(freqHz)/1e6),
		FrequencyHz:  freqHz,
		BandwidthHz:  1000000,
		SampleRateHz: 2048000,
		Gain:         "auto",
	}
}

// NOAA polar orbiter APT downlinks
var noaaAPT = map[int]uint32{
	15: 137620000,
	18: 137912500,
	19: 137100000,
}

// NewNOAAAPT creates an APT weather image profile for a NOAA satellite
func NewNOAAAPT(satellite int) (*Profile, error) {
	freq, ok := noaaAPT[satellite]
	if !ok {
		return nil, fmt.Errorf("no APT downlink for NOAA %d", satellite)
	}
	return &Profile{
		Name:         fmt.Sprintf("noaa-%d-apt", satellite),
		Description:  fmt.Sprintf("NOAA %d APT at %.4f MHz", satellite, float64(freq)/1e6),
		FrequencyHz:  freq,
		BandwidthHz:  60000,
		SampleRateHz: 1024000,
		Gain:         "auto",
	}, nil
}

// NewAIS creates a marine AIS profile covering channels A and B
func NewAIS() *Profile {
	return &Profile{
		Name:         "ais",
		Description:  "Marine AIS, channels A (161.975 MHz) and B (162.025 MHz)",
		FrequencyHz:  162000000,
		BandwidthHz:  200000,
		SampleRateHz: 1536000,
		Gain:         "auto",
	}
}

// NewAPRS creates a 2 m APRS profile. Region is "na" or "eu".
func NewAPRS(region string) (*Profile, error) {
	var freq uint32
	switch region {
	case "na":
		freq = 144390000
	case "eu":
		freq = 144800000
	default:
		return nil, fmt.Errorf("unknown APRS region %q", region)
	}
	return &Profile{
		Name:         fmt.Sprintf("aprs-%s", region),
		Description:  fmt.Sprintf("2 m APRS at %.2f MHz", float64(freq)/1e6),
		FrequencyHz:  freq,
		BandwidthHz:  25000,
		SampleRateHz: 1024000,
		Gain:         "auto",
	}, nil
}

// NewADSB creates a 1090 MHz Mode S / ADS-B profile
func NewADSB() *Profile {
	return &Profile{
		Name:         "adsb",
		Description:  "Mode S and ADS-B at 1090 MHz",
		FrequencyHz:  1090000000,
		SampleRateHz: 2000000,
		Gain:         "auto",
	}
}

// NewISM433 creates a profile for 433.92 MHz sensors and remotes
func NewISM433() *Profile {
	return &Profile{
		Name:         "ism-433",
		Description:  "433.92 MHz ISM sensors and remotes",
		FrequencyHz:  433920000,
		SampleRateHz: 2048000,
		Gain:         "auto",
	}
}

// NewWeatherRadio creates a NOAA Weather Radio profile, channels 1-7
func NewWeatherRadio(channel int) (*Profile, error) {
	if channel < 1 || channel > 7 {
		return nil, fmt.Errorf("weather radio channel %d out of range 1-7", channel)
	}
	freq := uint32(162400000 + 25000*(channel-1))
	return &Profile{
		Name:         fmt.Sprintf("wx-%d", channel),
		Description:  fmt.Sprintf("NOAA Weather Radio WX%d at %.3f MHz", channel, float64(freq)/1e6),
		FrequencyHz:  freq,
		BandwidthHz:  25000,
		SampleRateHz: 1024000,
		Gain:         "auto",
	}, nil
}

// All returns every built-in profile
func All() []*Profile {
	profiles := []*Profile{
		NewFMBroadcast(88500000),
		NewFMBroadcast(100000000),
		NewFMBroadcast(107900000),
		NewAirband(121500000),
		NewAirband(127000000),
		NewAIS(),
		NewADSB(),
		NewISM433(),
	}
	for _, sat := range []int{15, 18, 19} {
		p, _ := NewNOAAAPT(sat)
		profiles = append(profiles, p)
	}
	for _, region := range []string{"na", "eu"} {
		p, _ := NewAPRS(region)
		profiles = append(profiles, p)
	}
	for ch := 1; ch <= 7; ch++ {
		p, _ := NewWeatherRadio(ch)
		profiles = append(profiles, p)
	}
	return profiles
}

// Get returns the built-in profile with the given name
func Get(name string) (*Profile, error) {
	for _, p := range All() {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
}

// List returns the names of the built-in profiles, sorted
func List() []string {
	var names []string
	for _, p := range All() {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
