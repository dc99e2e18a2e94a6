package app

import (
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

const (
	defaultMinPower = -130.0 // dBm
	defaultMaxPower = -40.0  // dBm

	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20

	minimumSpan = 20.0 // dB
)

// rssiToDBm converts a raw receiver RSSI reading, in half dB steps, to dBm.
func rssiToDBm(rssi uint8) float64 {
	return float64(rssi)/2 - 160
}

// PowerBounds represents the power range mapped onto the color theme
type PowerBounds struct {
	Min  float64 // dBm
	Max  float64 // dBm
	Mean float64 // dBm
}

func defaultPowerBounds() PowerBounds {
	return PowerBounds{
		Min:  defaultMinPower,
		Max:  defaultMaxPower,
		Mean: (defaultMinPower + defaultMaxPower) / 2,
	}
}

// RSSIHistogram counts raw readings. Readings are 8 bit so a fixed array
// covers every value.
type RSSIHistogram struct {
	counts [spectrum.MaxRSSI + 1]uint64
	total  uint64
}

// Update counts a reading. Blacklisted bins are not readings.
func (h *RSSIHistogram) Update(rssi uint8) {
	if rssi == spectrum.Blacklisted {
		return
	}
	h.counts[rssi]++
	h.total++
}

func (h *RSSIHistogram) Total() uint64 {
	return h.total
}

// Percentile returns the smallest reading with at least p percent of the
// readings at or below it.
func (h *RSSIHistogram) Percentile(p float64) uint8 {
	if h.total == 0 {
		return 0
	}

	target := uint64(p / 100 * float64(h.total))
	if target == 0 {
		target = 1
	}

	var count uint64
	for rssi, n := range h.counts {
		count += n
		if count >= target {
			return uint8(rssi)
		}
	}
	return spectrum.MaxRSSI
}

// Bounds returns the 5th to 95th percentile range in dBm, widened to at least
// minimumSpan and padded by a 10% margin.
func (h *RSSIHistogram) Bounds() PowerBounds {
	if h.total < minimumSampleCount {
		return defaultPowerBounds()
	}

	low := rssiToDBm(h.Percentile(5))
	high := rssiToDBm(h.Percentile(95))

	var sum float64
	for rssi, n := range h.counts {
		sum += rssiToDBm(uint8(rssi)) * float64(n)
	}
	mean := sum / float64(h.total)

	if high-low < minimumSpan {
		center := (high + low) / 2
		low, high = center-minimumSpan/2, center+minimumSpan/2
	}

	margin := (high - low) / 10
	return PowerBounds{
		Min:  low - margin,
		Max:  high + margin,
		Mean: mean,
	}
}
