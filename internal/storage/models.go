package storage

import (
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

// Session is one analyzer activation.
type Session struct {
	ID        int64
	StartTime time.Time
	Device    string
	Config    *string // JSON encoded configuration, if any
}

// Pass is a stored sweep pass.
type Pass struct {
	Timestamp           time.Time
	CenterFrequency     uint32
	SpanStart           uint32
	ScanStep            uint32
	BandwidthMultiplier uint8
	Measured            int
	Aborted             bool
	PeakFrequency       uint32
	PeakRSSI            uint8
	PeakIndex           int
	Bins                []uint8
}

// Frequency returns the frequency of bin i.
func (p *Pass) Frequency(i int) uint32 {
	return p.SpanStart + uint32(i)*p.ScanStep
}

// SpanEnd returns the frequency of the last bin.
func (p *Pass) SpanEnd() uint32 {
	return p.Frequency(max(len(p.Bins)-1, 0))
}

// Listen is a stored listen dwell.
type Listen struct {
	Timestamp time.Time
	Frequency uint32
	RSSI      uint8
	Retuned   bool
}

// NewPass converts an engine pass report.
func NewPass(ts time.Time, r spectrum.PassReport) Pass {
	return Pass{
		Timestamp:           ts.UTC(),
		CenterFrequency:     r.Config.CenterFrequency,
		SpanStart:           r.Config.SpanStart(),
		ScanStep:            r.Config.ScanStep(),
		BandwidthMultiplier: r.Config.BandwidthMultiplier,
		Measured:            r.Measured,
		Aborted:             r.Aborted,
		PeakFrequency:       r.Peak.Frequency,
		PeakRSSI:            r.Peak.RSSI,
		PeakIndex:           r.Peak.Index,
		Bins:                r.Bins,
	}
}

// NewListen converts an engine listen report.
func NewListen(ts time.Time, r spectrum.ListenReport) Listen {
	return Listen{
		Timestamp: ts.UTC(),
		Frequency: r.Frequency,
		RSSI:      r.RSSI,
		Retuned:   r.Retuned,
	}
}
