package app

import (
	"math"
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
	"github.com/roman-kulish/handheld-spectrum/internal/storage"
)

type passRow struct {
	timestamp time.Time
	start     uint32
	step      uint32
	bins      []uint8
}

// SpectrumData is the waterfall of a session: one row per sweep pass, laid
// out on a common frequency axis so passes with different spans line up.
type SpectrumData struct {
	Width, Height                int
	FrequencyMin, FrequencyMax   float64 // Hz
	Resolution                   float64 // Hz per column
	TimestampStart, TimestampEnd time.Time
	Passes, Aborted              int
	Histogram                    *RSSIHistogram

	// Spans holds the power in dBm per column, nil where nothing was
	// measured or the bin was blacklisted.
	Spans      [][]*float64
	Timestamps []time.Time

	rows []passRow
}

func NewSpectrumData() *SpectrumData {
	return &SpectrumData{
		FrequencyMin: math.MaxFloat64,
		Histogram:    &RSSIHistogram{},
	}
}

// Update adds a pass. Build lays the collected passes out.
func (s *SpectrumData) Update(p *storage.Pass) {
	if len(p.Bins) == 0 || p.ScanStep == 0 {
		return
	}

	s.Passes++
	if p.Aborted {
		s.Aborted++
	}

	s.FrequencyMin = min(s.FrequencyMin, float64(p.SpanStart))
	s.FrequencyMax = max(s.FrequencyMax, float64(p.SpanStart)+float64(p.ScanStep)*float64(len(p.Bins)))

	if s.TimestampStart.IsZero() || s.TimestampStart.After(p.Timestamp) {
		s.TimestampStart = p.Timestamp
	}
	if s.TimestampEnd.IsZero() || s.TimestampEnd.Before(p.Timestamp) {
		s.TimestampEnd = p.Timestamp
	}

	for _, v := range p.Bins {
		s.Histogram.Update(v)
	}

	s.rows = append(s.rows, passRow{
		timestamp: p.Timestamp,
		start:     p.SpanStart,
		step:      p.ScanStep,
		bins:      p.Bins,
	})
}

// Build lays the passes out on columns of the finest bin spacing seen, made
// coarser if the band would not fit into maxWidth columns.
func (s *SpectrumData) Build(maxWidth int) {
	s.Spans = s.Spans[:0]
	s.Timestamps = s.Timestamps[:0]
	if len(s.rows) == 0 {
		s.Width, s.Height = 0, 0
		return
	}

	resolution := math.MaxFloat64
	for _, r := range s.rows {
		resolution = min(resolution, float64(r.step))
	}

	band := s.FrequencyMax - s.FrequencyMin
	width := int(math.Ceil(band / resolution))
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
		resolution = band / float64(width)
	}

	s.Width, s.Height, s.Resolution = width, len(s.rows), resolution

	for _, r := range s.rows {
		cells := make([]*float64, width)
		for i, v := range r.bins {
			if v == spectrum.Blacklisted {
				continue
			}

			lo := float64(r.start) + float64(i)*float64(r.step) - s.FrequencyMin
			x0 := int(math.Floor(lo / resolution))
			x1 := int(math.Ceil((lo + float64(r.step)) / resolution))

			power := rssiToDBm(v)
			for x := max(x0, 0); x < min(x1, width); x++ {
				cells[x] = &power
			}
		}

		s.Spans = append(s.Spans, cells)
		s.Timestamps = append(s.Timestamps, r.timestamp)
	}
}
