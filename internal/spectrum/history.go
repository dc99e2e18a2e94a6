package spectrum

const (
	// HistorySize is the number of bins kept, one per display column at the
	// widest span.
	HistorySize = 128

	// Blacklisted marks a bin that is excluded from sweeping.
	Blacklisted uint8 = 255

	// MaxRSSI is the strongest value a measurement can store. It stays below
	// Blacklisted so a reading never looks like an excluded bin.
	MaxRSSI uint8 = Blacklisted - 1
)

// History holds the latest RSSI sample of every bin. Index i corresponds to
// SweepConfig.BinFrequency(i) of the configuration it was sampled under.
//
// History is owned by the engine and is not safe for concurrent use.
type History struct {
	bins [HistorySize]uint8
}

// At returns bin i.
func (h *History) At(i int) uint8 {
	return h.bins[i]
}

// Set stores a measurement into bin i.
func (h *History) Set(i int, rssi uint8) {
	h.bins[i] = rssi
}

// Blacklist excludes bin i from future passes until it is forcibly remeasured.
func (h *History) Blacklist(i int) {
	h.bins[i] = Blacklisted
}

// IsBlacklisted reports whether bin i is excluded.
func (h *History) IsBlacklisted(i int) bool {
	return h.bins[i] == Blacklisted
}

// Bins returns a copy of the first n bins.
func (h *History) Bins(n int) []uint8 {
	n = min(max(n, 0), HistorySize)
	out := make([]uint8, n)
	copy(out, h.bins[:n])
	return out
}

// Reset clears every bin, including blacklisted ones.
func (h *History) Reset() {
	clear(h.bins[:])
}
