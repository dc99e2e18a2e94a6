package spectrum

import (
	"log/slog"
	"time"
)

const (
	DefaultListenDwell = time.Second
	listenSlices       = 16
)

// listen parks the receiver on the peak with audio enabled for one dwell,
// then refreshes the peak strength. Retuning and unmuting only happen when
// the peak frequency differs from the one already being listened to.
func (e *Engine) listen() {
	peak := e.peak.State()

	retuned := e.listenFrequency != peak.Frequency
	if retuned {
		e.listenFrequency = peak.Frequency
		e.radio.SetFrequency(peak.Frequency)
		e.radio.WriteRegister(RegisterAF, e.session.savedAF)
		e.radio.ToggleAFDAC(true)

		e.logger.Info("listening",
			slog.Uint64("frequency", uint64(peak.Frequency)),
			slog.Int("rssi", int(peak.RSSI)))
	}

	e.dwell(e.listenDwell, e.keyPending)

	rssi := e.sampleRSSI()
	e.peak.Refresh(rssi)
	e.history.Set(peak.Index, rssi)

	e.observer.Listened(ListenReport{
		Frequency: peak.Frequency,
		RSSI:      rssi,
		Retuned:   retuned,
	})
}

// dwell waits for d in equal slices, returning early once interrupt fires.
func (e *Engine) dwell(d time.Duration, interrupt Interrupt) {
	slice := d / listenSlices
	for i := 0; i < listenSlices; i++ {
		if interrupt() {
			return
		}
		e.clock.Delay(slice)
	}
}
