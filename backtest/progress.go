package backtest

import (
	"go.uber.org/atomic"
)

const (
	progressStarted    = 5
	progressEnrich     = 10
	progressConfluence = 30
	progressSimulate   = 60
	progressDone       = 100
)

// progressTracker forwards strictly increasing progress percentages.
type progressTracker struct {
	last   *atomic.Float64
	report func(pct float64)
}

// newProgressTracker initializes a progress tracker. The report function is optional.
func newProgressTracker(report func(pct float64)) *progressTracker {
	return &progressTracker{
		last:   atomic.NewFloat64(0),
		report: report,
	}
}

// set records the provided percentage if it advances the progress.
func (p *progressTracker) set(pct float64) {
	pct = min(pct, progressDone)
	if pct <= p.last.Load() {
		return
	}

	p.last.Store(pct)
	if p.report != nil {
		p.report(pct)
	}
}

// phase records progress through the phase spanning the provided percentages.
func (p *progressTracker) phase(from float64, to float64, fraction float64) {
	fraction = max(0, min(1, fraction))
	p.set(from + (to-from)*fraction)
}

// reset clears the recorded progress for a new run.
func (p *progressTracker) reset() {
	p.last.Store(0)
}

// current returns the last recorded percentage.
func (p *progressTracker) current() float64 {
	return p.last.Load()
}
