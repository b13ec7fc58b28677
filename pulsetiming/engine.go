package pulsetiming

import (
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/sirupsen/logrus"
)

// Options configure an Engine. The zero value detects the board, applies
// ForcedModel and runs without a counter.
type Options struct {
	// Model selects a calibration explicitly. ModelUnknown applies
	// ForcedModel, unless Detect is set.
	Model  Model
	Detect bool

	// CPUInfoPath overrides DefaultCPUInfoPath
	CPUInfoPath string

	// Counter measures the real OS sleep time. Without it long delays are
	// approximated.
	Counter Counter

	// Tune writes the kernel tuning knobs. TuningPaths defaults to
	// DefaultTuningPaths.
	Tune        bool
	TuningPaths *TuningPaths

	// Histogram records the OS sleep overshoot of every counted sleep
	Histogram bool
}

// Engine implements the hybrid sleep. It is not safe for concurrent use.
type Engine struct {
	logger *logrus.Entry

	detected    Model
	calibration Calibration
	counter     Counter
	histogram   *Histogram

	sleep    func(nanos int64)
	busyWait func(nanos int64)
}

// New selects the calibration and applies the tuning hints
func New(opts *Options, logger *logrus.Entry) *Engine {
	if opts == nil {
		opts = &Options{}
	}

	e := &Engine{
		logger:  logrusconfig.Component(logger, "timing"),
		counter: opts.Counter,
		sleep:   osSleep,
	}

	detected, err := DetectModel(opts.CPUInfoPath)
	if err != nil {
		e.logger.WithError(err).Warn("Could not determine board model, assuming model3")
	}
	e.detected = detected

	override := opts.Model
	if override == ModelUnknown && !opts.Detect {
		override = ForcedModel
	}

	e.calibration = CalibrationFor(SelectModel(detected, override))
	e.busyWait = e.calibration.BusyWait

	if opts.Histogram {
		e.histogram = &Histogram{}
	}

	e.logger.WithFields(logrus.Fields{
		"detected": detected,
		"model":    e.calibration.Model,
		"jitter":   e.calibration.JitterMicros,
		"counter":  e.counter != nil,
	}).Info("Timing calibration selected")

	if opts.Tune {
		paths := DefaultTuningPaths
		if opts.TuningPaths != nil {
			paths = *opts.TuningPaths
		}
		tune(paths, e.calibration.Cores, e.logger)
	}

	return e
}

// SleepNanos waits for nanos nanoseconds. Long waits go to the OS scheduler
// and the rest is busy waited. With a counter the actual OS sleep is
// measured; if it already took too long the busy wait is skipped.
func (e *Engine) SleepNanos(nanos int64) {
	if e.counter != nil {
		jitter := e.calibration.JitterNanos()
		if nanos > jitter+MinimumSleepMicros*1000 {
			request := nanos - jitter

			before := e.counter.Micros()
			e.sleep(request)
			after := e.counter.Micros()

			passed := 1000 * int64(after-before)
			if e.histogram != nil {
				e.histogram.Add((passed - request) / 1000)
			}
			if passed >= nanos {
				return
			}
			nanos -= passed
		}
	} else if nanos > (OSSleepOverheadMicros+MinimumSleepMicros)*1000 {
		e.sleep(nanos - OSSleepOverheadMicros*1000)
		return
	}

	e.busyWait(nanos)
}

// HasCounter reports whether OS sleeps are measured
func (e *Engine) HasCounter() bool {
	return e.counter != nil
}

// Micros returns the engine's counter, or the monotonic clock if it has
// none.
func (e *Engine) Micros() uint32 {
	if e.counter != nil {
		return e.counter.Micros()
	}
	return MonotonicCounter.Micros()
}

func (e *Engine) Calibration() Calibration {
	return e.calibration
}

func (e *Engine) DetectedModel() Model {
	return e.detected
}

// Histogram returns nil unless Options.Histogram was set
func (e *Engine) Histogram() *Histogram {
	return e.histogram
}
