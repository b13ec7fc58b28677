package pulsetiming

// Calibration converts a delay into busy loop iterations:
// (nanos-Offset)*Num/Den, nothing at all below Floor.
type Calibration struct {
	Model  Model
	Floor  int64
	Offset int64
	Num    int64
	Den    int64

	// Time the OS sleep is shortened by to absorb scheduler jitter
	JitterMicros int64
	Cores        int
}

// OSSleepOverheadMicros is the measured typical overshoot of a nanosleep
// call. It is used when no counter is available to measure the real sleep.
const OSSleepOverheadMicros = 12

// MinimumSleepMicros is the shortest OS sleep worth doing on top of the
// jitter allowance.
const MinimumSleepMicros = 5

var calibrations = map[Model]Calibration{
	Model1: {Model: Model1, Floor: 70, Offset: 70, Num: 1, Den: 4, JitterMicros: OSSleepOverheadMicros, Cores: 1},
	Model2: {Model: Model2, Floor: 20, Offset: 20, Num: 100, Den: 110, JitterMicros: OSSleepOverheadMicros + 35, Cores: 4},
	Model3: {Model: Model3, Floor: 20, Offset: 15, Num: 100, Den: 73, JitterMicros: OSSleepOverheadMicros + 35, Cores: 4},
	Model4: {Model: Model4, Floor: 20, Offset: 5, Num: 100, Den: 132, JitterMicros: OSSleepOverheadMicros + 10, Cores: 4},
}

// CalibrationFor returns the calibration of a model, Model3 for unknown ones
func CalibrationFor(m Model) Calibration {
	if c, ok := calibrations[m]; ok {
		return c
	}
	return calibrations[Model3]
}

// Iterations returns the loop count for a delay
func (c Calibration) Iterations(nanos int64) int64 {
	if nanos < c.Floor {
		return 0
	}
	return (nanos - c.Offset) * c.Num / c.Den
}

// JitterNanos is JitterMicros in nanoseconds
func (c Calibration) JitterNanos() int64 {
	return c.JitterMicros * 1000
}

// Written by the busy loop so the compiler cannot drop it
var spinSink uint32

func spin(iterations int64) {
	var acc uint32
	for i := iterations; i > 0; i-- {
		acc += uint32(i)
	}
	spinSink = acc
}

// BusyWait burns CPU for roughly nanos nanoseconds
func (c Calibration) BusyWait(nanos int64) {
	spin(c.Iterations(nanos))
}
