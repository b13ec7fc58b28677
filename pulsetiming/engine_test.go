package pulsetiming

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem/devmemtest"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
)

func check(t *testing.T, condition bool, reason ...interface{}) {
	if !condition {
		t.Error(reason...)
		t.FailNow()
	}
}

// fakeClock ticks once per microsecond, but only when something sleeps
type fakeClock struct {
	now      uint32
	overrun  int64
	slept    []int64
	busy     []int64
	busyTime int64
}

func (f *fakeClock) Micros() uint32 {
	return f.now
}

func (f *fakeClock) sleep(nanos int64) {
	f.slept = append(f.slept, nanos)
	f.now += uint32((nanos + f.overrun) / 1000)
}

func (f *fakeClock) busyWait(nanos int64) {
	f.busy = append(f.busy, nanos)
	f.busyTime += nanos
}

func newTestEngine(t *testing.T, model Model, counter bool) (*Engine, *fakeClock) {
	clock := &fakeClock{now: 0xFFFFFFF0}
	opts := &Options{
		Model:       model,
		CPUInfoPath: filepath.Join(t.Name(), "missing"),
	}
	if counter {
		opts.Counter = clock
	}
	opts.Histogram = true

	e := New(opts, nil)
	e.sleep = clock.sleep
	e.busyWait = clock.busyWait
	return e, clock
}

func TestSleepWithCounter(t *testing.T) {
	e, clock := newTestEngine(t, Model1, true)
	check(t, e.Calibration().JitterMicros == 12, "Wrong jitter", e.Calibration().JitterMicros)

	e.SleepNanos(50000)

	check(t, len(clock.slept) == 1, "Expected one OS sleep", clock.slept)
	check(t, clock.slept[0] >= 50000-12000-MinimumSleepMicros*1000, "OS sleep too short", clock.slept[0])
	check(t, clock.slept[0] == 38000, "OS sleep not shortened by the jitter", clock.slept[0])

	check(t, len(clock.busy) == 1, "Expected one busy wait")
	check(t, clock.busy[0] >= 0, "Negative busy wait", clock.busy[0])
	check(t, clock.busy[0] == 12000, "Busy wait does not match elapsed time", clock.busy[0])

	check(t, e.Histogram().Count(0) == 1, "Overshoot not recorded")
}

func TestSleepOvershoot(t *testing.T) {
	e, clock := newTestEngine(t, Model1, true)
	clock.overrun = 20000

	e.SleepNanos(50000)
	check(t, len(clock.busy) == 0, "Busy waited after overshoot", clock.busy)
	check(t, e.Histogram().Count(20) == 1, "Overshoot bucket wrong")

	clock.overrun = 5000
	e.SleepNanos(50000)
	check(t, len(clock.busy) == 1 && clock.busy[0] == 7000, "Partial overshoot not subtracted", clock.busy)
}

func TestSleepShortWithCounter(t *testing.T) {
	e, clock := newTestEngine(t, Model1, true)

	e.SleepNanos(17000)
	check(t, len(clock.slept) == 0, "Short delay went to the OS")
	check(t, len(clock.busy) == 1 && clock.busy[0] == 17000, "Short delay not busy waited", clock.busy)
}

func TestSleepWithoutCounter(t *testing.T) {
	e, clock := newTestEngine(t, Model3, false)
	check(t, !e.HasCounter(), "Counter reported")

	e.SleepNanos(50000)
	check(t, len(clock.slept) == 1 && clock.slept[0] == 38000, "OS sleep wrong", clock.slept)
	check(t, len(clock.busy) == 0, "Busy waited without counter")

	e.SleepNanos(17000)
	check(t, len(clock.slept) == 1, "Threshold not respected")
	check(t, len(clock.busy) == 1 && clock.busy[0] == 17000, "Short delay not busy waited")

	e.SleepNanos(17001)
	check(t, len(clock.slept) == 2 && clock.slept[1] == 5001, "Delay above threshold not slept", clock.slept)
}

func TestModelSelection(t *testing.T) {
	dir, err := ioutil.TempDir("", "pulsetiming")
	check(t, err == nil, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "cpuinfo")
	check(t, ioutil.WriteFile(path, []byte("processor\t: 0\nRevision\t: a03111\n"), 0644) == nil)

	e := New(&Options{CPUInfoPath: path}, nil)
	check(t, e.DetectedModel() == Model4, "Detection wrong", e.DetectedModel())
	check(t, e.Calibration().Model == ForcedModel, "Forced model not applied", e.Calibration().Model)

	e = New(&Options{CPUInfoPath: path, Detect: true}, nil)
	check(t, e.Calibration().Model == Model4, "Detected model not used", e.Calibration().Model)

	e = New(&Options{CPUInfoPath: path, Model: Model2}, nil)
	check(t, e.Calibration().Model == Model2, "Explicit model not used", e.Calibration().Model)

	e = New(&Options{CPUInfoPath: path, Model: Model3, Detect: true}, nil)
	check(t, e.Calibration().Model == Model3, "Explicit model lost to detection", e.Calibration().Model)
}

func TestTuning(t *testing.T) {
	dir, err := ioutil.TempDir("", "pulsetiming")
	check(t, err == nil, err)
	defer os.RemoveAll(dir)

	paths := &TuningPaths{
		RTRuntime: filepath.Join(dir, "sched_rt_runtime_us"),
		Governor:  filepath.Join(dir, "scaling_governor"),
	}
	check(t, ioutil.WriteFile(paths.RTRuntime, []byte("950000"), 0644) == nil)
	check(t, ioutil.WriteFile(paths.Governor, []byte("ondemand"), 0644) == nil)

	New(&Options{Model: Model1, Tune: true, TuningPaths: paths}, nil)
	data, _ := ioutil.ReadFile(paths.RTRuntime)
	check(t, string(data) == "950000", "Throttling changed on a single core", string(data))
	data, _ = ioutil.ReadFile(paths.Governor)
	check(t, string(data) == "performance", "Governor not set", string(data))

	New(&Options{Model: Model3, Tune: true, TuningPaths: paths}, nil)
	data, _ = ioutil.ReadFile(paths.RTRuntime)
	check(t, string(data) == "999000", "Throttling not changed", string(data))

	/* Missing files are ignored */
	paths.Governor = filepath.Join(dir, "missing", "scaling_governor")
	New(&Options{Model: Model3, Tune: true, TuningPaths: paths}, nil)
}

func TestHardwareCounter(t *testing.T) {
	cfg, _ := rockchip.TargetRK3288.Config()
	mem := devmemtest.New()

	c, err := CounterForTarget(mem, cfg)
	check(t, err == nil && c == nil, "RK3288 has no counter", c, err)

	cfg.CounterBase = 0xFF810020
	c, err = CounterForTarget(mem, cfg)
	check(t, err == nil && c != nil, err)

	mem.Poke(0xFF810020, 1234)
	check(t, c.Micros() == 1234, "Counter not read")

	mem.FailOnMap = mem.Maps() + 1
	_, err = CounterForTarget(mem, cfg)
	check(t, err != nil, "Map error lost")
}

func TestHistogramOutput(t *testing.T) {
	var h Histogram
	h.Add(-3)
	h.Add(2)
	h.Add(2)
	h.Add(1000)

	check(t, h.Total() == 4, "Total wrong")
	check(t, h.Count(0) == 1 && h.Count(2) == 2 && h.Count(255) == 1, "Buckets wrong")

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	check(t, err == nil, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	check(t, len(lines) == 4, "Expected header and three buckets", buf.String())
	check(t, strings.HasPrefix(lines[1], "<=  0us"), "First bucket wrong", lines[1])
	check(t, strings.HasSuffix(lines[3], "100.000%"), "Accumulated share wrong", lines[3])
}
