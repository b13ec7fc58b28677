package pulsetiming

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func osSleep(nanos int64) {
	ts := unix.NsecToTimespec(nanos)
	unix.Nanosleep(&ts, nil)
}

func (monotonicCounter) Micros() uint32 {
	var ts unix.Timespec
	if unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts) != nil {
		return 0
	}
	return uint32(uint64(ts.Sec)*1000000 + uint64(ts.Nsec)/1000)
}

// LockToCore locks the calling goroutine to its OS thread and restricts
// that thread to one core. release restores the previous affinity and
// unlocks the thread. On error the thread is left unlocked.
func LockToCore(core int) (release func(), err error) {
	runtime.LockOSThread()

	var previous unix.CPUSet
	if err := unix.SchedGetaffinity(0, &previous); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	return func() {
		unix.SchedSetaffinity(0, &previous)
		runtime.UnlockOSThread()
	}, nil
}
