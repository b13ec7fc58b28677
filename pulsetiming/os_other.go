// +build !linux

package pulsetiming

import "time"

var monotonicStart = time.Now()

func osSleep(nanos int64) {
	time.Sleep(time.Duration(nanos))
}

func (monotonicCounter) Micros() uint32 {
	return uint32(time.Since(monotonicStart) / time.Microsecond)
}

// LockToCore is not available here. The thread is left unlocked.
func LockToCore(core int) (release func(), err error) {
	return nil, ErrorUnsupported
}
