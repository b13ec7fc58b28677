package pulsetiming

import (
	"os"

	"github.com/sirupsen/logrus"
)

// TuningCore is the core whose governor is raised by Tune. The pulse loop
// pins itself there with LockToCore.
const TuningCore = 3

// TuningPaths are the kernel knobs written by Tune
type TuningPaths struct {
	RTRuntime string
	Governor  string
}

// DefaultTuningPaths point at the real kernel files
var DefaultTuningPaths = TuningPaths{
	RTRuntime: "/proc/sys/kernel/sched_rt_runtime_us",
	Governor:  "/sys/devices/system/cpu/cpu3/cpufreq/scaling_governor",
}

const (
	rtRuntimeValue = "999000"
	governorValue  = "performance"
)

// writeTo writes a value to an existing file. Missing files and permission
// problems are returned but are not fatal for the caller.
func writeTo(path string, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	_, err = f.Write([]byte(value))
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return err
}

// tune leaves the kernel 1ms of every second on multi core machines instead
// of the default 50ms of real-time throttling, and pins cpu3 to its maximum
// frequency.
func tune(paths TuningPaths, cores int, logger *logrus.Entry) {
	if cores > 1 && paths.RTRuntime != "" {
		if err := writeTo(paths.RTRuntime, rtRuntimeValue); err != nil {
			logger.WithError(err).Debug("Could not disable real-time throttling")
		}
	}

	if paths.Governor != "" {
		if err := writeTo(paths.Governor, governorValue); err != nil {
			logger.WithError(err).Debug("Could not set cpufreq governor")
		}
	}
}
