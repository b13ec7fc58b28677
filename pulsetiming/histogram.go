package pulsetiming

import (
	"fmt"
	"io"
)

const histogramBuckets = 256

// Histogram counts by how many microseconds the OS sleep overshot the time
// that was asked from it. The last bucket holds everything larger.
type Histogram struct {
	buckets [histogramBuckets]uint64
	total   uint64
}

func (h *Histogram) Add(overshootMicros int64) {
	if overshootMicros < 0 {
		overshootMicros = 0
	}
	if overshootMicros >= histogramBuckets {
		overshootMicros = histogramBuckets - 1
	}
	h.buckets[overshootMicros]++
	h.total++
}

func (h *Histogram) Count(micros int) uint64 {
	if micros < 0 || micros >= histogramBuckets {
		return 0
	}
	return h.buckets[micros]
}

func (h *Histogram) Total() uint64 {
	return h.total
}

// WriteTo prints the non-empty buckets with their cumulative share
func (h *Histogram) WriteTo(w io.Writer) (int64, error) {
	var written int64
	out := func(format string, args ...interface{}) error {
		n, err := fmt.Fprintf(w, format, args...)
		written += int64(n)
		return err
	}

	if err := out("%6s | %8s | %7s\n", "usec", "count", "accum"); err != nil {
		return written, err
	}

	var running uint64
	for us, count := range h.buckets {
		if count == 0 {
			continue
		}
		running += count

		prefix := " +"
		if us == 0 {
			prefix = "<="
		}
		if err := out("%s%3dus: %8d %7.3f%%\n", prefix, us, count, 100*float64(running)/float64(h.total)); err != nil {
			return written, err
		}
	}

	return written, nil
}
