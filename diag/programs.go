package diag

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/vgpio"
	"github.com/BertoldVdb/rk-vgpio/pulsetiming"
	"github.com/sirupsen/logrus"
)

func fillProgram(ctx context.Context, s *Session, args []string) error {
	return s.Fill()
}

// walkProgram drives one line high at a time. An optional argument sets the
// time each line stays high, e.g. "250ms", so a scope or LED can follow.
func walkProgram(ctx context.Context, s *Session, args []string) error {
	var hold time.Duration
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrorBadArgument, err)
		}
		hold = d
	}

	c := s.controller
	c.InitOutputs(c.Lines().Defined())
	outputs := c.Outputs()
	c.ClearBits(outputs)

	for _, l := range c.Lines().Lines() {
		if l.Virtual&outputs == 0 {
			continue
		}

		c.SetBits(l.Virtual)
		got := c.Read(outputs)
		c.ClearBits(l.Virtual)

		if got != l.Virtual {
			return fmt.Errorf("%w: driving %s gives 0x%08x", ErrorReadback, l.Name, uint32(got))
		}

		s.logger.WithFields(logrus.Fields{
			"line": l.Name,
			"bank": l.Bank.Name,
		}).Debug("Line ok")

		if hold > 0 {
			select {
			case <-time.After(hold):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	s.logger.Info("Walk test passed")
	return nil
}

// pulseProgram repeatedly pulses a line: [line] [nanoseconds] [count] [core].
// A count of 0 runs until the context is cancelled. The loop is pinned to
// core when possible; that defaults to the core raised by the tuning.
func pulseProgram(ctx context.Context, s *Session, args []string) error {
	name := vgpio.LineOutputEnable
	nanos := int64(1000)
	count := 1000
	core := pulsetiming.TuningCore

	var err error
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		if nanos, err = strconv.ParseInt(args[1], 0, 64); err != nil {
			return fmt.Errorf("%w: %v", ErrorBadArgument, err)
		}
	}
	if len(args) > 2 {
		if count, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("%w: %v", ErrorBadArgument, err)
		}
	}
	if len(args) > 3 {
		if core, err = strconv.Atoi(args[3]); err != nil || core < 0 {
			return fmt.Errorf("%w: core %q", ErrorBadArgument, args[3])
		}
	}

	l, err := s.output(name)
	if err != nil {
		return err
	}
	s.controller.SetBits(l.Virtual)

	p, err := s.Pulser(l.Virtual, []int64{nanos}, nil)
	if err != nil {
		return err
	}

	release, err := pulsetiming.LockToCore(core)
	if err != nil {
		s.logger.WithError(err).WithField("core", core).Debug("Could not pin pulse loop to core")
		runtime.LockOSThread()
		release = runtime.UnlockOSThread
	}
	defer release()

	start := time.Now()
	sent := 0
	for count == 0 || sent < count {
		if ctx.Err() != nil {
			break
		}
		p.SendPulse(0)
		sent++
	}

	s.logger.WithFields(logrus.Fields{
		"line":    name,
		"pulses":  sent,
		"elapsed": time.Since(start),
	}).Info("Pulses sent")

	if hist := s.timing.Histogram(); hist != nil && hist.Total() > 0 {
		var buf bytes.Buffer
		hist.WriteTo(&buf)
		s.logger.Info("Sleep overshoot histogram:\n" + buf.String())
	}

	return ctx.Err()
}
