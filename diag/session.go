// Package diag is a small bring-up tool around the virtual GPIO controller:
// poke single lines by name, check that every line of a wiring toggles, and
// run timing programs.
package diag

import (
	"context"
	"fmt"
	"sort"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/vgpio"
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/BertoldVdb/rk-vgpio/pinpulser"
	"github.com/BertoldVdb/rk-vgpio/pulsetiming"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options select the hardware a session talks to
type Options struct {
	Target string
	Wiring string

	// Mapper defaults to /dev/mem
	Mapper devmem.Mapper

	Timing pulsetiming.Options
}

// Program is a named diagnostic routine. It should return when ctx is done.
type Program func(ctx context.Context, s *Session, args []string) error

// Session owns one initialized controller and timing engine
type Session struct {
	ID uuid.UUID

	logger     *logrus.Entry
	controller *vgpio.Controller
	timing     *pulsetiming.Engine
	programs   map[string]Program
}

// NewSession maps the registers of the target and registers the built-in
// programs.
func NewSession(opts *Options, logger *logrus.Entry) (*Session, error) {
	id := uuid.New()
	logger = logrusconfig.Component(logger, "diag").WithField("run", id.String())

	mapper := opts.Mapper
	if mapper == nil {
		mapper = &devmem.DevMem{}
	}

	controller, err := vgpio.Open(opts.Target, opts.Wiring, mapper, logger)
	if err != nil {
		return nil, err
	}

	timingOpts := opts.Timing
	if timingOpts.Counter == nil {
		counter, err := pulsetiming.CounterForTarget(mapper, controller.Table().Config())
		if err != nil {
			return nil, err
		}
		timingOpts.Counter = counter
	}

	s := &Session{
		ID:         id,
		logger:     logger,
		controller: controller,
		timing:     pulsetiming.New(&timingOpts, logger),
		programs:   make(map[string]Program),
	}

	s.Register("fill", fillProgram)
	s.Register("walk", walkProgram)
	s.Register("pulse", pulseProgram)

	return s, nil
}

func (s *Session) line(name string) (vgpio.Line, error) {
	l, ok := s.controller.Line(name)
	if !ok {
		return vgpio.Line{}, fmt.Errorf("%w: %s", ErrorUnknownLine, name)
	}
	return l, nil
}

// Read returns the level of a line. The line is not claimed, so outputs
// can be read back too.
func (s *Session) Read(name string) (bool, error) {
	l, err := s.line(name)
	if err != nil {
		return false, err
	}

	high := s.controller.Read(l.Virtual) != 0
	s.logger.WithFields(logrus.Fields{
		"line": name,
		"high": high,
	}).Info("Read line")

	return high, nil
}

func (s *Session) output(name string) (vgpio.Line, error) {
	l, err := s.line(name)
	if err != nil {
		return l, err
	}

	if s.controller.Outputs()&l.Virtual == 0 && s.controller.InitOutputs(l.Virtual) == 0 {
		return l, fmt.Errorf("%w: %s", ErrorLineBusy, name)
	}
	return l, nil
}

// Write claims a line as output if needed and drives it high
func (s *Session) Write(name string) error {
	return s.drive(name, true)
}

// Clear claims a line as output if needed and drives it low
func (s *Session) Clear(name string) error {
	return s.drive(name, false)
}

func (s *Session) drive(name string, high bool) error {
	l, err := s.output(name)
	if err != nil {
		return err
	}

	if high {
		s.controller.SetBits(l.Virtual)
	} else {
		s.controller.ClearBits(l.Virtual)
	}

	if got := s.controller.Read(l.Virtual) != 0; got != high {
		return fmt.Errorf("%w: %s reads %v", ErrorReadback, name, got)
	}

	s.logger.WithFields(logrus.Fields{
		"line": name,
		"high": high,
	}).Info("Drove line")

	return nil
}

// Fill claims every line of the wiring as output, then drives all of them
// high and low, checking the read back level each time.
func (s *Session) Fill() error {
	all := s.controller.Lines().Defined()
	granted := s.controller.InitOutputs(all)
	outputs := s.controller.Outputs() & all

	if missing := all &^ outputs; missing != 0 {
		s.logger.WithField("missing", fmt.Sprintf("0x%08x", uint32(missing))).Warn("Not all lines could be claimed")
	}
	s.logger.WithField("granted", fmt.Sprintf("0x%08x", uint32(granted))).Debug("Claimed outputs")

	s.controller.SetBits(outputs)
	if got := s.controller.Read(outputs); got != outputs {
		return fmt.Errorf("%w: expected 0x%08x high, got 0x%08x", ErrorReadback, uint32(outputs), uint32(got))
	}

	s.controller.ClearBits(outputs)
	if got := s.controller.Read(outputs); got != 0 {
		return fmt.Errorf("%w: expected all low, got 0x%08x", ErrorReadback, uint32(got))
	}

	s.logger.WithField("lines", len(s.controller.Lines().Resolve(outputs))).Info("Fill test passed")
	return nil
}

// Pulser creates a pin pulser on the session's controller and timer
func (s *Session) Pulser(mask vgpio.Mask, specs []int64, opts *pinpulser.Options) (*pinpulser.PinPulser, error) {
	return pinpulser.New(s.controller, mask, specs, s.timing, opts, s.logger)
}

// Register adds or replaces a program
func (s *Session) Register(name string, p Program) {
	s.programs[name] = p
}

// Programs lists the registered program names
func (s *Session) Programs() []string {
	var names []string
	for name := range s.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes a registered program
func (s *Session) Run(ctx context.Context, name string, args []string) error {
	p, ok := s.programs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrorUnknownProgram, name)
	}

	s.logger.WithField("program", name).Info("Starting program")
	err := p(ctx, s, args)
	if err != nil && err != context.Canceled {
		s.logger.WithError(err).WithField("program", name).Error("Program failed")
	}
	return err
}

func (s *Session) Controller() *vgpio.Controller {
	return s.controller
}

func (s *Session) Timing() *pulsetiming.Engine {
	return s.timing
}

func (s *Session) Target() *rockchip.TargetConfig {
	return s.controller.Table().Config()
}

func (s *Session) Logger() *logrus.Entry {
	return s.logger
}
