// Package multirun runs a list of steps in order and stops them on Close or
// on SIGTERM.
package multirun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BertoldVdb/rk-vgpio/closeflag"
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/sirupsen/logrus"
)

var (
	ErrorClosed = errors.New("The multirun was closed")
)

// StepFunc does one unit of work. It must return soon after ctx is done.
type StepFunc func(ctx context.Context) error

type step struct {
	name string
	run  StepFunc
}

// MultiRun runs registered steps one after another. A failing step does
// not stop the steps after it; Close does.
type MultiRun struct {
	logger    *logrus.Entry
	steps     []step
	closeflag closeflag.CloseFlag

	// ShutdownTimeout bounds the time between the first signal and exit.
	// Zero means 5 seconds.
	ShutdownTimeout time.Duration
}

func New(logger *logrus.Entry) *MultiRun {
	return &MultiRun{
		logger: logrusconfig.Component(logger, "run"),
	}
}

// RegisterFunc appends a step. Steps cannot be added while Run is active.
func (m *MultiRun) RegisterFunc(name string, run StepFunc) {
	m.steps = append(m.steps, step{name: name, run: run})
}

// Run executes every step and returns the first failure. Steps not yet
// started when the MultiRun is closed are skipped and ErrorClosed is
// returned if nothing failed before.
func (m *MultiRun) Run() error {
	if m.closeflag.IsClosed() {
		return ErrorClosed
	}

	ctx, cancel := m.closeflag.Context(context.Background())
	defer cancel()

	var result error
	for _, s := range m.steps {
		if m.closeflag.IsClosed() {
			break
		}

		err := s.run(ctx)
		if err == nil || (m.closeflag.IsClosed() && errors.Is(err, context.Canceled)) {
			continue
		}

		m.logger.WithError(err).WithField("step", s.name).Error("Step failed")
		if result == nil {
			result = fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if result == nil && m.closeflag.IsClosed() {
		result = ErrorClosed
	}
	return result
}

// Close cancels the running step and skips the remaining ones
func (m *MultiRun) Close() error {
	return m.closeflag.Close()
}

// HandleSIGTERM closes the MultiRun on SIGINT or SIGTERM. A second signal, or
// a shutdown that takes too long, exits the process with status 1.
func (m *MultiRun) HandleSIGTERM() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go m.handleSignals(c, os.Exit)
}

func (m *MultiRun) handleSignals(c <-chan os.Signal, exit func(int)) {
	sig := <-c
	m.logger.WithField("signal", sig).Info("Stopping")

	timeout := m.ShutdownTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	go func() {
		select {
		case <-c:
			m.logger.Warn("Second signal, quitting right away")
		case <-time.After(timeout):
			m.logger.Warn("Shutdown timed out, registers may be left driven")
		}
		exit(1)
	}()

	m.Close()
}
