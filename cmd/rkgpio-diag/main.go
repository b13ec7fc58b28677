package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/BertoldVdb/rk-vgpio/diag"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/BertoldVdb/rk-vgpio/multirun"
	"github.com/BertoldVdb/rk-vgpio/pulsetiming"
	"github.com/sirupsen/logrus"
)

type actions struct {
	read    string
	write   string
	clear   string
	program string
	args    []string
}

func (a *actions) empty() bool {
	return a.read == "" && a.write == "" && a.clear == "" && a.program == ""
}

// register adds the requested actions as steps, in the order read, write,
// clear, program.
func (a *actions) register(m *multirun.MultiRun, session *diag.Session) {
	if a.read != "" {
		m.RegisterFunc("read", func(ctx context.Context) error {
			_, err := session.Read(a.read)
			return err
		})
	}
	if a.write != "" {
		m.RegisterFunc("write", func(ctx context.Context) error {
			return session.Write(a.write)
		})
	}
	if a.clear != "" {
		m.RegisterFunc("clear", func(ctx context.Context) error {
			return session.Clear(a.clear)
		})
	}
	if a.program != "" {
		m.RegisterFunc(a.program, func(ctx context.Context) error {
			return session.Run(ctx, a.program, a.args)
		})
	}
}

// exitCode is 1 when any step failed. Being stopped by a signal is not a
// failure.
func exitCode(err error) int {
	if err != nil && err != multirun.ErrorClosed {
		return 1
	}
	return 0
}

func main() {
	var a actions
	flag.StringVar(&a.read, "R", "", "Read the line with this name")
	flag.StringVar(&a.write, "W", "", "Drive the line with this name high")
	flag.StringVar(&a.clear, "C", "", "Drive the line with this name low")
	flag.StringVar(&a.program, "p", "", "Run a program, remaining arguments are passed to it (fill, walk, pulse)")
	target := flag.String("target", "rk3288", "SoC: "+strings.Join(rockchip.TargetNames(), ", "))
	wiring := flag.String("wiring", "regular", "Adapter board wiring")
	timingModel := flag.String("timing-model", "", "Busy wait calibration: model1..model4 or detected. Empty uses the built-in default")
	tune := flag.Bool("tune", true, "Write kernel scheduler and cpufreq hints")
	histogram := flag.Bool("histogram", false, "Record the sleep overshoot histogram")
	logrusconfig.InitParam()
	flag.Parse()
	a.args = flag.Args()

	logger := logrusconfig.GetLogger(logrus.InfoLevel)

	opts := &diag.Options{
		Target: *target,
		Wiring: *wiring,
		Timing: pulsetiming.Options{
			Tune:      *tune,
			Histogram: *histogram,
		},
	}

	if *timingModel != "" {
		model, err := pulsetiming.ParseModel(*timingModel)
		if err != nil {
			logger.WithError(err).Fatal("Invalid timing model")
		}
		opts.Timing.Model = model
		opts.Timing.Detect = model == pulsetiming.ModelUnknown
	}

	if a.empty() {
		flag.Usage()
		os.Exit(2)
	}

	session, err := diag.NewSession(opts, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize GPIO mapping. Are you root?")
	}

	m := multirun.New(logger)
	a.register(m, session)
	m.HandleSIGTERM()

	os.Exit(exitCode(m.Run()))
}
