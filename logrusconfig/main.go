package logrusconfig

import (
	"flag"
	"io/ioutil"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var loglevel *int

// InitParam registers the -loglevel flag. Call it before flag.Parse.
func InitParam() {
	loglevel = flag.Int("loglevel", int(logrus.InfoLevel), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
}

// GetLogger returns a root logger. The level given here is used unless
// InitParam registered the flag.
func GetLogger(level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"
	logger := logrus.New()
	if loglevel == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	customFormatter.PrefixPadding = 12
	customFormatter.SpacePadding = 50
	logger.SetFormatter(customFormatter)
	return logrus.NewEntry(logger)
}

// Component derives the logger for one part of the driver. The prefixed
// formatter prints the prefix field in front of the message. A nil parent
// yields a logger that discards everything.
func Component(parent *logrus.Entry, name string) *logrus.Entry {
	if parent == nil {
		parent = Discard()
	}
	return parent.WithField("prefix", name)
}

// Discard returns a logger without output, for tests and library callers
// that do not pass one.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.Out = ioutil.Discard
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}
