package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface every component of the chipset
// is constructed with.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatal(str string)
}

type logger struct {
	*logrus.Logger
}

// New returns a Logger backed by logrus, writing plain text
// to stderr at debug level.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return &logger{Logger: l}
}

// NewWithOutput is like New, but writes to w at the given level.
// Unknown levels fall back to info.
func NewWithOutput(w io.Writer, level string) Logger {
	l := New().(*logger)
	l.SetOutput(w)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

func (l *logger) Fatal(str string) {
	l.Logger.Fatal(str)
}
