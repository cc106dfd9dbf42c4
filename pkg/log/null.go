package log

// nullLogger discards everything, including Fatal.
type nullLogger struct{}

func (nullLogger) Fatal(string)                  {}
func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}

// NewNullLogger returns a logger that does nothing. It is the
// default for every component constructed without WithLogger.
func NewNullLogger() Logger {
	return nullLogger{}
}

// OrNull returns l, or a null logger if l is nil.
func OrNull(l Logger) Logger {
	if l == nil {
		return nullLogger{}
	}
	return l
}
