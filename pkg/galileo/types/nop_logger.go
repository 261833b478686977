package types

// NopLogger discards everything; useful as a fallback and in tests
// that do not assert on log output.
type NopLogger struct{}

func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (NopLogger) Info(v ...interface{})                  {}
func (NopLogger) Infof(format string, v ...interface{})  {}
func (NopLogger) Warn(v ...interface{})                  {}
func (NopLogger) Warnf(format string, v ...interface{})  {}
func (NopLogger) Error(v ...interface{})                 {}
func (NopLogger) Errorf(format string, v ...interface{}) {}
func (NopLogger) Debug(v ...interface{})                 {}
func (NopLogger) Debugf(format string, v ...interface{}) {}
func (NopLogger) Fatal(v ...interface{})                 {}
func (NopLogger) Fatalf(format string, v ...interface{}) {}
func (NopLogger) ToggleDebug(value bool) bool            { return false }

var _ Logger = NopLogger{}
