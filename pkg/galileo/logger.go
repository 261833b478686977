package galileo

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// DefaultLogger is the logger used when the client does not provide
// its own implementation; it forwards to an hclog logger.
type DefaultLogger struct {
	log   hclog.Logger
	debug bool
}

func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		log: hclog.New(&hclog.LoggerOptions{
			Name:  "galileo",
			Level: hclog.Info,
		}),
	}
}

// NewNamedLogger returns a default logger with its own name, useful to
// tell the nodes of an in-process cluster apart.
func NewNamedLogger(name string) *DefaultLogger {
	return &DefaultLogger{
		log: hclog.New(&hclog.LoggerOptions{
			Name:  name,
			Level: hclog.Info,
		}),
	}
}

func (l *DefaultLogger) Info(v ...interface{}) {
	l.log.Info(fmt.Sprint(v...))
}

func (l *DefaultLogger) Infof(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Warn(v ...interface{}) {
	l.log.Warn(fmt.Sprint(v...))
}

func (l *DefaultLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Error(v ...interface{}) {
	l.log.Error(fmt.Sprint(v...))
}

func (l *DefaultLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Debug(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Fatal(v ...interface{}) {
	l.log.Error(fmt.Sprint(v...))
	os.Exit(1)
}

func (l *DefaultLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

// ToggleDebug switches debug logging on or off, returning the
// previous setting.
func (l *DefaultLogger) ToggleDebug(value bool) bool {
	previous := l.debug
	l.debug = value
	if value {
		l.log.SetLevel(hclog.Debug)
	} else {
		l.log.SetLevel(hclog.Info)
	}
	return previous
}

var _ types.Logger = (*DefaultLogger)(nil)
