// Package log provides a thread-safe, structured logging infrastructure with optional filesystem persistence
// and a live broadcast feed.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/streamio/streamio/filesystem"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/where"
)

// Fields is an alias so callers don't need to import logrus for structured fields.
type Fields = logrus.Fields

var hookOnce sync.Once

// Setup initializes the logging subsystem from the global configuration.
// Entries always go to stderr; logs.write additionally appends them to a daily file.
func Setup() error {
	var out io.Writer = os.Stderr

	if viper.GetBool(key.LogsWrite) {
		path := filepath.Join(where.Logs(), fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))

		f, err := filesystem.OpenAppend(path)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}
	logrus.SetOutput(out)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	hookOnce.Do(func() { logrus.AddHook(feed) })

	return nil
}

// WithFields starts an entry carrying the given structured fields.
func WithFields(fields Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

func Error(args ...interface{}) {
	logrus.Error(args...)
}
func Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}
func Warn(args ...interface{}) {
	logrus.Warn(args...)
}
func Warnf(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}
func Info(args ...interface{}) {
	logrus.Info(args...)
}
func Infof(format string, args ...interface{}) {
	logrus.Infof(format, args...)
}
func Debug(args ...interface{}) {
	logrus.Debug(args...)
}
func Debugf(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}
