// Package logging is the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		l := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "bfres",
		})
		l.SetLevel(log.InfoLevel)
		singleton = &logger{l}
	})
	return singleton
}

// Logger returns the shared logger, for callers that want With().
func Logger() *log.Logger {
	return getLogger().Logger
}

// SetLevel parses a level name ("debug", "info", "warn", "error").
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func Debug(msg string, keyvals ...interface{}) {
	getLogger().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	getLogger().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	getLogger().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	getLogger().Error(msg, keyvals...)
}
