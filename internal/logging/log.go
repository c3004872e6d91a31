// Package logging provides named logrus loggers writing to stderr.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	base *logrus.Logger
)

func root() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
		base.Out = os.Stderr
		base.Formatter = &logrus.TextFormatter{
			DisableTimestamp: true,
			PadLevelText:     true,
		}
		base.Level = logrus.WarnLevel
	})
	return base
}

// Named returns a logger tagged with the given component name.
func Named(name string) *logrus.Entry {
	return root().WithField("component", name)
}

// SetLevel parses a logrus level name; unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	root().SetLevel(lvl)
}

func SetVerbose(verbose bool) {
	if verbose {
		root().SetLevel(logrus.DebugLevel)
	}
}
