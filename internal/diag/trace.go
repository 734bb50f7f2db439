package diag

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// tracer is the shared structured logger used to narrate pipeline stages
// (module load, resolve, emit, assemble). It is never consulted for control
// flow — every failure still propagates as a returned error — it exists
// purely so an operator running the CLI front door can see which stage is
// in flight. It records no stage durations.
var (
	tracer     *logrus.Logger
	tracerOnce sync.Once
)

// Tracer returns the process-wide logrus.Logger, initializing it on first
// use with a text formatter and level taken from the ALANC_LOG_LEVEL
// environment variable (defaulting to "info"). This is the one place in the
// core that reads an environment variable, and it governs diagnostics
// verbosity only, never compilation semantics.
func Tracer() *logrus.Logger {
	tracerOnce.Do(func() {
		tracer = logrus.New()
		tracer.SetOutput(os.Stderr)
		tracer.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		level, err := logrus.ParseLevel(envOr("ALANC_LOG_LEVEL", "info"))
		if err != nil {
			level = logrus.InfoLevel
		}
		tracer.SetLevel(level)
	})
	return tracer
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Stage logs entry into one of the named pipeline phases ("parse",
// "resolve", "lower", "assemble") alongside the source file it's acting on.
func Stage(name, file string) *logrus.Entry {
	return Tracer().WithFields(logrus.Fields{"stage": name, "file": file})
}
