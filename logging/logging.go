// Package logging provides the process-wide structured logger used by every
// worker, the orchestrator, and the HTTP surface.
package logging

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	log  *logrus.Logger
)

// Logger returns the process-wide logger, initializing it on first use with
// the level named by LOG_LEVEL (default "info"). Re-initialization is only
// possible by calling SetLevel once the logger exists; there is no runtime
// re-init of the logger itself, matching the rest of the package-level
// singletons in this repo.
func Logger() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stdout)
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		level, err := logrus.ParseLevel(envOrDefault("LOG_LEVEL", "info"))
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)
	})
	return log
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ForModule returns an entry pre-tagged with the module name, so worker and
// component logs always carry the "module" field required by the
// propagation policy.
func ForModule(module string) *logrus.Entry {
	return Logger().WithField("module", module)
}

// Operation starts a timed log scope for a single operation; call the
// returned func when the operation finishes (success or failure) to emit a
// line with "operation" and "duration_ms" fields alongside whatever extra
// fields the caller supplies up front.
func Operation(entry *logrus.Entry, operation string, fields logrus.Fields) func(err error) {
	start := time.Now()
	e := entry.WithField("operation", operation)
	for k, v := range fields {
		e = e.WithField(k, v)
	}
	return func(err error) {
		e = e.WithField("duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			e.WithError(err).Error("operation failed")
			return
		}
		e.Debug("operation completed")
	}
}
