// Package applog configures structured logging for segment-server,
// mirroring the timestamped, leveled console format of the original
// implementation's logger setup.
package applog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// timestampFormat matches the original implementation's logger
// ("%d %b %Y %H:%M:%S%.3f"), e.g. "31 Jul 2026 09:04:12.345".
const timestampFormat = "02 Jan 2006 15:04:05.000"

// New builds a logger writing to stdout with the project's standard
// text format. debug raises the level to Debug; otherwise it is Info.
func New(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}
