package fat32

import (
	"io"

	"github.com/sirupsen/logrus"
)

// discardLogger is the default logger for a mounted Volume: silent unless a
// caller opts in via WithLogger.
func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
