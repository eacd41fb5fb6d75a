package gridcalc

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logger receives lifecycle events at debug level. it discards everything
// until SetLogger is called.
var logger logrus.FieldLogger = discardLogger()

// SetLogger routes the package's log output to l. nil restores the
// discarding default.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = discardLogger()
	}
	logger = l
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sheetLog(s *Sheet) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"sheet":  s.id.String(),
		"width":  s.width,
		"height": s.height,
	})
}
