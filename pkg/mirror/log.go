package mirror

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// logger traces resolution at debug level.
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
	Prefix:          "mirror",
	Level:           charmlog.WarnLevel,
})

// SetLogger replaces the package logger. Pass a logger at debug level to
// trace every resolution.
func SetLogger(l *charmlog.Logger) {
	if l != nil {
		logger = l
	}
}
