// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go - Cold-path tagged logging
//
// Purpose:
//   - Configures the process-wide go-logging backends (stderr + optional file).
//   - Provides tagged DropMessage / DropError helpers for cold-path diagnostics.
//
// Notes:
//   - stdout is reserved for reports and the fork protocol; logs go to stderr.
//   - The optional file backend rotates through lumberjack.
//
// ⚠️ Never invoke in timed batches - use only between phases and trials.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"fmt"
	"io"

	"cimapbench/constants"

	"github.com/mitchellh/go-homedir"
	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logging.MustGetLogger("debug")

var stderrLogFormat = logging.MustStringFormatter(
	`%{color:reset}%{color}%{time:15:04:05.000} [%{module}] [%{level}] %{message}`,
)

var fileLogFormat = logging.MustStringFormatter(
	`%{time:2006-01-02 15:04:05.000} [%{module}] [%{level}] %{message}`,
)

// Init installs the logging backends. w receives every record (normally
// os.Stderr). When file is non-empty, records are also written to a rotating
// log file at that path. level is one of debug, info, notice, warning, error
// or critical.
func Init(w io.Writer, level, file string) error {
	lvl, err := logging.LogLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	backends := []logging.Backend{
		logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), stderrLogFormat),
	}
	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return fmt.Errorf("log file %q: %w", file, err)
		}
		rotating := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    constants.LogMaxSizeMB, // Megabytes
			MaxBackups: constants.LogMaxBackups,
		}
		backends = append(backends,
			logging.NewBackendFormatter(logging.NewLogBackend(rotating, "", 0), fileLogFormat))
	}

	logging.SetBackend(backends...)
	logging.SetLevel(lvl, "")
	return nil
}

// DropError logs err under a tag. A nil err logs the tag alone as a warning,
// for tagged notices such as GC points.
func DropError(prefix string, err error) {
	if err != nil {
		log.Errorf("%s: %v", prefix, err)
		return
	}
	log.Warning(prefix)
}

// DropMessage logs a tagged informational message.
func DropMessage(prefix, message string) {
	log.Infof("%s: %s", prefix, message)
}
