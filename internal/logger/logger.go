package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Init sets up the global logger. A non-empty logFilePath appends to that
// file, which the caller must close. Otherwise logs go to stderr when
// verbose and are discarded when not.
func Init(logFilePath string, verbose bool) (io.Closer, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	if logFilePath == "" {
		if verbose {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
		return io.NopCloser(nil), nil
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(logFile)
	return logFile, nil
}
