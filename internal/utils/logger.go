package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. Debug mode logs to stderr, a log file
// captures info and above, and with neither the logger stays silent so the live display
// owns the terminal.
func InitLogger(debug bool, logFile string) (io.Closer, error) {
	GlobalDebugFlag = debug
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
		return nil, nil
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		output := zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
		return f, nil
	}
	zerolog.SetGlobalLevel(zerolog.Disabled)
	return nil, nil
}
