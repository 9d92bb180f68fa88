package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLoggerFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.Disabled)
	path := filepath.Join(t.TempDir(), "run.log")
	closer, err := InitLogger(false, path)
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	log.Debug().Str("op", "utils/logger").Msg("hidden")
	log.Info().Str("op", "utils/logger").Msg("visible")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "visible") || strings.Contains(string(data), "hidden") {
		t.Errorf("log file content = %q", data)
	}
	if GlobalDebugFlag {
		t.Error("GlobalDebugFlag should be false")
	}
}

func TestInitLoggerDisabled(t *testing.T) {
	closer, err := InitLogger(false, "")
	if err != nil || closer != nil {
		t.Fatalf("InitLogger = %v, %v", closer, err)
	}
	if zerolog.GlobalLevel() != zerolog.Disabled {
		t.Errorf("level = %s, want disabled", zerolog.GlobalLevel())
	}
}
