package testlog

import (
	"testing"

	"github.com/danmuck/demprobe/internal/logging"
	"github.com/rs/zerolog/log"
)

// Start configures the test logging profile and marks the start of t.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Msg("start")
}
