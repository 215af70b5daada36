package logging

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/metraction/ncconf/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {

	var sb strings.Builder
	logger := NewLoggerTo(&sb, "warn", "json")
	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "config.php").Msg("shown")

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "config.php", entry["file"])
	assert.Equal(t, "shown", entry["message"])
	assert.Contains(t, entry, "time")

	// console, unknown level is info
	sb.Reset()
	logger = NewLoggerTo(&sb, "nope", "console")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	output := utils.NoColorCodes(sb.String())
	assert.Contains(t, output, "INF shown")
	assert.NotContains(t, output, "hidden")
	assert.NotContains(t, output, "{")
}
