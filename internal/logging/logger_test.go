package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "SavingsPocket", "info")

	logger.Info("test message", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "JSON log should be valid")
	require.Equal(t, "test message", entry["msg"])
	require.Equal(t, "INFO", entry["level"])
	require.Equal(t, "value", entry["key"])
	require.Equal(t, "SavingsPocket", entry["app"])
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var debugBuf, infoBuf bytes.Buffer
			NewWithWriter(&debugBuf, "", tt.level).Debug("debug")
			NewWithWriter(&infoBuf, "", tt.level).Info("info")

			require.Equal(t, tt.debugShown, debugBuf.Len() > 0)
			require.Equal(t, tt.infoShown, infoBuf.Len() > 0)
		})
	}
}
