package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "json debug", cfg: Config{Level: "debug", Format: "json"}},
		{name: "console warn", cfg: Config{Level: "warn", Format: "console"}},
		{name: "unknown level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, level)

	level, err = parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}
