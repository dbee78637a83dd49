package util

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestValueOrDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ValueOrDefault(Pointer(7), 3))
	assert.Equal(t, 3, ValueOrDefault[int](nil, 3))
	assert.Equal(t, "", ValueOrDefault(Pointer(""), "fallback"), "zero value pointer must win over default")
}

func TestZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lvl  LogLevel
		want zerolog.Level
	}{
		{TraceLevel, zerolog.TraceLevel},
		{DebugLevel, zerolog.DebugLevel},
		{InfoLevel, zerolog.InfoLevel},
		{WarnLevel, zerolog.WarnLevel},
		{ErrorLevel, zerolog.ErrorLevel},
		{42, zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ZerologLevel(tt.lvl))
	}
}
