package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestResolveLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want zapcore.Level
	}{
		{name: "default", opts: Options{}, want: zapcore.InfoLevel},
		{name: "verbose", opts: Options{Verbose: true}, want: zapcore.DebugLevel},
		{name: "explicit level wins", opts: Options{Verbose: true, Level: "warn"}, want: zapcore.WarnLevel},
		{name: "case insensitive", opts: Options{Level: " ERROR "}, want: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveLevel(tt.opts)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{}, {JSON: true}, {Verbose: true}, {JSON: true, Level: "error"}} {
		logger, err := New(opts)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}

	_, err := New(Options{Level: "loud"})
	require.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestNewHonorsLevel(t *testing.T) {
	t.Parallel()

	logger, err := New(Options{Level: "warn"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
