package persist

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGooseLoggerWritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := gooseLogger{log: zap.New(core).Named("migrations").Sugar()}

	l.Printf("OK   %s (%v)\n", "00001_wake_settings.sql", "12ms")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "OK   00001_wake_settings.sql (12ms)", entries[0].Message)
	require.Equal(t, "migrations", entries[0].LoggerName)
}
