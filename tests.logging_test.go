package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCreateLogFilePath ensures the file name carries the time and env.
func TestCreateLogFilePath(t *testing.T) {
	ts := NewMockClocker().Now()
	assert.Equal(t, filepath.Join("logs", "20230702.000000.prod.log"), CreateLogFilePath("logs", true, ts))
	assert.Equal(t, filepath.Join("logs", "20230702.000000.dev.log"), CreateLogFilePath("logs", false, ts))
}

// TestRSyncWriter ensures the writer rotates once the max size is reached.
func TestRSyncWriter(t *testing.T) {
	folder := t.TempDir()
	clock := NewMockClocker()
	rsw := NewRSyncWriter(&Config{LogFolder: folder, LogMaxSize: 1, IsProduction: true}, clock)
	defer rsw.Close()

	n, err := rsw.Write([]byte("first line\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	_, err = rsw.Write(make([]byte, 2*megabyte))
	assert.Error(t, err)

	clock.MockNow = clock.MockNow.Add(time.Second)
	_, err = rsw.Write(make([]byte, megabyte-5))
	require.NoError(t, err)

	files, err := os.ReadDir(folder)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NoError(t, rsw.Sync())
}

// TestSetupLogging ensures records reach the writer with build details.
func TestSetupLogging(t *testing.T) {
	folder := t.TempDir()
	clock := NewMockClocker()
	config := &Config{LogFolder: folder, LogMaxSize: 1, IsProduction: true, LogLevel: zapcore.InfoLevel, GitTag: "v1.0.0"}
	rsw := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, rsw, clock)
	logger.Debug("dropped")
	logger.Info("kept", zap.String("book.isbn", "00000000"))
	require.NoError(t, flusher())
	require.NoError(t, rsw.Close())

	data, err := os.ReadFile(CreateLogFilePath(folder, true, clock.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"app.tag":"v1.0.0"`)
	assert.Contains(t, string(data), `"ts":"2023-07-02T00:00:00.000Z"`)
	assert.NotContains(t, string(data), "dropped")
}

// TestGetLoggerFromContext ensures the request logger is preferred.
func TestGetLoggerFromContext(t *testing.T) {
	api := newTestAPIHandler(nil, nil)
	assert.Same(t, api.logger, api.GetLoggerFromContext(context.Background()))

	requestLogger := zap.NewNop()
	ctx := context.WithValue(context.Background(), LoggerContextKey, requestLogger)
	assert.Same(t, requestLogger, api.GetLoggerFromContext(ctx))
}
