package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHandlerStoresErrors(t *testing.T) {
	db := testutil.NewDB(t)
	handler := NewDBHandlerWithInterval(db, time.Hour, 50)
	t.Cleanup(handler.Stop)

	logger := slog.New(handler).With("trace_id", "req-1")
	logger.Info("ignored")
	logger.Error("store operation failed",
		"user_id", "user-1",
		"action", "create recipe",
		"error", errors.New("disk full"),
		"recipe_id", "abc",
	)
	handler.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "store operation failed", entry.Message)
	assert.Equal(t, "req-1", entry.TraceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	assert.Equal(t, "create recipe", entry.Action)
	assert.Equal(t, "disk full", entry.Error)
	assert.JSONEq(t, `{"recipe_id":"abc"}`, string(entry.Extra))
}

func TestDBHandlerStopFlushes(t *testing.T) {
	db := testutil.NewDB(t)
	handler := NewDBHandlerWithInterval(db, time.Hour, 50)

	require.NoError(t, handler.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)))
	handler.Stop()
	handler.Stop()

	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMultiHandlerFansOut(t *testing.T) {
	db := testutil.NewDB(t)
	sink := NewDBHandlerWithInterval(db, time.Hour, 50)
	t.Cleanup(sink.Stop)

	multi := NewMultiHandler(slog.NewTextHandler(nopWriter{}, nil), sink)
	assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))

	slog.New(multi).Error("fan out")
	sink.Flush()

	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDBHandlerWritesThroughAfterStop(t *testing.T) {
	db := testutil.NewDB(t)
	handler := NewDBHandlerWithInterval(db, time.Hour, 50)
	handler.Stop()

	slog.New(handler).Error("late shutdown failure")

	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	db := testutil.NewDB(t)
	sink := NewDBHandlerWithInterval(db, time.Hour, 50)
	t.Cleanup(sink.Stop)

	stdout := slog.NewJSONHandler(failingWriter{}, nil)
	multi := NewMultiHandler(stdout, sink)

	record := slog.NewRecord(time.Now(), slog.LevelError, "store unreachable", 0)
	err := multi.WithAttrs([]slog.Attr{slog.String("trace_id", "req-9")}).Handle(context.Background(), record)
	require.Error(t, err)
	assert.ErrorIs(t, err, errWriteFailed)
	sink.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "store unreachable", logs[0].Message)
	assert.Equal(t, "req-9", logs[0].TraceID)
}

func TestCleanup(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: uuid.New(), Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{ID: uuid.New(), Timestamp: now.AddDate(0, 0, -2), Level: "ERROR", Message: "recent"},
	}).Error)

	deleted, err := Cleanup(db, 30, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWriteFailed }
