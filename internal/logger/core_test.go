package logger

import (
	"context"
	"testing"

	"go-crm-funnel/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogEntryPicksContextFields(t *testing.T) {
	entry := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Message: "ticket overdue",
		Caller:  zapcore.EntryCaller{Function: "ticket.(*SweepJob).Run"},
	}
	fields := []zapcore.Field{
		zap.String("request_id", "req-1"),
		zap.String("actor_id", "user-7"),
		zap.Int("count", 3),
	}

	le := NewLogEntry(entry, fields)

	assert.Equal(t, zapcore.WarnLevel, le.Level)
	assert.Equal(t, "ticket overdue", le.Message)
	assert.Equal(t, "req-1", le.RequestID)
	assert.Equal(t, "user-7", le.ActorID)
	assert.Equal(t, "ticket.(*SweepJob).Run", le.Caller)
}

func TestMapLevelToInt(t *testing.T) {
	tests := []struct {
		level zapcore.Level
		want  int
	}{
		{zapcore.DebugLevel, 10},
		{zapcore.InfoLevel, 20},
		{zapcore.WarnLevel, 30},
		{zapcore.ErrorLevel, 40},
		{zapcore.FatalLevel, 50},
		{zapcore.PanicLevel, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapLevelToInt(tt.level), tt.level.String())
	}
}

func TestDBCorePersistsContextFields(t *testing.T) {
	writer := &DBLogWriter{logChan: make(chan LogEntry, 4)}
	base, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(NewDBCore(base, writer)).With(zap.String("component", "funnel"))

	ctx := ContextWithRequestID(context.Background(), "req-77")
	ctx = utils.ContextWithClaims(ctx, &utils.UserClaims{UserID: "user-5", Role: "MANAGER"})
	log.Info("Stage changed", append(ContextFields(ctx), zap.String("record_id", "lead-1"))...)
	log.Debug("below level")

	require.Len(t, writer.logChan, 1)
	le := <-writer.logChan
	assert.Equal(t, "Stage changed", le.Message)
	assert.Equal(t, "req-77", le.RequestID)
	assert.Equal(t, "user-5", le.ActorID)
	assert.Equal(t, 1, logs.Len())
}

func TestContextFieldsEmptyContext(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}
