package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore is a zap core that forwards every written entry to a DBLogWriter
// before handing it to the wrapped core.
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
}

// NewDBCore wraps an existing core (like console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps the DB sink attached to child loggers.
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	c.writer.AddLog(NewLogEntry(entry, fields))
	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// NewLogEntry extracts the fields the DB sink persists.
func NewLogEntry(entry zapcore.Entry, fields []zapcore.Field) LogEntry {
	le := LogEntry{
		Level:   entry.Level,
		Message: entry.Message,
		Caller:  entry.Caller.Function,
	}
	for _, f := range fields {
		switch f.Key {
		case "request_id":
			le.RequestID = f.String
		case "actor_id":
			le.ActorID = f.String
		}
	}
	return le
}
