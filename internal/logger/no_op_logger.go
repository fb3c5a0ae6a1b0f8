package logger

import "go.uber.org/zap"

// NewNoOpLogger returns a logger that doesn't produce output
// which is useful for testing
func NewNoOpLogger() *Logger {
	return &Logger{
		Logger: zap.NewNop(),
	}
}
