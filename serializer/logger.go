package serializer

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/cbor-serializer/converter"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the serializer's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the serializer's logger and the converter
// package's logger. This must be called before any Serializer is created.
func SetLogger(l *zap.Logger) {
	logger = l
	converter.SetLogger(l)
}
