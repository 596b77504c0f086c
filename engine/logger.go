package engine

import (
	"sync"

	"go.uber.org/zap"
)

var (
	fallback     *zap.Logger
	fallbackOnce sync.Once
)

// Logger returns the fallback logger used by engines constructed without
// WithLogger. It discards everything; callers wanting engine output pass
// their own logger.
func Logger() *zap.Logger {
	fallbackOnce.Do(func() {
		fallback = zap.NewNop()
	})
	return fallback
}
