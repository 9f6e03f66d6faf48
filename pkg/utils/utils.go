package utils

import (
	"playstore-predictor/pkg/logger"
	"runtime/debug"
)

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered in goroutine",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}
