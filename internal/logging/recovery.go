package logging

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// ErrPanic wraps every error produced from a recovered panic.
var ErrPanic = errors.New("panic")

// Recover logs a panic in the deferring goroutine and swallows it.
// Use as: defer logging.Recover("countdown")
func Recover(component string) {
	if rec := recover(); rec != nil {
		logPanic(component, rec)
	}
}

// Guard runs fn and turns a panic into an error wrapping ErrPanic.
func Guard(component string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = logPanic(component, rec)
		}
	}()
	return fn()
}

func logPanic(component string, rec interface{}) error {
	emit(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     LevelError,
		Component: component,
		Event:     "panic_recovered",
		Error:     fmt.Sprint(rec),
		Extra: map[string]interface{}{
			"stack": string(debug.Stack()),
		},
	})
	return fmt.Errorf("%w in %s: %v", ErrPanic, component, rec)
}
