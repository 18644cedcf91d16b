// Package goroutine launches background work that must not take the
// process down when it panics.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/tierworks/sellertiers/internal/shared/logger"
)

// Run starts fn in a goroutine and delivers its result on the returned
// channel. A panic is logged with its stack and delivered as an error.
// The channel is buffered so an abandoned result never blocks fn.
func Run(log logger.Interface, name string, fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
				done <- fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		done <- fn()
	}()
	return done
}
