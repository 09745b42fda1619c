//go:build !deadlock

// Package syncutil provides the mutex used by the driver.
// By default it is a plain sync.Mutex. Build with -tags=deadlock to swap in
// github.com/sasha-s/go-deadlock and catch lock ordering bugs in callers.
package syncutil

import "sync"

// Mutex wraps sync.Mutex. Build with -tags=deadlock for deadlock detection.
type Mutex struct {
	sync.Mutex
}
