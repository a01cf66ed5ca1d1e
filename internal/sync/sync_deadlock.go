//go:build deadlock

// Package sync re-exports the locking primitives used across gamewire so a
// build with the deadlock tag can swap them for go-deadlock's detectors.
package sync

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

type (
	Mutex     = deadlock.Mutex
	RWMutex   = deadlock.RWMutex
	Pool      = sync.Pool
	WaitGroup = sync.WaitGroup
)
