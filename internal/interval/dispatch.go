// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

// Op names a device call handed to a Dispatcher.
type Op string

const (
	OpTakeStill      Op = "take_still"
	OpStartRecording Op = "start_recording"
	OpStopRecording  Op = "stop_recording"
)

// Dispatcher runs device calls on behalf of the scheduler. The scheduler
// never holds its lock while dispatching, so fn may run inline.
type Dispatcher interface {
	Dispatch(op Op, fn func())
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(op Op, fn func())

func (f DispatchFunc) Dispatch(op Op, fn func()) { f(op, fn) }

var (
	// Async runs every call on its own goroutine.
	Async Dispatcher = DispatchFunc(func(_ Op, fn func()) { go fn() })
	// Inline runs every call on the caller's goroutine.
	Inline Dispatcher = DispatchFunc(func(_ Op, fn func()) { fn() })
)

// effects collects work decided under the scheduler lock and run after it
// is released.
type effects []func()

func (e *effects) add(fn func()) { *e = append(*e, fn) }

func (e effects) run() {
	for _, fn := range e {
		fn()
	}
}
