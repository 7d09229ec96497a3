package crawl

import "sync/atomic"

// StopFlag is a cooperative stop request shared between a controller and
// an Executor. The zero value is ready to use.
type StopFlag struct {
	stopped atomic.Bool
}

// Stop requests that no further attempts start.
func (f *StopFlag) Stop() {
	f.stopped.Store(true)
}

// Stopped reports whether Stop has been called. It is suitable for Executor.ShouldStop.
func (f *StopFlag) Stopped() bool {
	return f.stopped.Load()
}
