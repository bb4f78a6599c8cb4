// Package runner supervises the single external command the application
// may have outstanding at any time.
//
// A Runner moves through Idle → Starting → Running → Finishing → Idle.
// Start is only accepted in Idle; otherwise it fails with common.ErrBusy
// and leaves the in-flight command untouched. Output chunks from stdout
// and stderr are forwarded to an Observer as they arrive, and when the
// process exits the runner logs a success or failure line, notifies the
// observer of failures, and invokes the job's continuation exactly once.
//
// # Thread Safety
//
// Output reading happens on background goroutines. Every observer callback
// and every continuation is routed through a Dispatcher so that it runs on
// the UI thread:
//
//	r := runner.New(runner.Options{
//	    Dispatcher: runner.DispatcherFunc(func(fn func()) { glib.IdleAdd(fn) }),
//	    Observer:   window,
//	})
//
// Output dispatches are always issued before the completion dispatch, so a
// FIFO dispatcher preserves "output first, then status line".
package runner
