// Package dispatch runs blocking work off the caller's execution context and
// delivers each outcome back onto a single designated context.
//
// A Loop is that context: one goroutine draining a FIFO task queue. State that
// is only ever touched from tasks running on a Loop needs no locking.
//
// A Dispatcher starts one goroutine per unit of work. When the work returns,
// exactly one of the two outcome handlers is posted to the Loop:
//
//	loop := dispatch.NewLoop(logger)
//	d := dispatch.New(loop, dispatch.DefaultConfig(), logger)
//
//	dispatch.Go(d, "get-following", fetch,
//		func(page Page) { /* runs on loop */ },
//		func(err error) { /* runs on loop */ },
//	)
//
//	go loop.Run(ctx)
//
// Posting never blocks, so handlers running on the loop may post follow-up
// tasks; those run after the current task returns.
//
// A dispatched unit of work is never aborted by the loop. If the loop is closed
// before the outcome arrives the outcome is dropped and logged.
package dispatch
