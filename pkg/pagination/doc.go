// Package pagination drives incremental, cursor-based retrieval of a list
// one page at a time.
//
// A Coordinator owns the continuation state for one subject: the cursor
// (last item received so far), whether more pages exist, and whether a fetch
// is in flight. RequestMore issues at most one fetch at a time through a
// dispatch.Dispatcher; the outcome is applied on the dispatcher's loop and
// reported to a Display.
//
// Example usage:
//
//	loop := dispatch.NewLoop(logger)
//	d := dispatch.New(loop, dispatch.DefaultConfig(), logger)
//	coord := pagination.NewCoordinator[model.User]("@TestUser", fetcher, display, d, pagination.DefaultConfig())
//
//	loop.Post(coord.RequestMore)
//	loop.Run(ctx)
//
// Guarantees:
//   - RequestMore is a silent no-op while a fetch is in flight or after a page
//     reported no more pages
//   - the cursor only advances to the last item of a non-empty page
//   - SetLoading(false) always precedes AddItems or DisplayError
//   - a failed page leaves the state untouched, so RequestMore retries it
//
// All methods must be called from the dispatcher's loop.
package pagination
