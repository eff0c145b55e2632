package pagination

import "context"

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 10

// Cursor points at the last item received. The zero value is the absent
// cursor used for the first page.
type Cursor[T any] struct {
	last T
	set  bool
}

// CursorAt returns a cursor pointing at item.
func CursorAt[T any](item T) Cursor[T] {
	return Cursor[T]{last: item, set: true}
}

// Last returns the referenced item, or false for the absent cursor.
func (c Cursor[T]) Last() (T, bool) {
	return c.last, c.set
}

// IsZero reports whether the cursor is absent.
func (c Cursor[T]) IsZero() bool {
	return !c.set
}

// Request describes one page to fetch.
type Request[T any] struct {
	Subject  string
	PageSize int
	Cursor   Cursor[T]
}

// Page is one page of results in server order.
type Page[T any] struct {
	Items     []T
	MorePages bool
}

// Fetcher performs the remote call for a single page. It runs on a worker
// goroutine and may block.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req Request[T]) (Page[T], error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[T any] func(ctx context.Context, req Request[T]) (Page[T], error)

// Fetch implements Fetcher.
func (f FetcherFunc[T]) Fetch(ctx context.Context, req Request[T]) (Page[T], error) {
	return f(ctx, req)
}

// Display receives loading state, item batches and errors. It is only
// called from the dispatcher's loop.
type Display[T any] interface {
	SetLoading(loading bool)
	AddItems(items []T)
	DisplayError(message string)
}

// State is a snapshot of a coordinator's continuation state.
type State[T any] struct {
	Cursor    Cursor[T]
	MorePages bool
	InFlight  bool
}
