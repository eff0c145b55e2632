package pagination_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/tweeter-client/internal/testutil"
	"github.com/Sternrassler/tweeter-client/pkg/dispatch"
	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/Sternrassler/tweeter-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subject = "@TestUser"

type harness struct {
	loop    *dispatch.Loop
	fetcher *testutil.ScriptedFetcher[model.User]
	display *testutil.RecordingDisplay[model.User]
	coord   *pagination.Coordinator[model.User]
}

func newHarness(t *testing.T, responses ...testutil.FetchResponse[model.User]) *harness {
	t.Helper()

	loop := dispatch.NewLoop(zerolog.Nop())
	t.Cleanup(loop.Close)

	d := dispatch.New(loop, dispatch.DefaultConfig(), zerolog.Nop())
	fetcher := testutil.NewScriptedFetcher(responses...)
	display := &testutil.RecordingDisplay[model.User]{}

	coord := pagination.NewCoordinator[model.User](subject, fetcher, display, d, pagination.DefaultConfig())
	coord.SetLogger(zerolog.Nop())

	return &harness{loop: loop, fetcher: fetcher, display: display, coord: coord}
}

// deliver runs the next task on the loop, which is the test goroutine.
func (h *harness) deliver(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.loop.RunOnce(ctx))
}

// page requests one page and applies its outcome.
func (h *harness) page(t *testing.T) {
	t.Helper()
	h.coord.RequestMore()
	h.deliver(t)
}

func lastAlias(t *testing.T, state pagination.State[model.User]) string {
	t.Helper()
	last, ok := state.Cursor.Last()
	require.True(t, ok, "cursor should be set")
	return last.Alias
}

func TestCoordinator_InitialState(t *testing.T) {
	h := newHarness(t)

	state := h.coord.State()
	assert.True(t, state.Cursor.IsZero())
	assert.True(t, state.MorePages)
	assert.False(t, state.InFlight)
	assert.Equal(t, subject, h.coord.Subject())
	assert.Empty(t, h.display.Events())
}

func TestCoordinator_NoFollowees(t *testing.T) {
	h := newHarness(t, testutil.Page[model.User](false))

	h.page(t)

	state := h.coord.State()
	assert.True(t, state.Cursor.IsZero())
	assert.False(t, state.MorePages)
	assert.False(t, state.InFlight)

	events := h.display.Events()
	require.Len(t, events, 3)
	assert.Equal(t, testutil.EventSetLoading, events[0].Kind)
	assert.True(t, events[0].Loading)
	assert.Equal(t, testutil.EventSetLoading, events[1].Kind)
	assert.False(t, events[1].Loading)
	assert.Equal(t, testutil.EventAddItems, events[2].Kind)
	assert.Empty(t, events[2].Items)

	h.coord.RequestMore()
	h.coord.RequestMore()
	assert.Len(t, h.fetcher.Requests(), 1)
	assert.Len(t, h.display.Events(), 3)
}

func TestCoordinator_OneFollowee(t *testing.T) {
	u2 := testutil.Range(2, 2)
	h := newHarness(t, testutil.Page(false, u2...))

	h.page(t)

	state := h.coord.State()
	assert.Equal(t, u2[0].Alias, lastAlias(t, state))
	assert.False(t, state.MorePages)
	assert.False(t, state.InFlight)

	events := h.display.Events()
	require.Len(t, events, 3)
	assert.Equal(t, u2, events[2].Items)
}

func TestCoordinator_TwoFullPages(t *testing.T) {
	first := testutil.Range(1, 10)
	second := testutil.Range(11, 20)
	h := newHarness(t,
		testutil.Page(true, first...),
		testutil.Page(false, second...),
	)

	h.page(t)
	state := h.coord.State()
	assert.Equal(t, "@ElizabethEngle", lastAlias(t, state))
	assert.True(t, state.MorePages)
	assert.False(t, state.InFlight)

	h.page(t)
	state = h.coord.State()
	assert.Equal(t, "@JillJohnson", lastAlias(t, state))
	assert.False(t, state.MorePages)
	assert.False(t, state.InFlight)

	var batches [][]model.User
	for _, e := range h.display.Events() {
		if e.Kind == testutil.EventAddItems {
			batches = append(batches, e.Items)
		}
	}
	assert.Equal(t, [][]model.User{first, second}, batches)
	assert.Equal(t, 4, h.display.Count(testutil.EventSetLoading))

	requests := h.fetcher.Requests()
	require.Len(t, requests, 2)
	assert.True(t, requests[0].Cursor.IsZero())
	last, ok := requests[1].Cursor.Last()
	require.True(t, ok)
	assert.Equal(t, first[9], last)
}

func TestCoordinator_ThreePagesShortLast(t *testing.T) {
	h := newHarness(t,
		testutil.Page(true, testutil.Range(1, 10)...),
		testutil.Page(true, testutil.Range(11, 20)...),
		testutil.Page(false, testutil.Range(21, 21)...),
	)

	for i := 0; i < 3; i++ {
		h.page(t)
	}

	state := h.coord.State()
	assert.Equal(t, "@JohnBrown", lastAlias(t, state))
	assert.False(t, state.MorePages)

	loadingOn, loadingOff := 0, 0
	for _, e := range h.display.Events() {
		if e.Kind != testutil.EventSetLoading {
			continue
		}
		if e.Loading {
			loadingOn++
		} else {
			loadingOff++
		}
	}
	assert.Equal(t, 3, loadingOn)
	assert.Equal(t, 3, loadingOff)
	assert.Equal(t, 3, h.display.Count(testutil.EventAddItems))

	h.coord.RequestMore()
	assert.Len(t, h.fetcher.Requests(), 3)
}

func TestCoordinator_FailureThenRetry(t *testing.T) {
	h := newHarness(t,
		testutil.Failure[model.User](errors.New("network unreachable")),
		testutil.Page(true, testutil.Range(1, 10)...),
	)

	h.page(t)

	state := h.coord.State()
	assert.True(t, state.Cursor.IsZero())
	assert.True(t, state.MorePages)
	assert.False(t, state.InFlight)

	assert.Equal(t, []testutil.EventKind{
		testutil.EventSetLoading,
		testutil.EventSetLoading,
		testutil.EventDisplayError,
	}, h.display.Kinds())
	assert.Equal(t, "network unreachable", h.display.Events()[2].Message)

	h.page(t)

	requests := h.fetcher.Requests()
	require.Len(t, requests, 2)
	assert.True(t, requests[1].Cursor.IsZero(), "retry must reuse the absent cursor")
	assert.Equal(t, "@ElizabethEngle", lastAlias(t, h.coord.State()))
}

func TestCoordinator_FailureKeepsCursor(t *testing.T) {
	h := newHarness(t,
		testutil.Page(true, testutil.Range(1, 10)...),
		testutil.Failure[model.User](errors.New("server error")),
		testutil.Page(false, testutil.Range(11, 12)...),
	)

	h.page(t)
	h.page(t)

	state := h.coord.State()
	assert.Equal(t, "@ElizabethEngle", lastAlias(t, state))
	assert.True(t, state.MorePages)
	assert.False(t, state.InFlight)

	h.page(t)

	requests := h.fetcher.Requests()
	require.Len(t, requests, 3)
	assert.Equal(t, requests[1].Cursor, requests[2].Cursor)
	assert.Equal(t, "@FranFranklin", lastAlias(t, h.coord.State()))
}

func TestCoordinator_EmptyPageKeepsCursor(t *testing.T) {
	h := newHarness(t,
		testutil.Page(true, testutil.Range(1, 3)...),
		testutil.Page[model.User](true),
	)

	h.page(t)
	h.page(t)

	state := h.coord.State()
	assert.Equal(t, "@BobBobson", lastAlias(t, state))
	assert.True(t, state.MorePages)
}

func TestCoordinator_GuardWhileInFlight(t *testing.T) {
	h := newHarness(t, testutil.Page(true, testutil.Range(1, 10)...))
	h.fetcher.Gate = make(chan struct{})

	h.coord.RequestMore()
	assert.True(t, h.coord.State().InFlight)

	for i := 0; i < 25; i++ {
		h.coord.RequestMore()
	}

	assert.Equal(t, []testutil.EventKind{testutil.EventSetLoading}, h.display.Kinds())

	close(h.fetcher.Gate)
	h.deliver(t)

	assert.Len(t, h.fetcher.Requests(), 1)
	assert.False(t, h.coord.State().InFlight)
	assert.Zero(t, h.loop.Pending())
}

func TestCoordinator_ReentrantRequestFromDisplayIsIgnored(t *testing.T) {
	h := newHarness(t,
		testutil.Page(true, testutil.Range(1, 10)...),
		testutil.Page(false, testutil.Range(11, 12)...),
	)

	var inFlightDuringAdd []bool
	h.display.OnEvent = func(e testutil.Event[model.User]) {
		if e.Kind != testutil.EventAddItems {
			return
		}
		inFlightDuringAdd = append(inFlightDuringAdd, h.coord.State().InFlight)
		h.coord.RequestMore()
	}

	h.page(t)

	assert.Equal(t, []bool{true}, inFlightDuringAdd)
	assert.Len(t, h.fetcher.Requests(), 1)
	assert.False(t, h.coord.State().InFlight)
}

func TestCoordinator_PostedRequestFromDisplayRunsNextPage(t *testing.T) {
	h := newHarness(t,
		testutil.Page(true, testutil.Range(1, 10)...),
		testutil.Page(true, testutil.Range(11, 20)...),
		testutil.Page(false, testutil.Range(21, 21)...),
	)

	h.display.OnEvent = func(e testutil.Event[model.User]) {
		if e.Kind == testutil.EventAddItems {
			require.NoError(t, h.loop.Post(h.coord.RequestMore))
		}
	}

	h.coord.RequestMore()
	// Each page: one outcome task, then the posted RequestMore.
	h.deliver(t)
	h.deliver(t)
	h.deliver(t)
	h.deliver(t)
	h.deliver(t)
	h.deliver(t)

	assert.Len(t, h.fetcher.Requests(), 3)
	assert.False(t, h.coord.State().MorePages)
	assert.Equal(t, 3, h.display.Count(testutil.EventAddItems))
}

func TestCoordinator_NotificationOrder(t *testing.T) {
	h := newHarness(t,
		testutil.Page(true, testutil.Range(1, 10)...),
		testutil.Failure[model.User](errors.New("boom")),
		testutil.Page(false, testutil.Range(11, 11)...),
	)

	for i := 0; i < 3; i++ {
		h.page(t)
	}

	assert.Equal(t, []testutil.EventKind{
		testutil.EventSetLoading, testutil.EventSetLoading, testutil.EventAddItems,
		testutil.EventSetLoading, testutil.EventSetLoading, testutil.EventDisplayError,
		testutil.EventSetLoading, testutil.EventSetLoading, testutil.EventAddItems,
	}, h.display.Kinds())

	events := h.display.Events()
	for i := 0; i < len(events); i += 3 {
		assert.True(t, events[i].Loading, "event %d should be setLoading(true)", i)
		assert.False(t, events[i+1].Loading, "event %d should be setLoading(false)", i+1)
	}
}

func TestCoordinator_PageSizeInRequest(t *testing.T) {
	loop := dispatch.NewLoop(zerolog.Nop())
	t.Cleanup(loop.Close)
	d := dispatch.New(loop, dispatch.DefaultConfig(), zerolog.Nop())

	var got pagination.Request[model.User]
	fetcher := pagination.FetcherFunc[model.User](func(ctx context.Context, req pagination.Request[model.User]) (pagination.Page[model.User], error) {
		got = req
		return pagination.Page[model.User]{}, nil
	})

	coord := pagination.NewCoordinator[model.User](subject, fetcher, &testutil.RecordingDisplay[model.User]{}, d, pagination.Config{PageSize: 25})
	coord.RequestMore()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, loop.RunOnce(ctx))

	assert.Equal(t, subject, got.Subject)
	assert.Equal(t, 25, got.PageSize)
	assert.True(t, got.Cursor.IsZero())
}

func TestNewCoordinator_DefaultsAndValidation(t *testing.T) {
	loop := dispatch.NewLoop(zerolog.Nop())
	t.Cleanup(loop.Close)
	d := dispatch.New(loop, dispatch.DefaultConfig(), zerolog.Nop())
	display := &testutil.RecordingDisplay[model.User]{}
	fetcher := testutil.NewScriptedFetcher[model.User]()

	assert.Panics(t, func() {
		pagination.NewCoordinator[model.User](subject, nil, display, d, pagination.DefaultConfig())
	})
	assert.Panics(t, func() {
		pagination.NewCoordinator[model.User](subject, fetcher, nil, d, pagination.DefaultConfig())
	})
	assert.NotPanics(t, func() {
		pagination.NewCoordinator[model.User](subject, fetcher, display, d, pagination.Config{})
	})
}
