package client

import (
	"context"

	"github.com/Sternrassler/tweeter-client/pkg/model"
	"github.com/Sternrassler/tweeter-client/pkg/pagination"
)

// FolloweeLister is the remote call behind a FollowingFetcher.
type FolloweeLister interface {
	GetFollowees(ctx context.Context, token model.AuthToken, req model.FollowingRequest) (model.FollowingResponse, error)
}

// FollowingFetcher fetches pages of a user's followees for a
// pagination.Coordinator.
type FollowingFetcher struct {
	lister FolloweeLister
	token  model.AuthToken
}

var _ pagination.Fetcher[model.User] = (*FollowingFetcher)(nil)

// NewFollowingFetcher returns a fetcher that authenticates with token.
func NewFollowingFetcher(lister FolloweeLister, token model.AuthToken) *FollowingFetcher {
	return &FollowingFetcher{lister: lister, token: token}
}

// Fetch implements pagination.Fetcher. The cursor maps to the alias of the
// last followee received.
func (f *FollowingFetcher) Fetch(ctx context.Context, req pagination.Request[model.User]) (pagination.Page[model.User], error) {
	wire := model.FollowingRequest{
		FollowerAlias: req.Subject,
		Limit:         req.PageSize,
	}
	if last, ok := req.Cursor.Last(); ok {
		wire.LastFolloweeAlias = last.Alias
	}

	resp, err := f.lister.GetFollowees(ctx, f.token, wire)
	if err != nil {
		return pagination.Page[model.User]{}, err
	}

	items := resp.Followees
	if items == nil {
		items = []model.User{}
	}
	return pagination.Page[model.User]{Items: items, MorePages: resp.HasMorePages}, nil
}
