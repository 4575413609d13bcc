package mangadex

import (
	"encoding/json"

	"github.com/mangasan-dev/mangasan/util"
)

// Server-side pagination bounds, enforced client-side by clamping.
const (
	// MaxLimit is the largest page size the API accepts.
	MaxLimit = 500
	// MaxDepth is the largest cumulative offset the API will serve results for.
	MaxDepth = 10_000
)

// clampLimits constrains a limit/offset pair to the ranges the API accepts:
// limit in [1, max], offset in [0, MaxDepth-limit].
func clampLimits(limit, offset, max int) (int, int) {
	limit = util.Clamp(limit, 1, max)
	offset = util.Clamp(offset, 0, MaxDepth-limit)
	return limit, offset
}

// Collection is one page of a paginated listing, carrying the clamp-adjusted
// window the server actually answered and the total match count.
type Collection[T any] struct {
	Items  []T
	Limit  int
	Offset int
	Total  int
}

// HasMore reports whether another page exists within the API's depth cap.
func (c Collection[T]) HasMore() bool {
	next := c.Offset + len(c.Items)
	return next < c.Total && next < MaxDepth
}

// entity is the raw JSON:API-like object shape shared by every resource.
type entity struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Attributes    json.RawMessage `json:"attributes"`
	Relationships []Relationship  `json:"relationships"`
}

// singleResponse is the envelope for one-item endpoints.
type singleResponse struct {
	Result string `json:"result"`
	Data   entity `json:"data"`
}

// listResponse is the envelope for collection endpoints.
type listResponse struct {
	Result string   `json:"result"`
	Data   []entity `json:"data"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Total  int      `json:"total"`
}

// buildCollection materializes every entity of a list payload through the
// given constructor, keeping the pagination window the server answered.
func buildCollection[T any](c *Client, payload listResponse, build func(*Client, entity) (T, error)) (Collection[T], error) {
	out := Collection[T]{
		Limit:  payload.Limit,
		Offset: payload.Offset,
		Total:  payload.Total,
	}
	for _, e := range payload.Data {
		item, err := build(c, e)
		if err != nil {
			return Collection[T]{}, err
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
