package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ReportCategory is the kind of resource a report targets.
type ReportCategory string

const (
	ReportManga   ReportCategory = "manga"
	ReportChapter ReportCategory = "chapter"
	ReportGroup   ReportCategory = "scanlation_group"
	ReportUser    ReportCategory = "user"
	ReportAuthor  ReportCategory = "author"
)

// ReportReasonAttributes is the typed attribute block of a report reason.
type ReportReasonAttributes struct {
	Reason          LocalizedString `json:"reason"`
	DetailsRequired bool            `json:"detailsRequired"`
	Category        ReportCategory  `json:"category"`
	Version         int             `json:"version"`
}

// ReportReason is one selectable reason for reporting content.
type ReportReason struct {
	ID         string
	Attributes ReportReasonAttributes
}

func buildReportReason(_ *Client, e entity) (*ReportReason, error) {
	r := &ReportReason{ID: e.ID}
	if err := json.Unmarshal(e.Attributes, &r.Attributes); err != nil {
		return nil, fmt.Errorf("decode report reason attributes: %w", err)
	}
	return r, nil
}

// GetReportReasons lists the reasons available for a report category.
func (c *Client) GetReportReasons(ctx context.Context, category ReportCategory) ([]*ReportReason, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/report/reasons/%s", string(category))
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return nil, err
	}

	collection, err := buildCollection(c, payload, buildReportReason)
	if err != nil {
		return nil, err
	}
	return collection.Items, nil
}

// CreateReportOptions is the request body of a content report.
type CreateReportOptions struct {
	Category ReportCategory `json:"category"`
	Reason   string         `json:"reason"`
	ObjectID string         `json:"objectId"`
	Details  string         `json:"details,omitempty"`
}

// CreateReport files a report against a resource.
func (c *Client) CreateReport(ctx context.Context, opts CreateReportOptions) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodPost, "/report")
	return c.requestJSON(ctx, route, requestOptions{body: opts}, nil)
}
