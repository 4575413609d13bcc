package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LegacyMappingType names a resource kind supported by the legacy ID
// migration endpoint.
type LegacyMappingType string

const (
	LegacyManga   LegacyMappingType = "manga"
	LegacyChapter LegacyMappingType = "chapter"
	LegacyGroup   LegacyMappingType = "group"
	LegacyTag     LegacyMappingType = "tag"
)

// LegacyMapping pairs a pre-migration numeric ID with its current UUID.
type LegacyMapping struct {
	Type     LegacyMappingType
	LegacyID int
	NewID    string
}

type legacyMappingAttributes struct {
	Type     LegacyMappingType `json:"type"`
	LegacyID int               `json:"legacyId"`
	NewID    string            `json:"newId"`
}

// GetLegacyMappings resolves old numeric IDs to their current UUIDs.
func (c *Client) GetLegacyMappings(ctx context.Context, mappingType LegacyMappingType, legacyIDs []int) ([]LegacyMapping, error) {
	body := map[string]any{
		"type": mappingType,
		"ids":  legacyIDs,
	}

	var payload listResponse
	route := NewRoute(http.MethodPost, "/legacy/mapping")
	if err := c.requestJSON(ctx, route, requestOptions{body: body}, &payload); err != nil {
		return nil, err
	}

	mappings := make([]LegacyMapping, 0, len(payload.Data))
	for _, e := range payload.Data {
		var attrs legacyMappingAttributes
		if err := json.Unmarshal(e.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("decode legacy mapping attributes: %w", err)
		}
		mappings = append(mappings, LegacyMapping{
			Type:     attrs.Type,
			LegacyID: attrs.LegacyID,
			NewID:    attrs.NewID,
		})
	}
	return mappings, nil
}
