package mangadex

import (
	"encoding/json"

	"github.com/samber/mo"
)

// Relationship is one entry of an entity's embedded relationships array.
// Depending on whether the parent request asked for the matching includes[]
// expansion, the entry is either fully resolved (attributes present) or a
// bare id+type stub requiring a follow-up fetch.
type Relationship struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Related    string          `json:"related,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// Resolved reports whether the entry carries inlined attributes, i.e. no
// network call is needed to materialize the related object.
func (r Relationship) Resolved() bool {
	return len(r.Attributes) > 0 && string(r.Attributes) != "null"
}

// Relationships wraps an entity's relationship entries with typed scans.
//
// An empty scan result is ambiguous: the API omits relationships entirely
// when the matching includes[] parameter was not requested, so "none found"
// must be read as "unknown", never as "confirmed empty".
type Relationships struct {
	entries []Relationship
}

// newRelationships builds a Relationships view over raw payload entries.
func newRelationships(entries []Relationship) Relationships {
	return Relationships{entries: entries}
}

// All returns every relationship entry in payload order.
func (rs Relationships) All() []Relationship {
	return rs.entries
}

// OfType returns every entry with the given relationship type, in payload order.
func (rs Relationships) OfType(relType string) []Relationship {
	var matched []Relationship
	for _, entry := range rs.entries {
		if entry.Type == relType {
			matched = append(matched, entry)
		}
	}
	return matched
}

// First returns the first entry with the given relationship type, if any.
func (rs Relationships) First(relType string) mo.Option[Relationship] {
	for _, entry := range rs.entries {
		if entry.Type == relType {
			return mo.Some(entry)
		}
	}
	return mo.None[Relationship]()
}
