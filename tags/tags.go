// Package tags maintains the manga tag registry used to translate
// human-readable tag names into the UUIDs the search endpoints expect.
package tags

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mangasan-dev/mangasan/filesystem"
	"github.com/mangasan-dev/mangasan/mangadex"
	"github.com/mangasan-dev/mangasan/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

//go:embed tags.json
var embedded []byte

// Tag is one entry of the registry: a stable UUID with its English name and
// taxonomy group.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

func (t Tag) String() string {
	return t.Name
}

// Registry is the loaded tag taxonomy. Load it once at startup and hand it to
// whatever needs name resolution; nothing is read at import time.
type Registry struct {
	entries []Tag
	cacher  *gache.Cache[[]Tag]
}

// Load builds the registry, preferring a locally refreshed taxonomy over the
// embedded snapshot.
func Load() (*Registry, error) {
	cacher := gache.New[[]Tag](&gache.Options{
		Path:       where.Tags(),
		Lifetime:   time.Hour * 24 * 30,
		FileSystem: &filesystem.GacheFs{},
	})

	entries, expired, err := cacher.Get()
	if err != nil || expired || len(entries) == 0 {
		entries, err = decode(embedded)
		if err != nil {
			return nil, err
		}
	}
	return &Registry{entries: entries, cacher: cacher}, nil
}

func decode(data []byte) ([]Tag, error) {
	var entries []Tag
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode tag registry: %w", err)
	}
	return entries, nil
}

// All returns every tag of the registry.
func (r *Registry) All() []Tag {
	return r.entries
}

// Find resolves a tag by name, case-insensitively, falling back to the
// closest fuzzy match.
func (r *Registry) Find(name string) mo.Option[Tag] {
	for _, tag := range r.entries {
		if strings.EqualFold(tag.Name, name) {
			return mo.Some(tag)
		}
	}

	names := lo.Map(r.entries, func(tag Tag, _ int) string {
		return tag.Name
	})

	matches := fuzzy.RankFindNormalizedFold(name, names)
	if len(matches) == 0 {
		return mo.None[Tag]()
	}

	best := lo.MinBy(matches, func(a, b fuzzy.Rank) bool {
		return a.Distance < b.Distance
	})
	return mo.Some(r.entries[best.OriginalIndex])
}

// IDs resolves tag names to their UUIDs, failing on the first name no tag
// matches.
func (r *Registry) IDs(names ...string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		tag, ok := r.Find(name).Get()
		if !ok {
			return nil, fmt.Errorf("no tag matches %q", name)
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// Query pairs resolved tag UUIDs with the logical mode they combine under,
// mirroring the includedTagsMode/excludedTagsMode search parameters.
type Query struct {
	IDs  []string
	Mode string
}

// NewQuery resolves tag names into a search query with the given combination
// mode ("AND" or "OR", case-insensitive).
func (r *Registry) NewQuery(mode string, names ...string) (Query, error) {
	mode = strings.ToUpper(mode)
	if mode != "AND" && mode != "OR" {
		return Query{}, fmt.Errorf("tag query mode must be AND or OR, got %q", mode)
	}

	ids, err := r.IDs(names...)
	if err != nil {
		return Query{}, err
	}
	return Query{IDs: ids, Mode: mode}, nil
}

// Include applies the query to a search as the set of required tags.
func (q Query) Include(opts *mangadex.MangaListOptions) {
	opts.IncludedTags = q.IDs
	opts.IncludedTagsMode = q.Mode
}

// Exclude applies the query to a search as the set of excluded tags.
func (q Query) Exclude(opts *mangadex.MangaListOptions) {
	opts.ExcludedTags = q.IDs
	opts.ExcludedTagsMode = q.Mode
}

// Update refreshes the registry from the live taxonomy and persists it to
// the local cache.
func (r *Registry) Update(ctx context.Context, client *mangadex.Client) (int, error) {
	remote, err := client.GetTags(ctx)
	if err != nil {
		return 0, err
	}

	entries := lo.Map(remote, func(tag mangadex.Tag, _ int) Tag {
		return Tag{
			ID:    tag.ID,
			Name:  tag.Name.Get("en"),
			Group: tag.Group,
		}
	})

	if err := r.cacher.Set(entries); err != nil {
		return 0, err
	}
	r.entries = entries
	return len(entries), nil
}
