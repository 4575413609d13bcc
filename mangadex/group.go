package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mangasan-dev/mangasan/query"
)

// GroupAttributes is the typed attribute block of a scanlation group entity.
type GroupAttributes struct {
	Name             string            `json:"name"`
	AltNames         []LocalizedString `json:"altNames"`
	Website          *string           `json:"website"`
	IRCServer        *string           `json:"ircServer"`
	IRCChannel       *string           `json:"ircChannel"`
	Discord          *string           `json:"discord"`
	ContactEmail     *string           `json:"contactEmail"`
	Description      *string           `json:"description"`
	Twitter          *string           `json:"twitter"`
	MangaUpdates     *string           `json:"mangaUpdates"`
	FocusedLanguages []string          `json:"focusedLanguages"`
	Locked           bool              `json:"locked"`
	Official         bool              `json:"official"`
	Verified         bool              `json:"verified"`
	Inactive         bool              `json:"inactive"`
	PublishDelay     *string           `json:"publishDelay"`
	Version          int               `json:"version"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// ScanlatorGroup is a group that translates and uploads chapters.
type ScanlatorGroup struct {
	ID            string
	Attributes    GroupAttributes
	Relationships Relationships

	client *Client
}

func (g *ScanlatorGroup) String() string {
	return g.Attributes.Name
}

func buildGroup(c *Client, e entity) (*ScanlatorGroup, error) {
	g := &ScanlatorGroup{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &g.Attributes); err != nil {
		return nil, fmt.Errorf("decode group attributes: %w", err)
	}
	return g, nil
}

// Members resolves the users belonging to this group, members and leader
// alike. Only resolved relationship entries are returned; stub entries are
// fetched individually.
func (g *ScanlatorGroup) Members(ctx context.Context) ([]*User, error) {
	var members []*User
	for _, relType := range []string{"leader", "member"} {
		for _, entry := range g.Relationships.OfType(relType) {
			if entry.Resolved() {
				user, err := buildUser(g.client, entity{ID: entry.ID, Attributes: entry.Attributes})
				if err != nil {
					return nil, err
				}
				members = append(members, user)
				continue
			}

			user, err := g.client.GetUser(ctx, entry.ID)
			if err != nil {
				return nil, err
			}
			members = append(members, user)
		}
	}
	return members, nil
}

// GroupListOptions are the supported filters of the group listing endpoint.
type GroupListOptions struct {
	Limit           int      `url:"limit,omitempty"`
	Offset          int      `url:"offset,omitempty"`
	IDs             []string `url:"ids,omitempty,brackets"`
	Name            string   `url:"name,omitempty"`
	FocusedLanguage string   `url:"focusedLanguage,omitempty"`
	Includes        []string `url:"includes,omitempty,brackets"`
}

// ListScanlationGroups performs a filtered group search.
func (c *Client) ListScanlationGroups(ctx context.Context, opts GroupListOptions) (Collection[*ScanlatorGroup], error) {
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, MaxLimit)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*ScanlatorGroup]{}, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/group")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*ScanlatorGroup]{}, err
	}

	return buildCollection(c, payload, buildGroup)
}

// GetScanlationGroup fetches one group by UUID.
func (c *Client) GetScanlationGroup(ctx context.Context, groupID string, includes ...string) (*ScanlatorGroup, error) {
	q := query.New()
	if len(includes) > 0 {
		q.Set("includes", includes)
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/group/%s", groupID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return nil, err
	}

	return buildGroup(c, payload.Data)
}

// CreateGroupOptions is the request body of a group creation.
type CreateGroupOptions struct {
	Name       string  `json:"name"`
	Website    *string `json:"website,omitempty"`
	IRCServer  *string `json:"ircServer,omitempty"`
	IRCChannel *string `json:"ircChannel,omitempty"`
	Discord    *string `json:"discord,omitempty"`
}

// CreateScanlationGroup creates a new scanlation group.
func (c *Client) CreateScanlationGroup(ctx context.Context, opts CreateGroupOptions) (*ScanlatorGroup, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/group")
	if err := c.requestJSON(ctx, route, requestOptions{body: opts}, &payload); err != nil {
		return nil, err
	}

	return buildGroup(c, payload.Data)
}

// UpdateGroupOptions is the tri-state request body of a group update.
type UpdateGroupOptions struct {
	Version          int
	Name             query.Tristate[string]
	Leader           query.Tristate[string]
	Members          query.Tristate[[]string]
	Website          query.Tristate[string]
	Discord          query.Tristate[string]
	ContactEmail     query.Tristate[string]
	Description      query.Tristate[string]
	Twitter          query.Tristate[string]
	FocusedLanguages query.Tristate[[]string]
	Locked           query.Tristate[bool]
}

func (o UpdateGroupOptions) body() map[string]any {
	body := map[string]any{"version": o.Version}
	o.Name.Apply(body, "name")
	o.Leader.Apply(body, "leader")
	o.Members.Apply(body, "members")
	o.Website.Apply(body, "website")
	o.Discord.Apply(body, "discord")
	o.ContactEmail.Apply(body, "contactEmail")
	o.Description.Apply(body, "description")
	o.Twitter.Apply(body, "twitter")
	o.FocusedLanguages.Apply(body, "focusedLanguages")
	o.Locked.Apply(body, "locked")
	return body
}

// UpdateScanlationGroup applies a partial update to a group.
func (c *Client) UpdateScanlationGroup(ctx context.Context, groupID string, opts UpdateGroupOptions) (*ScanlatorGroup, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPut, "/group/%s", groupID)
	if err := c.requestJSON(ctx, route, requestOptions{body: opts.body()}, &payload); err != nil {
		return nil, err
	}

	return buildGroup(c, payload.Data)
}

// DeleteScanlationGroup removes a group.
func (c *Client) DeleteScanlationGroup(ctx context.Context, groupID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/group/%s", groupID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// FollowScanlationGroup follows a group for the logged-in user.
func (c *Client) FollowScanlationGroup(ctx context.Context, groupID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodPost, "/group/%s/follow", groupID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// UnfollowScanlationGroup unfollows a group for the logged-in user.
func (c *Client) UnfollowScanlationGroup(ctx context.Context, groupID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/group/%s/follow", groupID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}
