// Package feed presents posts for exactly one selected year, with
// incremental cursor-based loading.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

// DefaultPageSize is the feed page length.
const DefaultPageSize = 9

// loadMoreProximity is how close to the document bottom (in pixels) the
// client must scroll before the load-more control is advertised.
const loadMoreProximity = 100

// Page is one slice of the year's feed.
type Page struct {
	Items []model.Post `json:"items"`
	// NextCursor is the opaque position of the last served item. Empty
	// means the feed is exhausted.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// DiscoverYears scans every post and returns each distinct createdAt
// year exactly once, sorted descending. Cost is O(total posts); this is
// a known scalability ceiling, not an indexed operation.
func DiscoverYears(ctx context.Context, posts store.PostRepo) ([]string, error) {
	all, err := posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover years: %w", err)
	}

	set := make(map[int]struct{})
	for i := range all {
		set[all[i].Year()] = struct{}{}
	}

	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out, nil
}

// SelectYear picks the year to serve: the requested one if discovered,
// else the most recent. With no discovered years the selection is empty
// and dependent fetches no-op.
func SelectYear(discovered []string, requested string) string {
	if len(discovered) == 0 {
		return ""
	}
	for _, y := range discovered {
		if y == requested {
			return y
		}
	}
	return discovered[0]
}

// FetchPage returns one page of the year's posts, createdAt descending,
// starting after the cursor token when given. A page shorter than
// pageSize exhausts the feed: no cursor, no more pages.
func FetchPage(ctx context.Context, posts store.PostRepo, year string, cursorToken string, pageSize int) (*Page, error) {
	if year == "" {
		return &Page{Items: []model.Post{}}, nil
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, fmt.Errorf("fetch page: bad year %q", year)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	cursor, err := store.DecodeCursor(cursorToken)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	items, err := posts.ListYearPage(ctx, y, cursor, pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if items == nil {
		items = []model.Post{}
	}

	page := &Page{Items: items}
	if len(items) == pageSize {
		last := items[len(items)-1]
		page.NextCursor = store.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		page.HasMore = true
	}
	return page, nil
}

// Controller owns the accumulated feed state for one viewer: discovered
// years, the selected year, loaded items, and the pagination cursor.
// Year switches race with in-flight loads; a generation counter makes
// stale responses land harmlessly instead of corrupting the new year's
// feed.
type Controller struct {
	posts    store.PostRepo
	pageSize int
	log      *slog.Logger

	mu         sync.Mutex
	generation uint64
	years      []string
	selected   string
	items      []model.Post
	cursor     string
	hasMore    bool
	// loadMoreVisible tracks whether the load-more control is shown.
	// Scroll proximity only flips this; it never fetches.
	loadMoreVisible bool
}

// Snapshot is a copy of the controller's visible state.
type Snapshot struct {
	Years           []string     `json:"years"`
	SelectedYear    string       `json:"selectedYear"`
	Items           []model.Post `json:"items"`
	HasMore         bool         `json:"hasMore"`
	LoadMoreVisible bool         `json:"loadMoreVisible"`
}

func NewController(posts store.PostRepo, pageSize int, log *slog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{posts: posts, pageSize: pageSize, log: log}
}

// Init discovers years, selects one, and loads the first page.
func (c *Controller) Init(ctx context.Context, requestedYear string) error {
	years, err := DiscoverYears(ctx, c.posts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.years = years
	c.mu.Unlock()

	return c.SwitchYear(ctx, SelectYear(years, requestedYear))
}

// SwitchYear resets accumulated items, cursor, and the has-more flag,
// then performs a fresh initial fetch. The reset is visible before the
// fetch resolves.
func (c *Controller) SwitchYear(ctx context.Context, year string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.selected = year
	c.items = nil
	c.cursor = ""
	c.hasMore = false
	c.loadMoreVisible = false
	c.mu.Unlock()

	if year == "" {
		return nil
	}

	page, err := FetchPage(ctx, c.posts, year, "", c.pageSize)
	if err != nil {
		return err
	}
	c.apply(gen, page)
	return nil
}

// LoadMore fetches the next page for the selected year.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	gen := c.generation
	year := c.selected
	cursor := c.cursor
	hasMore := c.hasMore
	c.mu.Unlock()

	if year == "" || !hasMore {
		return nil
	}

	page, err := FetchPage(ctx, c.posts, year, cursor, c.pageSize)
	if err != nil {
		return err
	}
	c.apply(gen, page)
	return nil
}

// apply appends a fetched page unless the controller has moved on to a
// newer generation, in which case the response is stale and dropped.
func (c *Controller) apply(gen uint64, page *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.log.Debug("dropping stale feed page", "generation", gen, "current", c.generation)
		return
	}
	c.items = append(c.items, page.Items...)
	c.cursor = page.NextCursor
	c.hasMore = page.HasMore
	if !c.hasMore {
		c.loadMoreVisible = false
	}
}

// ObserveScroll records the viewer's distance from the document bottom.
// Within proximity the load-more control becomes visible; this never
// issues a fetch.
func (c *Controller) ObserveScroll(distanceFromBottom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadMoreVisible = c.hasMore && distanceFromBottom <= loadMoreProximity
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Years:           append([]string(nil), c.years...),
		SelectedYear:    c.selected,
		Items:           append([]model.Post(nil), c.items...),
		HasMore:         c.hasMore,
		LoadMoreVisible: c.loadMoreVisible,
	}
}
