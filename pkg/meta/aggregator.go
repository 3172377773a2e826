// Package meta resolves the year-scoped side channels rendered around
// the feed: banners, the photo album link, and the year header block.
package meta

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

// Header block defaults used when a year has no metadata record.
const (
	DefaultColor     = "#fde1e4"
	DefaultTextColor = "#7a2327"
)

// YearContext is everything the feed page renders beside the posts.
// Each field resolves independently; a failed resolution leaves its
// field zero without affecting the others.
type YearContext struct {
	Banners []model.Banner `json:"banners"`
	// PhotoAlbumLink is empty when the year has no album. The client
	// shows a disabled affordance and a message only on invocation.
	PhotoAlbumLink string `json:"photoAlbumLink,omitempty"`
	// Meta is zero when the year has no metadata record; the header
	// block is not rendered in that case.
	Meta model.YearMeta `json:"meta"`
}

// Aggregator runs the three resolutions concurrently.
type Aggregator struct {
	banners store.BannerRepo
	albums  store.PhotoAlbumRepo
	metas   store.YearMetaRepo
	log     *slog.Logger
}

func NewAggregator(s store.Store, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		banners: s.Banners(),
		albums:  s.PhotoAlbums(),
		metas:   s.YearMetas(),
		log:     log,
	}
}

// Resolve fetches the year's banners, album link, and header metadata.
// The three calls run independently and may complete out of order; none
// blocks the others. Failures are logged and leave the corresponding
// field empty.
func (a *Aggregator) Resolve(ctx context.Context, year string) *YearContext {
	out := &YearContext{Banners: []model.Banner{}}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		banners, err := a.resolveBanners(ctx, year)
		if err != nil {
			a.log.Warn("banner resolution failed", "year", year, "error", err)
			return
		}
		out.Banners = banners
	}()

	go func() {
		defer wg.Done()
		if year == "" {
			return
		}
		album, err := a.albums.GetByYear(ctx, year)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				a.log.Warn("photo album resolution failed", "year", year, "error", err)
			}
			return
		}
		out.PhotoAlbumLink = album.GoogleDriveLink
	}()

	go func() {
		defer wg.Done()
		if year == "" {
			return
		}
		m, err := a.metas.GetByYear(ctx, year)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				a.log.Warn("year meta resolution failed", "year", year, "error", err)
			}
			return
		}
		out.Meta = *m
	}()

	wg.Wait()
	return out
}

// resolveBanners queries the right-slot active banners. With a year
// selected the query is year-scoped only; global banners are never
// merged in, so a year with no scoped banners renders none.
func (a *Aggregator) resolveBanners(ctx context.Context, year string) ([]model.Banner, error) {
	q := store.BannerQuery{
		ActiveOnly: true,
		Position:   model.BannerPositionRight,
		Year:       year,
	}
	banners, err := a.banners.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if banners == nil {
		banners = []model.Banner{}
	}
	return banners, nil
}

// HeaderColors returns the header block colors for a resolved context,
// falling back to the portal defaults when unset.
func (c *YearContext) HeaderColors() (color, textColor string) {
	color, textColor = c.Meta.Color, c.Meta.TextColor
	if color == "" {
		color = DefaultColor
	}
	if textColor == "" {
		textColor = DefaultTextColor
	}
	return color, textColor
}
