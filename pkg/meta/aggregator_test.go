package meta

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

func TestResolve_BannersNeverMixScopedAndGlobal(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	mk := func(year string, order int) {
		_, err := s.Banners().Create(ctx, &model.Banner{
			ImageURL: "https://img.example/b",
			Position: model.BannerPositionRight,
			IsActive: true,
			Order:    order,
			Year:     year,
		})
		require.NoError(t, err)
	}
	mk("2024", 2)
	mk("2024", 1)
	mk("", 0) // global fallback

	a := NewAggregator(s, nil)

	// Year selected: scoped banners only, order ascending.
	got := a.Resolve(ctx, "2024")
	require.Len(t, got.Banners, 2)
	assert.Equal(t, 1, got.Banners[0].Order)
	for _, b := range got.Banners {
		assert.Equal(t, "2024", b.Year, "global banner leaked into scoped result")
	}

	// A year with no scoped banners renders none; the global set is not
	// a fallback.
	got = a.Resolve(ctx, "2020")
	assert.Empty(t, got.Banners)

	// No selection: the yearless query shape, every active right banner.
	got = a.Resolve(ctx, "")
	assert.Len(t, got.Banners, 3)
}

func TestResolve_AlbumAndMeta(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	_, err := s.PhotoAlbums().Create(ctx, &model.PhotoAlbum{
		Year: "2024", GoogleDriveLink: "https://drive.example/2024",
	})
	require.NoError(t, err)
	_, err = s.YearMetas().Create(ctx, &model.YearMeta{
		Year: "2024", Title: "Graduation Show 2024", Color: "#112233",
	})
	require.NoError(t, err)

	a := NewAggregator(s, nil)

	got := a.Resolve(ctx, "2024")
	assert.Equal(t, "https://drive.example/2024", got.PhotoAlbumLink)
	assert.Equal(t, "Graduation Show 2024", got.Meta.Title)
	assert.False(t, got.Meta.IsZero())

	color, textColor := got.HeaderColors()
	assert.Equal(t, "#112233", color)
	assert.Equal(t, DefaultTextColor, textColor)
}

func TestResolve_AbsenceYieldsEmptyFields(t *testing.T) {
	ctx := context.Background()
	a := NewAggregator(store.NewMemoryStore(), nil)

	got := a.Resolve(ctx, "2024")
	assert.Empty(t, got.Banners)
	assert.Empty(t, got.PhotoAlbumLink)
	assert.True(t, got.Meta.IsZero())

	color, textColor := got.HeaderColors()
	assert.Equal(t, DefaultColor, color)
	assert.Equal(t, DefaultTextColor, textColor)
}

// failingBanners simulates a backend-call failure on one side channel.
type failingBanners struct{ store.BannerRepo }

func (failingBanners) List(context.Context, store.BannerQuery) ([]model.Banner, error) {
	return nil, errors.New("permission denied")
}

type failingBannerStore struct{ store.Store }

func (s failingBannerStore) Banners() store.BannerRepo { return failingBanners{} }

func TestResolve_FailuresAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()

	_, err := mem.PhotoAlbums().Create(ctx, &model.PhotoAlbum{
		Year: "2024", GoogleDriveLink: "https://drive.example/2024",
	})
	require.NoError(t, err)

	a := NewAggregator(failingBannerStore{Store: mem}, nil)

	got := a.Resolve(ctx, "2024")
	assert.Empty(t, got.Banners, "failed resolution leaves its field empty")
	assert.Equal(t, "https://drive.example/2024", got.PhotoAlbumLink,
		"banner failure must not block the album resolution")
}
