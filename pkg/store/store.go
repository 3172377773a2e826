// Package store abstracts the portal's document backend. The production
// backend is Firestore; an embedded SQLite backend and an in-memory
// backend implement the same contract for self-hosted deployments and
// tests. The application holds only request-scoped copies of documents;
// nothing is cached across calls.
package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Shingunhoon/Clix/pkg/model"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("store: not found")

// Cursor marks the last item of a served feed page. Pagination is
// cursor-based: a post inserted behind the cursor is never skipped or
// duplicated, while a post inserted ahead of the first page stays
// invisible until the feed restarts.
type Cursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses an opaque cursor token. Empty input yields nil
// (first page).
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	return &c, nil
}

// YearRange returns the [start, end) createdAt bounds of a calendar year.
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// BannerQuery narrows a banner listing. A zero query lists everything.
type BannerQuery struct {
	ActiveOnly bool
	Position   string
	// Year restricts the result to banners scoped to this year. Empty
	// applies no year predicate, so both global and year-scoped banners
	// match. These are exactly the two query shapes the feed issues.
	Year string
}

// UserRepo accesses users/{email}.
type UserRepo interface {
	Get(ctx context.Context, email string) (*model.User, error)
	Put(ctx context.Context, u *model.User) error
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, email string, role model.Role) error
	Delete(ctx context.Context, email string) error
	Count(ctx context.Context) (int, error)
}

// PostRepo accesses posts/{id}. Create assigns the id and the immutable
// createdAt server-side.
type PostRepo interface {
	Get(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, p *model.Post) (string, error)
	Update(ctx context.Context, id, title, content string) error
	Delete(ctx context.Context, id string) error
	// ListAll returns every post, createdAt descending. Year discovery
	// runs over this full scan; a known scalability ceiling.
	ListAll(ctx context.Context) ([]model.Post, error)
	// ListYearPage returns up to limit posts with createdAt inside the
	// given year, descending, starting after the cursor when non-nil.
	ListYearPage(ctx context.Context, year int, after *Cursor, limit int) ([]model.Post, error)
	Count(ctx context.Context) (int, error)
	AddLike(ctx context.Context, id, email string) error
	RemoveLike(ctx context.Context, id, email string) error
	IncrementViews(ctx context.Context, id string) error
}

// CommentRepo counts comments; their schema is otherwise opaque here.
type CommentRepo interface {
	Create(ctx context.Context, c *model.Comment) (string, error)
	Count(ctx context.Context) (int, error)
	CountForPost(ctx context.Context, postID string) (int, error)
}

// BannerRepo accesses banners/{id}. List results are ordered ascending
// by the banner's order field.
type BannerRepo interface {
	Get(ctx context.Context, id string) (*model.Banner, error)
	List(ctx context.Context, q BannerQuery) ([]model.Banner, error)
	Create(ctx context.Context, b *model.Banner) (string, error)
	Update(ctx context.Context, id string, b *model.Banner) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int, error)
}

// PhotoAlbumRepo accesses photoAlbums/{id}.
type PhotoAlbumRepo interface {
	// GetByYear returns the first album matching the year.
	GetByYear(ctx context.Context, year string) (*model.PhotoAlbum, error)
	// List returns all albums, year descending.
	List(ctx context.Context) ([]model.PhotoAlbum, error)
	Create(ctx context.Context, a *model.PhotoAlbum) (string, error)
	Update(ctx context.Context, id, year, link string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// YearMetaRepo accesses yearMetas/{id}. At most one record is expected
// per year; GetByYear returns the first match when duplicates exist.
type YearMetaRepo interface {
	GetByYear(ctx context.Context, year string) (*model.YearMeta, error)
	List(ctx context.Context) ([]model.YearMeta, error)
	Create(ctx context.Context, m *model.YearMeta) (string, error)
	Update(ctx context.Context, id string, m *model.YearMeta) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepo accesses the settings/config singleton. Put is a
// whole-document write: last write wins, no compare-and-swap.
type SettingsRepo interface {
	Get(ctx context.Context) (*model.Settings, error)
	Put(ctx context.Context, s *model.Settings) error
}

// Store bundles the collection repositories behind one backend handle.
type Store interface {
	Users() UserRepo
	Posts() PostRepo
	Comments() CommentRepo
	Banners() BannerRepo
	PhotoAlbums() PhotoAlbumRepo
	YearMetas() YearMetaRepo
	Settings() SettingsRepo
	Close() error
}
