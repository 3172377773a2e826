package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shingunhoon/Clix/pkg/model"
)

// MemoryStore is the in-memory backend used by tests and local
// development. All operations copy documents on the way in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]model.User
	posts       map[string]model.Post
	comments    map[string]model.Comment
	banners     map[string]model.Banner
	photoAlbums map[string]model.PhotoAlbum
	yearMetas   map[string]model.YearMeta
	settings    *model.Settings

	// yearMetaOrder preserves insertion order so "first match wins"
	// stays deterministic when duplicate years exist.
	yearMetaOrder []string

	// now is swappable in tests to control createdAt assignment.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]model.User),
		posts:       make(map[string]model.Post),
		comments:    make(map[string]model.Comment),
		banners:     make(map[string]model.Banner),
		photoAlbums: make(map[string]model.PhotoAlbum),
		yearMetas:   make(map[string]model.YearMeta),
		now:         time.Now,
	}
}

// SetClock overrides createdAt assignment. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) Users() UserRepo               { return (*memUsers)(s) }
func (s *MemoryStore) Posts() PostRepo               { return (*memPosts)(s) }
func (s *MemoryStore) Comments() CommentRepo         { return (*memComments)(s) }
func (s *MemoryStore) Banners() BannerRepo           { return (*memBanners)(s) }
func (s *MemoryStore) PhotoAlbums() PhotoAlbumRepo   { return (*memPhotoAlbums)(s) }
func (s *MemoryStore) YearMetas() YearMetaRepo       { return (*memYearMetas)(s) }
func (s *MemoryStore) Settings() SettingsRepo        { return (*memSettings)(s) }
func (s *MemoryStore) Close() error                  { return nil }

// --- users ---

type memUsers MemoryStore

func (s *memUsers) Get(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) Put(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.users[cp.Email] = cp
	return nil
}

func (s *memUsers) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (s *memUsers) UpdateRole(_ context.Context, email string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	s.users[email] = u
	return nil
}

func (s *memUsers) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; !ok {
		return ErrNotFound
	}
	delete(s.users, email)
	return nil
}

func (s *memUsers) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// --- posts ---

type memPosts MemoryStore

func copyPost(p model.Post) model.Post {
	cp := p
	cp.Likes = append([]string(nil), p.Likes...)
	cp.DetailImages = append([]string(nil), p.DetailImages...)
	cp.TeamMembers = append([]model.TeamMember(nil), p.TeamMembers...)
	cp.TechStack = append([]string(nil), p.TechStack...)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		cp.UpdatedAt = &t
	}
	return cp
}

func (s *memPosts) Get(_ context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyPost(p)
	return &cp, nil
}

func (s *memPosts) Create(_ context.Context, p *model.Post) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyPost(*p)
	cp.ID = uuid.New().String()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	if cp.Likes == nil {
		cp.Likes = []string{}
	}
	s.posts[cp.ID] = cp
	return cp.ID, nil
}

func (s *memPosts) Update(_ context.Context, id, title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.Title = title
	p.Content = content
	now := s.now()
	p.UpdatedAt = &now
	s.posts[id] = p
	return nil
}

func (s *memPosts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func sortPostsDesc(posts []model.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

func (s *memPosts) ListAll(_ context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, copyPost(p))
	}
	sortPostsDesc(out)
	return out, nil
}

func (s *memPosts) ListYearPage(_ context.Context, year int, after *Cursor, limit int) ([]model.Post, error) {
	start, end := YearRange(year)

	s.mu.RLock()
	var candidates []model.Post
	for _, p := range s.posts {
		if p.CreatedAt.Before(start) || !p.CreatedAt.Before(end) {
			continue
		}
		candidates = append(candidates, copyPost(p))
	}
	s.mu.RUnlock()

	sortPostsDesc(candidates)

	out := make([]model.Post, 0, limit)
	for _, p := range candidates {
		if after != nil && !afterCursor(p, after) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// afterCursor reports whether p sorts strictly after the cursor position
// in (createdAt desc, id desc) order.
func afterCursor(p model.Post, c *Cursor) bool {
	if p.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return p.CreatedAt.Equal(c.CreatedAt) && p.ID < c.ID
}

func (s *memPosts) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), nil
}

func (s *memPosts) AddLike(_ context.Context, id, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	for _, l := range p.Likes {
		if l == email {
			return nil
		}
	}
	p.Likes = append(append([]string(nil), p.Likes...), email)
	s.posts[id] = p
	return nil
}

func (s *memPosts) RemoveLike(_ context.Context, id, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	likes := make([]string, 0, len(p.Likes))
	for _, l := range p.Likes {
		if l != email {
			likes = append(likes, l)
		}
	}
	p.Likes = likes
	s.posts[id] = p
	return nil
}

func (s *memPosts) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.Views++
	s.posts[id] = p
	return nil
}

// --- comments ---

type memComments MemoryStore

func (s *memComments) Create(_ context.Context, c *model.Comment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.ID = uuid.New().String()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.comments[cp.ID] = cp
	return cp.ID, nil
}

func (s *memComments) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments), nil
}

func (s *memComments) CountForPost(_ context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

// --- banners ---

type memBanners MemoryStore

func (s *memBanners) Get(_ context.Context, id string) (*model.Banner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.banners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *memBanners) List(_ context.Context, q BannerQuery) ([]model.Banner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Banner
	for _, b := range s.banners {
		if q.ActiveOnly && !b.IsActive {
			continue
		}
		if q.Position != "" && b.Position != q.Position {
			continue
		}
		if q.Year != "" && b.Year != q.Year {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memBanners) Create(_ context.Context, b *model.Banner) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	cp.ID = uuid.New().String()
	s.banners[cp.ID] = cp
	return cp.ID, nil
}

func (s *memBanners) Update(_ context.Context, id string, b *model.Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banners[id]; !ok {
		return ErrNotFound
	}
	cp := *b
	cp.ID = id
	s.banners[id] = cp
	return nil
}

func (s *memBanners) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banners[id]; !ok {
		return ErrNotFound
	}
	delete(s.banners, id)
	return nil
}

func (s *memBanners) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.banners {
		if b.IsActive {
			n++
		}
	}
	return n, nil
}

// --- photo albums ---

type memPhotoAlbums MemoryStore

func (s *memPhotoAlbums) GetByYear(_ context.Context, year string) (*model.PhotoAlbum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id := range s.photoAlbums {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if a := s.photoAlbums[id]; a.Year == year {
			cp := a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memPhotoAlbums) List(_ context.Context) ([]model.PhotoAlbum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PhotoAlbum, 0, len(s.photoAlbums))
	for _, a := range s.photoAlbums {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return strings.Compare(out[i].Year, out[j].Year) > 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memPhotoAlbums) Create(_ context.Context, a *model.PhotoAlbum) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.ID = uuid.New().String()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.photoAlbums[cp.ID] = cp
	return cp.ID, nil
}

func (s *memPhotoAlbums) Update(_ context.Context, id, year, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.photoAlbums[id]
	if !ok {
		return ErrNotFound
	}
	a.Year = year
	a.GoogleDriveLink = link
	s.photoAlbums[id] = a
	return nil
}

func (s *memPhotoAlbums) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photoAlbums[id]; !ok {
		return ErrNotFound
	}
	delete(s.photoAlbums, id)
	return nil
}

func (s *memPhotoAlbums) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photoAlbums), nil
}

// --- year metas ---

type memYearMetas MemoryStore

func (s *memYearMetas) GetByYear(_ context.Context, year string) (*model.YearMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.yearMetaOrder {
		if m, ok := s.yearMetas[id]; ok && m.Year == year {
			cp := m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memYearMetas) List(_ context.Context) ([]model.YearMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.YearMeta, 0, len(s.yearMetas))
	for _, id := range s.yearMetaOrder {
		if m, ok := s.yearMetas[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memYearMetas) Create(_ context.Context, m *model.YearMeta) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.ID = uuid.New().String()
	s.yearMetas[cp.ID] = cp
	s.yearMetaOrder = append(s.yearMetaOrder, cp.ID)
	return cp.ID, nil
}

func (s *memYearMetas) Update(_ context.Context, id string, m *model.YearMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.yearMetas[id]; !ok {
		return ErrNotFound
	}
	cp := *m
	cp.ID = id
	s.yearMetas[id] = cp
	return nil
}

func (s *memYearMetas) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.yearMetas[id]; !ok {
		return ErrNotFound
	}
	delete(s.yearMetas, id)
	for i, oid := range s.yearMetaOrder {
		if oid == id {
			s.yearMetaOrder = append(s.yearMetaOrder[:i], s.yearMetaOrder[i+1:]...)
			break
		}
	}
	return nil
}

// --- settings ---

type memSettings MemoryStore

func (s *memSettings) Get(_ context.Context) (*model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, ErrNotFound
	}
	cp := *s.settings
	return &cp, nil
}

func (s *memSettings) Put(_ context.Context, set *model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *set
	s.settings = &cp
	return nil
}
