package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Shingunhoon/Clix/pkg/model"
)

// Collection names as they exist in the production project.
const (
	colUsers       = "users"
	colPosts       = "posts"
	colComments    = "comments"
	colBanners     = "banners"
	colPhotoAlbums = "photoAlbums"
	colYearMetas   = "yearMetas"
	colSettings    = "settings"
)

// FirestoreStore is the production backend.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Users() UserRepo             { return &fsUsers{c: s.client} }
func (s *FirestoreStore) Posts() PostRepo             { return &fsPosts{c: s.client} }
func (s *FirestoreStore) Comments() CommentRepo       { return &fsComments{c: s.client} }
func (s *FirestoreStore) Banners() BannerRepo         { return &fsBanners{c: s.client} }
func (s *FirestoreStore) PhotoAlbums() PhotoAlbumRepo { return &fsPhotoAlbums{c: s.client} }
func (s *FirestoreStore) YearMetas() YearMetaRepo     { return &fsYearMetas{c: s.client} }
func (s *FirestoreStore) Settings() SettingsRepo      { return &fsSettings{c: s.client} }
func (s *FirestoreStore) Close() error                { return s.client.Close() }

func translateFirestoreErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func countDocs(ctx context.Context, q firestore.Query) (int, error) {
	it := q.Select().Documents(ctx)
	defer it.Stop()
	n := 0
	for {
		_, err := it.Next()
		if err == iterator.Done {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
		n++
	}
}

// --- users ---

type fsUsers struct{ c *firestore.Client }

func (r *fsUsers) Get(ctx context.Context, email string) (*model.User, error) {
	snap, err := r.c.Collection(colUsers).Doc(email).Get(ctx)
	if err != nil {
		return nil, translateFirestoreErr(err)
	}
	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, err
	}
	u.Email = snap.Ref.ID
	return &u, nil
}

func (r *fsUsers) Put(ctx context.Context, u *model.User) error {
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	_, err := r.c.Collection(colUsers).Doc(cp.Email).Set(ctx, cp)
	if err != nil {
		return fmt.Errorf("put user %q: %w", cp.Email, err)
	}
	return nil
}

func (r *fsUsers) List(ctx context.Context) ([]model.User, error) {
	it := r.c.Collection(colUsers).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var users []model.User
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return users, nil
		}
		if err != nil {
			return nil, err
		}
		var u model.User
		if err := snap.DataTo(&u); err != nil {
			return nil, err
		}
		u.Email = snap.Ref.ID
		users = append(users, u)
	}
}

func (r *fsUsers) UpdateRole(ctx context.Context, email string, role model.Role) error {
	_, err := r.c.Collection(colUsers).Doc(email).Update(ctx, []firestore.Update{
		{Path: "role", Value: string(role)},
	})
	return translateFirestoreErr(err)
}

func (r *fsUsers) Delete(ctx context.Context, email string) error {
	_, err := r.c.Collection(colUsers).Doc(email).Delete(ctx)
	return translateFirestoreErr(err)
}

func (r *fsUsers) Count(ctx context.Context) (int, error) {
	return countDocs(ctx, r.c.Collection(colUsers).Query)
}

// --- posts ---

type fsPosts struct{ c *firestore.Client }

func docToPost(snap *firestore.DocumentSnapshot) (*model.Post, error) {
	var p model.Post
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = snap.Ref.ID
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return &p, nil
}

func (r *fsPosts) Get(ctx context.Context, id string) (*model.Post, error) {
	snap, err := r.c.Collection(colPosts).Doc(id).Get(ctx)
	if err != nil {
		return nil, translateFirestoreErr(err)
	}
	return docToPost(snap)
}

func (r *fsPosts) Create(ctx context.Context, p *model.Post) (string, error) {
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if cp.Likes == nil {
		cp.Likes = []string{}
	}
	ref, _, err := r.c.Collection(colPosts).Add(ctx, cp)
	if err != nil {
		return "", fmt.Errorf("add post: %w", err)
	}
	return ref.ID, nil
}

func (r *fsPosts) Update(ctx context.Context, id, title, content string) error {
	_, err := r.c.Collection(colPosts).Doc(id).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "content", Value: content},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	return translateFirestoreErr(err)
}

func (r *fsPosts) Delete(ctx context.Context, id string) error {
	_, err := r.c.Collection(colPosts).Doc(id).Delete(ctx)
	return translateFirestoreErr(err)
}

func (r *fsPosts) ListAll(ctx context.Context) ([]model.Post, error) {
	it := r.c.Collection(colPosts).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var posts []model.Post
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return posts, nil
		}
		if err != nil {
			return nil, err
		}
		p, err := docToPost(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
}

func (r *fsPosts) ListYearPage(ctx context.Context, year int, after *Cursor, limit int) ([]model.Post, error) {
	start, end := YearRange(year)

	q := r.c.Collection(colPosts).
		Where("createdAt", ">=", start).
		Where("createdAt", "<", end).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit)
	if after != nil {
		q = q.StartAfter(after.CreatedAt)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var posts []model.Post
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return posts, nil
		}
		if err != nil {
			return nil, err
		}
		p, err := docToPost(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
}

func (r *fsPosts) Count(ctx context.Context) (int, error) {
	return countDocs(ctx, r.c.Collection(colPosts).Query)
}

func (r *fsPosts) AddLike(ctx context.Context, id, email string) error {
	_, err := r.c.Collection(colPosts).Doc(id).Update(ctx, []firestore.Update{
		{Path: "likes", Value: firestore.ArrayUnion(email)},
	})
	return translateFirestoreErr(err)
}

func (r *fsPosts) RemoveLike(ctx context.Context, id, email string) error {
	_, err := r.c.Collection(colPosts).Doc(id).Update(ctx, []firestore.Update{
		{Path: "likes", Value: firestore.ArrayRemove(email)},
	})
	return translateFirestoreErr(err)
}

func (r *fsPosts) IncrementViews(ctx context.Context, id string) error {
	_, err := r.c.Collection(colPosts).Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	return translateFirestoreErr(err)
}

// --- comments ---

type fsComments struct{ c *firestore.Client }

func (r *fsComments) Create(ctx context.Context, c *model.Comment) (string, error) {
	cp := *c
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	ref, _, err := r.c.Collection(colComments).Add(ctx, cp)
	if err != nil {
		return "", fmt.Errorf("add comment: %w", err)
	}
	return ref.ID, nil
}

func (r *fsComments) Count(ctx context.Context) (int, error) {
	return countDocs(ctx, r.c.Collection(colComments).Query)
}

func (r *fsComments) CountForPost(ctx context.Context, postID string) (int, error) {
	return countDocs(ctx, r.c.Collection(colComments).Where("postId", "==", postID))
}

// --- banners ---

type fsBanners struct{ c *firestore.Client }

func (r *fsBanners) Get(ctx context.Context, id string) (*model.Banner, error) {
	snap, err := r.c.Collection(colBanners).Doc(id).Get(ctx)
	if err != nil {
		return nil, translateFirestoreErr(err)
	}
	var b model.Banner
	if err := snap.DataTo(&b); err != nil {
		return nil, err
	}
	b.ID = snap.Ref.ID
	return &b, nil
}

// List sorts client-side so no composite index is required for the
// query shapes the feed issues.
func (r *fsBanners) List(ctx context.Context, q BannerQuery) ([]model.Banner, error) {
	query := r.c.Collection(colBanners).Query
	if q.ActiveOnly {
		query = query.Where("isActive", "==", true)
	}
	if q.Position != "" {
		query = query.Where("position", "==", q.Position)
	}
	if q.Year != "" {
		query = query.Where("year", "==", q.Year)
	}

	it := query.Documents(ctx)
	defer it.Stop()

	var banners []model.Banner
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b model.Banner
		if err := snap.DataTo(&b); err != nil {
			return nil, err
		}
		b.ID = snap.Ref.ID
		banners = append(banners, b)
	}

	sort.Slice(banners, func(i, j int) bool {
		if banners[i].Order != banners[j].Order {
			return banners[i].Order < banners[j].Order
		}
		return banners[i].ID < banners[j].ID
	})
	return banners, nil
}

func (r *fsBanners) Create(ctx context.Context, b *model.Banner) (string, error) {
	ref, _, err := r.c.Collection(colBanners).Add(ctx, *b)
	if err != nil {
		return "", fmt.Errorf("add banner: %w", err)
	}
	return ref.ID, nil
}

func (r *fsBanners) Update(ctx context.Context, id string, b *model.Banner) error {
	cp := *b
	cp.ID = id
	_, err := r.c.Collection(colBanners).Doc(id).Set(ctx, cp)
	return translateFirestoreErr(err)
}

func (r *fsBanners) Delete(ctx context.Context, id string) error {
	_, err := r.c.Collection(colBanners).Doc(id).Delete(ctx)
	return translateFirestoreErr(err)
}

func (r *fsBanners) CountActive(ctx context.Context) (int, error) {
	return countDocs(ctx, r.c.Collection(colBanners).Where("isActive", "==", true))
}

// --- photo albums ---

type fsPhotoAlbums struct{ c *firestore.Client }

func docToAlbum(snap *firestore.DocumentSnapshot) (*model.PhotoAlbum, error) {
	var a model.PhotoAlbum
	if err := snap.DataTo(&a); err != nil {
		return nil, err
	}
	a.ID = snap.Ref.ID
	return &a, nil
}

func (r *fsPhotoAlbums) GetByYear(ctx context.Context, year string) (*model.PhotoAlbum, error) {
	it := r.c.Collection(colPhotoAlbums).Where("year", "==", year).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return docToAlbum(snap)
}

func (r *fsPhotoAlbums) List(ctx context.Context) ([]model.PhotoAlbum, error) {
	it := r.c.Collection(colPhotoAlbums).OrderBy("year", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var albums []model.PhotoAlbum
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return albums, nil
		}
		if err != nil {
			return nil, err
		}
		a, err := docToAlbum(snap)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *a)
	}
}

func (r *fsPhotoAlbums) Create(ctx context.Context, a *model.PhotoAlbum) (string, error) {
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	ref, _, err := r.c.Collection(colPhotoAlbums).Add(ctx, cp)
	if err != nil {
		return "", fmt.Errorf("add photo album: %w", err)
	}
	return ref.ID, nil
}

func (r *fsPhotoAlbums) Update(ctx context.Context, id, year, link string) error {
	_, err := r.c.Collection(colPhotoAlbums).Doc(id).Update(ctx, []firestore.Update{
		{Path: "year", Value: year},
		{Path: "googleDriveLink", Value: link},
	})
	return translateFirestoreErr(err)
}

func (r *fsPhotoAlbums) Delete(ctx context.Context, id string) error {
	_, err := r.c.Collection(colPhotoAlbums).Doc(id).Delete(ctx)
	return translateFirestoreErr(err)
}

func (r *fsPhotoAlbums) Count(ctx context.Context) (int, error) {
	return countDocs(ctx, r.c.Collection(colPhotoAlbums).Query)
}

// --- year metas ---

type fsYearMetas struct{ c *firestore.Client }

func docToYearMeta(snap *firestore.DocumentSnapshot) (*model.YearMeta, error) {
	var m model.YearMeta
	if err := snap.DataTo(&m); err != nil {
		return nil, err
	}
	m.ID = snap.Ref.ID
	return &m, nil
}

func (r *fsYearMetas) GetByYear(ctx context.Context, year string) (*model.YearMeta, error) {
	it := r.c.Collection(colYearMetas).Where("year", "==", year).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return docToYearMeta(snap)
}

func (r *fsYearMetas) List(ctx context.Context) ([]model.YearMeta, error) {
	it := r.c.Collection(colYearMetas).Documents(ctx)
	defer it.Stop()

	var metas []model.YearMeta
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return metas, nil
		}
		if err != nil {
			return nil, err
		}
		m, err := docToYearMeta(snap)
		if err != nil {
			return nil, err
		}
		metas = append(metas, *m)
	}
}

func (r *fsYearMetas) Create(ctx context.Context, m *model.YearMeta) (string, error) {
	ref, _, err := r.c.Collection(colYearMetas).Add(ctx, *m)
	if err != nil {
		return "", fmt.Errorf("add year meta: %w", err)
	}
	return ref.ID, nil
}

func (r *fsYearMetas) Update(ctx context.Context, id string, m *model.YearMeta) error {
	cp := *m
	cp.ID = id
	_, err := r.c.Collection(colYearMetas).Doc(id).Set(ctx, cp)
	return translateFirestoreErr(err)
}

func (r *fsYearMetas) Delete(ctx context.Context, id string) error {
	_, err := r.c.Collection(colYearMetas).Doc(id).Delete(ctx)
	return translateFirestoreErr(err)
}

// --- settings ---

type fsSettings struct{ c *firestore.Client }

func (r *fsSettings) Get(ctx context.Context) (*model.Settings, error) {
	snap, err := r.c.Collection(colSettings).Doc(model.SettingsDocID).Get(ctx)
	if err != nil {
		return nil, translateFirestoreErr(err)
	}
	var s model.Settings
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *fsSettings) Put(ctx context.Context, s *model.Settings) error {
	_, err := r.c.Collection(colSettings).Doc(model.SettingsDocID).Set(ctx, *s)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
