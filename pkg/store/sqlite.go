package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shingunhoon/Clix/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded backend for self-hosted deployments.
// Timestamps are stored as Unix nanoseconds so range scans and cursor
// comparisons order exactly like the in-memory and Firestore backends.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file and migrates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an existing handle; used by tests that inject a
// mock or a shared connection.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		author_email TEXT NOT NULL,
		author_name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER,
		likes JSON NOT NULL DEFAULT '[]',
		views INTEGER NOT NULL DEFAULT 0,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		detail_images JSON,
		team_name TEXT NOT NULL DEFAULT '',
		team_members JSON,
		tech_stack JSON
	);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS banners (
		id TEXT PRIMARY KEY,
		image_url TEXT NOT NULL,
		position TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		ord INTEGER NOT NULL DEFAULT 0,
		year TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS photo_albums (
		id TEXT PRIMARY KEY,
		year TEXT NOT NULL,
		google_drive_link TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS year_metas (
		id TEXT PRIMARY KEY,
		year TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		head_professor TEXT NOT NULL DEFAULT '',
		advisors TEXT NOT NULL DEFAULT '',
		committee TEXT NOT NULL DEFAULT '',
		president TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		text_color TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		post_upload_enabled INTEGER NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Users() UserRepo             { return &sqlUsers{db: s.db} }
func (s *SQLiteStore) Posts() PostRepo             { return &sqlPosts{db: s.db} }
func (s *SQLiteStore) Comments() CommentRepo       { return &sqlComments{db: s.db} }
func (s *SQLiteStore) Banners() BannerRepo         { return &sqlBanners{db: s.db} }
func (s *SQLiteStore) PhotoAlbums() PhotoAlbumRepo { return &sqlPhotoAlbums{db: s.db} }
func (s *SQLiteStore) YearMetas() YearMetaRepo     { return &sqlYearMetas{db: s.db} }
func (s *SQLiteStore) Settings() SettingsRepo      { return &sqlSettings{db: s.db} }
func (s *SQLiteStore) Close() error                { return s.db.Close() }

// --- users ---

type sqlUsers struct{ db *sql.DB }

func (r *sqlUsers) Get(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT email, name, role, created_at FROM users WHERE email = ?`, email)
	var u model.User
	var createdAt int64
	if err := row.Scan(&u.Email, &u.Name, &u.Role, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = time.Unix(0, createdAt).UTC()
	return &u, nil
}

func (r *sqlUsers) Put(ctx context.Context, u *model.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, role, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET name = excluded.name, role = excluded.role`,
		u.Email, u.Name, string(u.Role), createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("put user %q: %w", u.Email, err)
	}
	return nil
}

func (r *sqlUsers) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT email, name, role, created_at FROM users ORDER BY created_at DESC, email ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		var u model.User
		var createdAt int64
		if err := rows.Scan(&u.Email, &u.Name, &u.Role, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = time.Unix(0, createdAt).UTC()
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *sqlUsers) UpdateRole(ctx context.Context, email string, role model.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE email = ?`, string(role), email)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlUsers) Delete(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlUsers) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM users`)
}

// --- posts ---

type sqlPosts struct{ db *sql.DB }

const postColumns = `id, title, content, author_email, author_name, created_at, updated_at,
	likes, views, thumbnail_url, detail_images, team_name, team_members, tech_stack`

func scanPost(scan func(dest ...any) error) (*model.Post, error) {
	var (
		p            model.Post
		createdAt    int64
		updatedAt    sql.NullInt64
		likesJSON    string
		detailJSON   sql.NullString
		membersJSON  sql.NullString
		techJSON     sql.NullString
		thumbnailURL string
	)
	err := scan(&p.ID, &p.Title, &p.Content, &p.Author.Email, &p.Author.Name,
		&createdAt, &updatedAt, &likesJSON, &p.Views, &thumbnailURL,
		&detailJSON, &p.TeamName, &membersJSON, &techJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	if updatedAt.Valid {
		t := time.Unix(0, updatedAt.Int64).UTC()
		p.UpdatedAt = &t
	}
	p.ThumbnailURL = thumbnailURL
	p.Likes = []string{}
	_ = json.Unmarshal([]byte(likesJSON), &p.Likes)
	if detailJSON.Valid && detailJSON.String != "" {
		_ = json.Unmarshal([]byte(detailJSON.String), &p.DetailImages)
	}
	if membersJSON.Valid && membersJSON.String != "" {
		_ = json.Unmarshal([]byte(membersJSON.String), &p.TeamMembers)
	}
	if techJSON.Valid && techJSON.String != "" {
		_ = json.Unmarshal([]byte(techJSON.String), &p.TechStack)
	}
	return &p, nil
}

func (r *sqlPosts) Get(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row.Scan)
}

func (r *sqlPosts) Create(ctx context.Context, p *model.Post) (string, error) {
	id := uuid.New().String()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}
	likesJSON, _ := json.Marshal(likes)
	detailJSON, _ := json.Marshal(p.DetailImages)
	membersJSON, _ := json.Marshal(p.TeamMembers)
	techJSON, _ := json.Marshal(p.TechStack)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Title, p.Content, p.Author.Email, p.Author.Name,
		createdAt.UnixNano(), string(likesJSON), p.Views, p.ThumbnailURL,
		string(detailJSON), p.TeamName, string(membersJSON), string(techJSON))
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (r *sqlPosts) Update(ctx context.Context, id, title, content string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, content, time.Now().UnixNano(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlPosts) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlPosts) ListAll(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectPosts(rows)
}

func (r *sqlPosts) ListYearPage(ctx context.Context, year int, after *Cursor, limit int) ([]model.Post, error) {
	start, end := YearRange(year)

	query := `SELECT ` + postColumns + ` FROM posts WHERE created_at >= ? AND created_at < ?`
	args := []any{start.UnixNano(), end.UnixNano()}
	if after != nil {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		nano := after.CreatedAt.UnixNano()
		args = append(args, nano, nano, after.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *sqlPosts) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM posts`)
}

func (r *sqlPosts) AddLike(ctx context.Context, id, email string) error {
	return r.mutateLikes(ctx, id, func(likes []string) []string {
		for _, l := range likes {
			if l == email {
				return likes
			}
		}
		return append(likes, email)
	})
}

func (r *sqlPosts) RemoveLike(ctx context.Context, id, email string) error {
	return r.mutateLikes(ctx, id, func(likes []string) []string {
		out := likes[:0]
		for _, l := range likes {
			if l != email {
				out = append(out, l)
			}
		}
		return out
	})
}

// mutateLikes rewrites the likes set inside a transaction so concurrent
// like toggles on the same post do not lose writes.
func (r *sqlPosts) mutateLikes(ctx context.Context, id string, fn func([]string) []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var likesJSON string
	err = tx.QueryRowContext(ctx, `SELECT likes FROM posts WHERE id = ?`, id).Scan(&likesJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	likes := []string{}
	_ = json.Unmarshal([]byte(likesJSON), &likes)
	updated, _ := json.Marshal(fn(likes))

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET likes = ? WHERE id = ?`, string(updated), id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *sqlPosts) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- comments ---

type sqlComments struct{ db *sql.DB }

func (r *sqlComments) Create(ctx context.Context, c *model.Comment) (string, error) {
	id := uuid.New().String()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, created_at) VALUES (?, ?, ?)`,
		id, c.PostID, createdAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

func (r *sqlComments) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM comments`)
}

func (r *sqlComments) CountForPost(ctx context.Context, postID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}

// --- banners ---

type sqlBanners struct{ db *sql.DB }

func (r *sqlBanners) Get(ctx context.Context, id string) (*model.Banner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, image_url, position, is_active, ord, year FROM banners WHERE id = ?`, id)
	var b model.Banner
	var active int
	if err := row.Scan(&b.ID, &b.ImageURL, &b.Position, &active, &b.Order, &b.Year); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.IsActive = active != 0
	return &b, nil
}

func (r *sqlBanners) List(ctx context.Context, q BannerQuery) ([]model.Banner, error) {
	query := `SELECT id, image_url, position, is_active, ord, year FROM banners WHERE 1=1`
	var args []any
	if q.ActiveOnly {
		query += ` AND is_active = 1`
	}
	if q.Position != "" {
		query += ` AND position = ?`
		args = append(args, q.Position)
	}
	if q.Year != "" {
		query += ` AND year = ?`
		args = append(args, q.Year)
	}
	query += ` ORDER BY ord ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var banners []model.Banner
	for rows.Next() {
		var b model.Banner
		var active int
		if err := rows.Scan(&b.ID, &b.ImageURL, &b.Position, &active, &b.Order, &b.Year); err != nil {
			return nil, err
		}
		b.IsActive = active != 0
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

func (r *sqlBanners) Create(ctx context.Context, b *model.Banner) (string, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO banners (id, image_url, position, is_active, ord, year) VALUES (?, ?, ?, ?, ?, ?)`,
		id, b.ImageURL, b.Position, boolInt(b.IsActive), b.Order, b.Year)
	if err != nil {
		return "", fmt.Errorf("insert banner: %w", err)
	}
	return id, nil
}

func (r *sqlBanners) Update(ctx context.Context, id string, b *model.Banner) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE banners SET image_url = ?, position = ?, is_active = ?, ord = ?, year = ? WHERE id = ?`,
		b.ImageURL, b.Position, boolInt(b.IsActive), b.Order, b.Year, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlBanners) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM banners WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlBanners) CountActive(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM banners WHERE is_active = 1`)
}

// --- photo albums ---

type sqlPhotoAlbums struct{ db *sql.DB }

func (r *sqlPhotoAlbums) GetByYear(ctx context.Context, year string) (*model.PhotoAlbum, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, year, google_drive_link, created_at FROM photo_albums WHERE year = ? ORDER BY rowid ASC LIMIT 1`, year)
	return scanAlbum(row.Scan)
}

func scanAlbum(scan func(dest ...any) error) (*model.PhotoAlbum, error) {
	var a model.PhotoAlbum
	var createdAt int64
	if err := scan(&a.ID, &a.Year, &a.GoogleDriveLink, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	return &a, nil
}

func (r *sqlPhotoAlbums) List(ctx context.Context) ([]model.PhotoAlbum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, year, google_drive_link, created_at FROM photo_albums ORDER BY year DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var albums []model.PhotoAlbum
	for rows.Next() {
		a, err := scanAlbum(rows.Scan)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *a)
	}
	return albums, rows.Err()
}

func (r *sqlPhotoAlbums) Create(ctx context.Context, a *model.PhotoAlbum) (string, error) {
	id := uuid.New().String()
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO photo_albums (id, year, google_drive_link, created_at) VALUES (?, ?, ?, ?)`,
		id, a.Year, a.GoogleDriveLink, createdAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert photo album: %w", err)
	}
	return id, nil
}

func (r *sqlPhotoAlbums) Update(ctx context.Context, id, year, link string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE photo_albums SET year = ?, google_drive_link = ? WHERE id = ?`, year, link, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlPhotoAlbums) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photo_albums WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlPhotoAlbums) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM photo_albums`)
}

// --- year metas ---

type sqlYearMetas struct{ db *sql.DB }

const yearMetaColumns = `id, year, title, head_professor, advisors, committee, president, color, text_color`

func scanYearMeta(scan func(dest ...any) error) (*model.YearMeta, error) {
	var m model.YearMeta
	err := scan(&m.ID, &m.Year, &m.Title, &m.HeadProfessor, &m.Advisors,
		&m.Committee, &m.President, &m.Color, &m.TextColor)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *sqlYearMetas) GetByYear(ctx context.Context, year string) (*model.YearMeta, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+yearMetaColumns+` FROM year_metas WHERE year = ? ORDER BY rowid ASC LIMIT 1`, year)
	return scanYearMeta(row.Scan)
}

func (r *sqlYearMetas) List(ctx context.Context) ([]model.YearMeta, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+yearMetaColumns+` FROM year_metas ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metas []model.YearMeta
	for rows.Next() {
		m, err := scanYearMeta(rows.Scan)
		if err != nil {
			return nil, err
		}
		metas = append(metas, *m)
	}
	return metas, rows.Err()
}

func (r *sqlYearMetas) Create(ctx context.Context, m *model.YearMeta) (string, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO year_metas (`+yearMetaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.Year, m.Title, m.HeadProfessor, m.Advisors, m.Committee, m.President, m.Color, m.TextColor)
	if err != nil {
		return "", fmt.Errorf("insert year meta: %w", err)
	}
	return id, nil
}

func (r *sqlYearMetas) Update(ctx context.Context, id string, m *model.YearMeta) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE year_metas SET year = ?, title = ?, head_professor = ?, advisors = ?,
		 committee = ?, president = ?, color = ?, text_color = ? WHERE id = ?`,
		m.Year, m.Title, m.HeadProfessor, m.Advisors, m.Committee, m.President, m.Color, m.TextColor, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlYearMetas) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM year_metas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- settings ---

type sqlSettings struct{ db *sql.DB }

func (r *sqlSettings) Get(ctx context.Context) (*model.Settings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT post_upload_enabled FROM settings WHERE id = ?`, model.SettingsDocID)
	var enabled int
	if err := row.Scan(&enabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.Settings{PostUploadEnabled: enabled != 0}, nil
}

func (r *sqlSettings) Put(ctx context.Context, s *model.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, post_upload_enabled) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET post_upload_enabled = excluded.post_upload_enabled`,
		model.SettingsDocID, boolInt(s.PostUploadEnabled))
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

// --- helpers ---

func countRows(ctx context.Context, db *sql.DB, query string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
