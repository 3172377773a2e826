// Package model defines the portal's document types as stored in the
// backing collections (users, posts, comments, banners, photoAlbums,
// yearMetas, settings).
package model

import "time"

// Role classifies a user for authorization purposes. admin and subAdmin
// are both treated as elevated; there is no behavioral distinction
// between them anywhere in the portal.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "subAdmin"
	RoleUser     Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSubAdmin || r == RoleUser
}

// Elevated reports whether r grants access to administrative views.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSubAdmin
}

// User is keyed by email; there is no surrogate id.
type User struct {
	Email     string    `json:"email" firestore:"email"`
	Name      string    `json:"name" firestore:"name"`
	Role      Role      `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Author is a denormalized snapshot of the posting user, captured at
// write time. It can drift from the live user record; that is deliberate.
type Author struct {
	Email string `json:"email" firestore:"email"`
	Name  string `json:"name" firestore:"name"`
}

// TeamMember is one entry of a post's team roster.
type TeamMember struct {
	Name          string `json:"name" firestore:"name"`
	Role          string `json:"role" firestore:"role"`
	GithubLink    string `json:"githubLink,omitempty" firestore:"githubLink,omitempty"`
	PortfolioLink string `json:"portfolioLink,omitempty" firestore:"portfolioLink,omitempty"`
}

// Post is a published project entry. CreatedAt is assigned by the backend
// at write time and is immutable; year membership is always derived from
// it, never stored.
type Post struct {
	ID           string       `json:"id" firestore:"-"`
	Title        string       `json:"title" firestore:"title"`
	Content      string       `json:"content" firestore:"content"`
	Author       Author       `json:"author" firestore:"author"`
	CreatedAt    time.Time    `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
	Likes        []string     `json:"likes" firestore:"likes"`
	Views        int64        `json:"views" firestore:"views"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty" firestore:"thumbnailUrl,omitempty"`
	DetailImages []string     `json:"detailImages,omitempty" firestore:"detailImages,omitempty"`
	TeamName     string       `json:"teamName,omitempty" firestore:"teamName,omitempty"`
	TeamMembers  []TeamMember `json:"teamMembers,omitempty" firestore:"teamMembers,omitempty"`
	TechStack    []string     `json:"techStack,omitempty" firestore:"techStack,omitempty"`
}

// Year returns the calendar year bucket the post belongs to. It is
// always derived from CreatedAt, never stored.
func (p *Post) Year() int {
	return p.CreatedAt.Year()
}

// Comment is counted by the dashboard; its body is otherwise opaque to
// this service.
type Comment struct {
	ID        string    `json:"id" firestore:"-"`
	PostID    string    `json:"postId" firestore:"postId"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// BannerPositionRight is the only banner slot the portal renders.
const BannerPositionRight = "right"

// Banner is a side-slot image. A banner with Year set is scoped to that
// year; one without is a global fallback shown when no year is selected.
type Banner struct {
	ID       string `json:"id" firestore:"-"`
	ImageURL string `json:"imageUrl" firestore:"imageUrl"`
	Position string `json:"position" firestore:"position"`
	IsActive bool   `json:"isActive" firestore:"isActive"`
	Order    int    `json:"order" firestore:"order"`
	Year     string `json:"year,omitempty" firestore:"year,omitempty"`
}

// PhotoAlbum links one year to an external Google Drive album. Year
// uniqueness is enforced by a pre-write existence check, not by the
// backend.
type PhotoAlbum struct {
	ID              string    `json:"id" firestore:"-"`
	Year            string    `json:"year" firestore:"year"`
	GoogleDriveLink string    `json:"googleDriveLink" firestore:"googleDriveLink"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
}

// YearMeta is the header block rendered above a year's feed. At most one
// record is expected per year; the first match wins if duplicates exist.
type YearMeta struct {
	ID            string `json:"id" firestore:"-"`
	Year          string `json:"year" firestore:"year"`
	Title         string `json:"title" firestore:"title"`
	HeadProfessor string `json:"headProfessor" firestore:"headProfessor"`
	Advisors      string `json:"advisors" firestore:"advisors"`
	Committee     string `json:"committee" firestore:"committee"`
	President     string `json:"president" firestore:"president"`
	Color         string `json:"color" firestore:"color"`
	TextColor     string `json:"textColor" firestore:"textColor"`
}

// IsZero reports whether no metadata record was found for the year.
func (m YearMeta) IsZero() bool {
	return m.Year == "" && m.Title == ""
}

// SettingsDocID is the well-known id of the singleton settings document.
const SettingsDocID = "config"

// Settings is the singleton site configuration document. It is created
// lazily with uploads enabled the first time an admin reads it.
type Settings struct {
	PostUploadEnabled bool `json:"postUploadEnabled" firestore:"postUploadEnabled"`
}

// DefaultSettings is the document written when the singleton is absent.
func DefaultSettings() *Settings {
	return &Settings{PostUploadEnabled: true}
}
