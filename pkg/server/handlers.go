package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shingunhoon/Clix/pkg/api"
	"github.com/Shingunhoon/Clix/pkg/auth"
	"github.com/Shingunhoon/Clix/pkg/feed"
	"github.com/Shingunhoon/Clix/pkg/meta"
	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := feed.DiscoverYears(r.Context(), s.store.Posts())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"years": years})
}

// feedPayload is the combined payload the feed page renders from.
type feedPayload struct {
	AvailableYears []string         `json:"years"`
	SelectedYear   string           `json:"selectedYear"`
	Page           *feed.Page       `json:"page"`
	Context        *meta.YearContext `json:"context"`
	Color          string           `json:"color"`
	TextColor      string           `json:"textColor"`
}

// handleFeed serves one feed page and the year's side channels. The
// page fetch and the metadata resolution run concurrently; neither
// blocks the other.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	years, err := feed.DiscoverYears(ctx, s.store.Posts())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	year := feed.SelectYear(years, r.URL.Query().Get("year"))

	var (
		page    *feed.Page
		pageErr error
		yearCtx *meta.YearContext
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		page, pageErr = feed.FetchPage(ctx, s.store.Posts(), year, r.URL.Query().Get("cursor"), s.cfg.PageSize)
	}()
	yearCtx = s.meta.Resolve(ctx, year)
	<-done

	if pageErr != nil {
		if year != "" {
			api.WriteBadRequest(w, pageErr.Error())
			return
		}
		api.WriteInternal(w, pageErr)
		return
	}

	color, textColor := yearCtx.HeaderColors()
	api.WriteJSON(w, http.StatusOK, feedPayload{
		AvailableYears: years,
		SelectedYear:   year,
		Page:           page,
		Context:        yearCtx,
		Color:          color,
		TextColor:      textColor,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		api.WriteNotFound(w, "Search is not enabled")
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		api.WriteBadRequest(w, "Query parameter q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := s.search.Search(q, limit)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"results": hits})
}

// handleHallOfFame lists the year's most liked posts.
func (s *Server) handleHallOfFame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := s.store.Posts().ListAll(ctx)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	year := r.URL.Query().Get("year")
	filtered := all[:0]
	for i := range all {
		if year == "" || strconv.Itoa(all[i].Year()) == year {
			filtered = append(filtered, all[i])
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return len(filtered[i].Likes) > len(filtered[j].Likes)
	})

	limit := 10
	if len(filtered) < limit {
		limit = len(filtered)
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"posts": filtered[:limit]})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	p, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Post not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	// View counting is best effort; a failed increment never hides the
	// post.
	if err := s.store.Posts().IncrementViews(ctx, id); err != nil {
		s.log.Warn("view increment failed", "post", id, "error", err)
	} else {
		p.Views++
	}

	commentCount, err := s.store.Comments().CountForPost(ctx, id)
	if err != nil {
		s.log.Warn("comment count failed", "post", id, "error", err)
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"post":         p,
		"commentCount": commentCount,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	p, err := auth.GetPrincipal(r.Context())
	if err != nil {
		api.WriteUnauthorized(w, "No session")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"email":    p.Email,
		"name":     p.Name,
		"role":     p.Role,
		"elevated": p.Elevated(),
	})
}

// handleRegister completes signup: it creates the users/{email} record
// the member gate requires. Registering an already registered email is
// a no-op returning the existing record.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := auth.GetIdentity(ctx)
	if err != nil {
		api.WriteUnauthorized(w, "No session")
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	// An absent or empty body falls back to the token name.
	_ = json.NewDecoder(r.Body).Decode(&body)
	name := body.Name
	if name == "" {
		name = id.Name
	}

	if existing, err := s.store.Users().Get(ctx, id.Email); err == nil {
		api.WriteJSON(w, http.StatusOK, existing)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		api.WriteInternal(w, err)
		return
	}

	u := &model.User{Email: id.Email, Name: name, Role: model.RoleUser}
	if err := s.store.Users().Put(ctx, u); err != nil {
		api.WriteInternal(w, err)
		return
	}
	s.log.Info("user registered", "email", u.Email)
	api.WriteJSON(w, http.StatusCreated, u)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := auth.GetPrincipal(ctx)
	if err != nil {
		api.WriteUnauthorized(w, "No session")
		return
	}

	enabled, err := s.settings.UploadEnabled(ctx)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if !enabled {
		api.WriteForbidden(w, "Post uploads are currently disabled")
		return
	}

	var body struct {
		Title        string             `json:"title"`
		Content      string             `json:"content"`
		ThumbnailURL string             `json:"thumbnailUrl"`
		DetailImages []string           `json:"detailImages"`
		TeamName     string             `json:"teamName"`
		TeamMembers  []model.TeamMember `json:"teamMembers"`
		TechStack    []string           `json:"techStack"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if body.Title == "" || body.Content == "" {
		api.WriteBadRequest(w, "Title and content are required")
		return
	}

	post := &model.Post{
		Title:   body.Title,
		Content: body.Content,
		// Author is a snapshot taken now; later renames do not follow.
		Author:       model.Author{Email: p.Email, Name: p.Name},
		ThumbnailURL: body.ThumbnailURL,
		DetailImages: body.DetailImages,
		TeamName:     body.TeamName,
		TeamMembers:  body.TeamMembers,
		TechStack:    body.TechStack,
	}
	id, err := s.store.Posts().Create(ctx, post)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	created, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	s.indexPost(created)
	api.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) indexPost(p *model.Post) {
	if s.search != nil {
		if err := s.search.IndexPost(p); err != nil {
			s.log.Warn("index post failed", "post", p.ID, "error", err)
		}
	}
	s.notifySearch()
}

// loadOwnedPost fetches the post and checks the caller may mutate it.
// allowElevated extends ownership to admins (deletion only). A failed
// check navigates home; the response never distinguishes "not yours"
// from "not allowed".
func (s *Server) loadOwnedPost(w http.ResponseWriter, r *http.Request, allowElevated bool) *model.Post {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	post, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Post not found")
			return nil
		}
		api.WriteInternal(w, err)
		return nil
	}

	p, err := auth.GetPrincipal(ctx)
	if err != nil {
		api.WriteUnauthorized(w, "No session")
		return nil
	}
	if post.Author.Email != p.Email && !(allowElevated && p.Elevated()) {
		http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
		return nil
	}
	return post
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	post := s.loadOwnedPost(w, r, false)
	if post == nil {
		return
	}

	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if body.Title == "" || body.Content == "" {
		api.WriteBadRequest(w, "Title and content are required")
		return
	}

	if err := s.store.Posts().Update(r.Context(), post.ID, body.Title, body.Content); err != nil {
		api.WriteInternal(w, err)
		return
	}

	updated, err := s.store.Posts().Get(r.Context(), post.ID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	s.indexPost(updated)
	api.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	post := s.loadOwnedPost(w, r, true)
	if post == nil {
		return
	}

	if err := s.store.Posts().Delete(r.Context(), post.ID); err != nil {
		api.WriteInternal(w, err)
		return
	}
	if s.search != nil {
		if err := s.search.Delete(post.ID); err != nil {
			s.log.Warn("index delete failed", "post", post.ID, "error", err)
		}
	}
	s.notifySearch()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddLike(w http.ResponseWriter, r *http.Request) {
	s.mutateLike(w, r, s.store.Posts().AddLike)
}

func (s *Server) handleRemoveLike(w http.ResponseWriter, r *http.Request) {
	s.mutateLike(w, r, s.store.Posts().RemoveLike)
}

func (s *Server) mutateLike(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, email string) error) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	p, err := auth.GetPrincipal(ctx)
	if err != nil {
		api.WriteUnauthorized(w, "No session")
		return
	}

	if err := op(ctx, id, p.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Post not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	post, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"likes": post.Likes})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := s.store.Posts().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Post not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	commentID, err := s.store.Comments().Create(ctx, &model.Comment{PostID: id})
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]string{"id": commentID})
}
