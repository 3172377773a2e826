package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Shingunhoon/Clix/pkg/api"
	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

func (s *Server) mountAdmin(r chi.Router) {
	r.Get("/stats", s.handleAdminStats)

	r.Get("/settings", s.handleAdminGetSettings)
	r.Post("/settings/toggle", s.handleAdminToggleSettings)

	r.Get("/users", s.handleAdminListUsers)
	r.Put("/users/{email}/role", s.handleAdminUpdateRole)
	r.Delete("/users/{email}", s.handleAdminDeleteUser)

	r.Get("/banners", s.handleAdminListBanners)
	r.Post("/banners", s.handleAdminCreateBanner)
	r.Put("/banners/{id}", s.handleAdminUpdateBanner)
	r.Delete("/banners/{id}", s.handleAdminDeleteBanner)

	r.Get("/photo-albums", s.handleAdminListAlbums)
	r.Post("/photo-albums", s.handleAdminCreateAlbum)
	r.Put("/photo-albums/{id}", s.handleAdminUpdateAlbum)
	r.Delete("/photo-albums/{id}", s.handleAdminDeleteAlbum)

	r.Get("/year-metas", s.handleAdminListYearMetas)
	r.Post("/year-metas", s.handleAdminCreateYearMeta)
	r.Put("/year-metas/{id}", s.handleAdminUpdateYearMeta)
	r.Delete("/year-metas/{id}", s.handleAdminDeleteYearMeta)
}

// handleAdminStats serves the dashboard counters. Loading the dashboard
// also heals the settings singleton, so the returned settings reflect
// the healed default on first load.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg                                          sync.WaitGroup
		users, posts, comments, banners, albums     int
		usersErr, postsErr, commentsErr, bannersErr error
		albumsErr                                   error
	)
	wg.Add(5)
	go func() { defer wg.Done(); users, usersErr = s.store.Users().Count(ctx) }()
	go func() { defer wg.Done(); posts, postsErr = s.store.Posts().Count(ctx) }()
	go func() { defer wg.Done(); comments, commentsErr = s.store.Comments().Count(ctx) }()
	go func() { defer wg.Done(); banners, bannersErr = s.store.Banners().CountActive(ctx) }()
	go func() { defer wg.Done(); albums, albumsErr = s.store.PhotoAlbums().Count(ctx) }()
	wg.Wait()

	for _, err := range []error{usersErr, postsErr, commentsErr, bannersErr, albumsErr} {
		if err != nil {
			api.WriteInternal(w, err)
			return
		}
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"users":         users,
		"posts":         posts,
		"comments":      comments,
		"activeBanners": banners,
		"photoAlbums":   albums,
		"settings":      cfg,
	})
}

func (s *Server) handleAdminGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.Load(r.Context())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleAdminToggleSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.Toggle(r.Context())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users().List(r.Context())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleAdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var body struct {
		Role model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if !body.Role.Valid() {
		api.WriteBadRequest(w, "Unknown role")
		return
	}

	if err := s.store.Users().UpdateRole(r.Context(), email, body.Role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "User not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	s.log.Info("user role updated", "email", email, "role", body.Role)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := s.store.Users().Delete(r.Context(), email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "User not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- banners ---

func (s *Server) handleAdminListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := s.store.Banners().List(r.Context(), store.BannerQuery{})
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"banners": banners})
}

func decodeBanner(r *http.Request) (*model.Banner, string) {
	var b model.Banner
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		return nil, "Invalid JSON body"
	}
	if b.ImageURL == "" {
		return nil, "Image URL is required"
	}
	if b.Position == "" {
		b.Position = model.BannerPositionRight
	}
	return &b, ""
}

func (s *Server) handleAdminCreateBanner(w http.ResponseWriter, r *http.Request) {
	b, msg := decodeBanner(r)
	if msg != "" {
		api.WriteBadRequest(w, msg)
		return
	}
	id, err := s.store.Banners().Create(r.Context(), b)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	b.ID = id
	api.WriteJSON(w, http.StatusCreated, b)
}

func (s *Server) handleAdminUpdateBanner(w http.ResponseWriter, r *http.Request) {
	b, msg := decodeBanner(r)
	if msg != "" {
		api.WriteBadRequest(w, msg)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.Banners().Update(r.Context(), id, b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Banner not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	b.ID = id
	api.WriteJSON(w, http.StatusOK, b)
}

func (s *Server) handleAdminDeleteBanner(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Banners().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Banner not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- photo albums ---

func (s *Server) handleAdminListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.store.PhotoAlbums().List(r.Context())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"photoAlbums": albums})
}

// albumYearTaken reports whether another album already claims the year.
// This is a read-check-write guard, not a transaction: two concurrent
// creators can both pass it. Accepted race.
func (s *Server) albumYearTaken(r *http.Request, year, excludeID string) (bool, error) {
	existing, err := s.store.PhotoAlbums().GetByYear(r.Context(), year)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}

func (s *Server) handleAdminCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var a model.PhotoAlbum
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if a.Year == "" || a.GoogleDriveLink == "" {
		api.WriteBadRequest(w, "Year and link are required")
		return
	}

	taken, err := s.albumYearTaken(r, a.Year, "")
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if taken {
		api.WriteConflict(w, "An album already exists for year "+a.Year)
		return
	}

	id, err := s.store.PhotoAlbums().Create(r.Context(), &a)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	a.ID = id
	api.WriteJSON(w, http.StatusCreated, a)
}

func (s *Server) handleAdminUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var a model.PhotoAlbum
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if a.Year == "" || a.GoogleDriveLink == "" {
		api.WriteBadRequest(w, "Year and link are required")
		return
	}

	// The record being edited does not conflict with itself.
	taken, err := s.albumYearTaken(r, a.Year, id)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if taken {
		api.WriteConflict(w, "An album already exists for year "+a.Year)
		return
	}

	if err := s.store.PhotoAlbums().Update(r.Context(), id, a.Year, a.GoogleDriveLink); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Photo album not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	a.ID = id
	api.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleAdminDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	if err := s.store.PhotoAlbums().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Photo album not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- year metas ---

func (s *Server) handleAdminListYearMetas(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.YearMetas().List(r.Context())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"yearMetas": metas})
}

func (s *Server) handleAdminCreateYearMeta(w http.ResponseWriter, r *http.Request) {
	var m model.YearMeta
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if m.Year == "" {
		api.WriteBadRequest(w, "Year is required")
		return
	}

	id, err := s.store.YearMetas().Create(r.Context(), &m)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	m.ID = id
	api.WriteJSON(w, http.StatusCreated, m)
}

func (s *Server) handleAdminUpdateYearMeta(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var m model.YearMeta
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if m.Year == "" {
		api.WriteBadRequest(w, "Year is required")
		return
	}

	if err := s.store.YearMetas().Update(r.Context(), id, &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Year metadata not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	m.ID = id
	api.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) handleAdminDeleteYearMeta(w http.ResponseWriter, r *http.Request) {
	if err := s.store.YearMetas().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Year metadata not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
