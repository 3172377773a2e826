package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shingunhoon/Clix/pkg/auth"
	"github.com/Shingunhoon/Clix/pkg/config"
	"github.com/Shingunhoon/Clix/pkg/identity"
	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/search"
	"github.com/Shingunhoon/Clix/pkg/store"
)

type testEnv struct {
	server *Server
	router http.Handler
	store  *store.MemoryStore
	keys   identity.KeySet
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemoryStore()
	ks, err := identity.NewInMemoryKeySet()
	require.NoError(t, err)

	idx, err := search.Open(mem.Posts())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	cfg := &config.Config{Port: "0", Backend: "memory", PageSize: 9, RateLimitRPM: 120}
	srv := New(cfg, mem, nil, Options{
		Validator: auth.NewJWTValidator(ks),
		Search:    idx,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{server: srv, router: srv.Router(), store: mem, keys: ks}
}

func (e *testEnv) token(t *testing.T, email, name string) string {
	t.Helper()
	token, err := e.keys.Sign(context.Background(), &auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: name,
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) addUser(t *testing.T, email, name string, role model.Role) {
	t.Helper()
	require.NoError(t, e.store.Users().Put(context.Background(), &model.User{
		Email: email, Name: name, Role: role,
	}))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func seedFeedPost(t *testing.T, e *testEnv, createdAt time.Time) string {
	t.Helper()
	id, err := e.store.Posts().Create(context.Background(), &model.Post{
		Title:     "seeded",
		Content:   "seeded content",
		Author:    model.Author{Email: "author@example.com", Name: "Author"},
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	return id
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeed_YearSelectionAndPagination(t *testing.T) {
	e := newTestEnv(t)
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		seedFeedPost(t, e, base.Add(time.Duration(i)*time.Hour))
	}
	seedFeedPost(t, e, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC))

	rec := e.do(t, http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[feedPayload](t, rec)
	assert.Equal(t, []string{"2024", "2023"}, body.AvailableYears)
	assert.Equal(t, "2024", body.SelectedYear, "no request parameter selects the most recent year")
	require.Len(t, body.Page.Items, 9)
	assert.True(t, body.Page.HasMore)

	// Second page via the returned cursor.
	rec = e.do(t, http.MethodGet, "/api/feed?year=2024&cursor="+body.Page.NextCursor, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[feedPayload](t, rec)
	assert.Len(t, body.Page.Items, 3)
	assert.False(t, body.Page.HasMore)

	// Unknown requested year falls back to most recent.
	rec = e.do(t, http.MethodGet, "/api/feed?year=1999", "", nil)
	body = decode[feedPayload](t, rec)
	assert.Equal(t, "2024", body.SelectedYear)

	// Explicit valid year.
	rec = e.do(t, http.MethodGet, "/api/feed?year=2023", "", nil)
	body = decode[feedPayload](t, rec)
	assert.Equal(t, "2023", body.SelectedYear)
	assert.Len(t, body.Page.Items, 1)
}

func TestFeed_EmptyStore(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[feedPayload](t, rec)
	assert.Empty(t, body.AvailableYears)
	assert.Empty(t, body.SelectedYear)
	assert.Empty(t, body.Page.Items)
}

func TestAdminRoute_StandardUserRedirectedHome(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "user@example.com", "User", model.RoleUser)

	rec := e.do(t, http.MethodGet, "/api/admin/stats", e.token(t, "user@example.com", "User"), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "settings", "dashboard content must never render")
}

func TestAdminStats_SelfHealsSettings(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "admin@example.com", "Admin", model.RoleAdmin)

	// settings/config absent before the dashboard load.
	_, err := e.store.Settings().Get(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)

	rec := e.do(t, http.MethodGet, "/api/admin/stats", e.token(t, "admin@example.com", "Admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	settings, ok := body["settings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, settings["postUploadEnabled"], "healed default reflected immediately")

	persisted, err := e.store.Settings().Get(context.Background())
	require.NoError(t, err)
	assert.True(t, persisted.PostUploadEnabled)
}

func TestAdminSettings_Toggle(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "admin@example.com", "Admin", model.RoleAdmin)
	token := e.token(t, "admin@example.com", "Admin")

	rec := e.do(t, http.MethodPost, "/api/admin/settings/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Settings](t, rec)
	assert.False(t, got.PostUploadEnabled)

	rec = e.do(t, http.MethodPost, "/api/admin/settings/toggle", token, nil)
	got = decode[model.Settings](t, rec)
	assert.True(t, got.PostUploadEnabled)
}

func TestCreatePost_BlockedWhenUploadsDisabled(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "member@example.com", "Member", model.RoleUser)
	require.NoError(t, e.store.Settings().Put(context.Background(), &model.Settings{PostUploadEnabled: false}))

	rec := e.do(t, http.MethodPost, "/api/posts", e.token(t, "member@example.com", "Member"),
		map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	n, err := e.store.Posts().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreatePost_AuthorSnapshotTaken(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "member@example.com", "Original Name", model.RoleUser)

	rec := e.do(t, http.MethodPost, "/api/posts", e.token(t, "member@example.com", "Original Name"),
		map[string]string{"title": "capstone", "content": "writeup"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.Post](t, rec)
	assert.Equal(t, "Original Name", created.Author.Name)
	assert.False(t, created.CreatedAt.IsZero())

	// Renaming the user afterwards does not rewrite the snapshot.
	e.addUser(t, "member@example.com", "New Name", model.RoleUser)
	got, err := e.store.Posts().Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Name", got.Author.Name)
}

func TestCreatePost_Validation(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "member@example.com", "Member", model.RoleUser)
	token := e.token(t, "member@example.com", "Member")

	rec := e.do(t, http.MethodPost, "/api/posts", token, map[string]string{"title": "", "content": "c"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/posts", token, map[string]string{"title": "t", "content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePost_NonAuthorRedirected(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "author@example.com", "Author", model.RoleUser)
	e.addUser(t, "other@example.com", "Other", model.RoleUser)
	id := seedFeedPost(t, e, time.Now())

	rec := e.do(t, http.MethodPut, "/api/posts/"+id, e.token(t, "other@example.com", "Other"),
		map[string]string{"title": "hijacked", "content": "nope"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	got, err := e.store.Posts().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "seeded", got.Title)
}

func TestUpdatePost_AuthorSucceeds(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "author@example.com", "Author", model.RoleUser)
	id := seedFeedPost(t, e, time.Now())

	rec := e.do(t, http.MethodPut, "/api/posts/"+id, e.token(t, "author@example.com", "Author"),
		map[string]string{"title": "edited", "content": "new"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Post](t, rec)
	assert.Equal(t, "edited", got.Title)
	assert.NotNil(t, got.UpdatedAt)
}

func TestDeletePost_ElevatedMayDelete(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "admin@example.com", "Admin", model.RoleAdmin)
	id := seedFeedPost(t, e, time.Now())

	rec := e.do(t, http.MethodDelete, "/api/posts/"+id, e.token(t, "admin@example.com", "Admin"), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := e.store.Posts().Get(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSession_UnregisteredIdentityRedirectsToSignup(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/auth/session", e.token(t, "ghost@example.com", "Ghost"), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))
}

func TestRegister_CreatesUserRecord(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(t, "new@example.com", "Newcomer")

	rec := e.do(t, http.MethodPost, "/api/auth/register", token, map[string]string{"name": "Newcomer"})
	require.Equal(t, http.StatusCreated, rec.Code)

	u, err := e.store.Users().Get(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)

	// Session now resolves.
	rec = e.do(t, http.MethodGet, "/api/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Registering twice is a no-op.
	rec = e.do(t, http.MethodPost, "/api/auth/register", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPhotoAlbum_DuplicateYearRejected(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "admin@example.com", "Admin", model.RoleAdmin)
	token := e.token(t, "admin@example.com", "Admin")

	rec := e.do(t, http.MethodPost, "/api/admin/photo-albums", token,
		map[string]string{"year": "2024", "googleDriveLink": "https://drive.example/a"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.PhotoAlbum](t, rec)

	rec = e.do(t, http.MethodPost, "/api/admin/photo-albums", token,
		map[string]string{"year": "2024", "googleDriveLink": "https://drive.example/b"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// No write performed, existing record unmodified.
	n, err := e.store.PhotoAlbums().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := e.store.PhotoAlbums().GetByYear(context.Background(), "2024")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "https://drive.example/a", got.GoogleDriveLink)
}

func TestPhotoAlbum_EditExcludesSelfFromDuplicateCheck(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "admin@example.com", "Admin", model.RoleAdmin)
	token := e.token(t, "admin@example.com", "Admin")

	rec := e.do(t, http.MethodPost, "/api/admin/photo-albums", token,
		map[string]string{"year": "2024", "googleDriveLink": "https://drive.example/a"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.PhotoAlbum](t, rec)

	// Same year, same record: allowed.
	rec = e.do(t, http.MethodPut, "/api/admin/photo-albums/"+created.ID, token,
		map[string]string{"year": "2024", "googleDriveLink": "https://drive.example/updated"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// A second record trying to move onto 2024: rejected.
	rec = e.do(t, http.MethodPost, "/api/admin/photo-albums", token,
		map[string]string{"year": "2023", "googleDriveLink": "https://drive.example/c"})
	require.Equal(t, http.StatusCreated, rec.Code)
	other := decode[model.PhotoAlbum](t, rec)

	rec = e.do(t, http.MethodPut, "/api/admin/photo-albums/"+other.ID, token,
		map[string]string{"year": "2024", "googleDriveLink": "https://drive.example/c"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPhotoAlbum_ValidationRequired(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "admin@example.com", "Admin", model.RoleAdmin)
	token := e.token(t, "admin@example.com", "Admin")

	rec := e.do(t, http.MethodPost, "/api/admin/photo-albums", token,
		map[string]string{"year": "", "googleDriveLink": "https://drive.example/a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/admin/photo-albums", token,
		map[string]string{"year": "2024", "googleDriveLink": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLikes_AddAndRemove(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "member@example.com", "Member", model.RoleUser)
	token := e.token(t, "member@example.com", "Member")
	id := seedFeedPost(t, e, time.Now())

	rec := e.do(t, http.MethodPost, "/api/posts/"+id+"/like", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"member@example.com"}, body["likes"])

	rec = e.do(t, http.MethodDelete, "/api/posts/"+id+"/like", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[map[string][]string](t, rec)
	assert.Empty(t, body["likes"])
}

func TestGetPost_IncrementsViews(t *testing.T) {
	e := newTestEnv(t)
	id := seedFeedPost(t, e, time.Now())

	rec := e.do(t, http.MethodGet, "/api/posts/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := e.store.Posts().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
}

func TestSearch_FindsCreatedPost(t *testing.T) {
	e := newTestEnv(t)
	e.addUser(t, "member@example.com", "Member", model.RoleUser)

	rec := e.do(t, http.MethodPost, "/api/posts", e.token(t, "member@example.com", "Member"),
		map[string]string{"title": "Underwater rover", "content": "submersible telemetry"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/search?q=submersible", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]*search.Result](t, rec)
	require.Len(t, body["results"], 1)
	assert.Equal(t, "Underwater rover", body["results"][0].Title)
}

func TestHallOfFame_SortedByLikes(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := seedFeedPost(t, e, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	b := seedFeedPost(t, e, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, e.store.Posts().AddLike(ctx, b, "x@example.com"))
	require.NoError(t, e.store.Posts().AddLike(ctx, b, "y@example.com"))
	require.NoError(t, e.store.Posts().AddLike(ctx, a, "x@example.com"))

	rec := e.do(t, http.MethodGet, "/api/hall-of-fame?year=2024", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]model.Post](t, rec)
	posts := body["posts"]
	require.Len(t, posts, 2)
	assert.Equal(t, b, posts[0].ID)
	assert.Equal(t, a, posts[1].ID)
}
