package ui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/streamsafe/internal/backend"
	"github.com/me/streamsafe/internal/realtime"
	"github.com/me/streamsafe/pkg/model"
)

// fakePlatform is a stand-in for the StreamSafe platform API.
type fakePlatform struct {
	videos       []model.Video
	users        []model.OrgUser
	rejectTokens bool // Respond 401 to every authenticated call
	deleted      []string
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "Invalid credentials"})
			return
		}
		role := model.RoleViewer
		switch creds["email"] {
		case "admin@example.com":
			role = model.RoleAdmin
		case "editor@example.com":
			role = model.RoleEditor
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-" + creds["email"],
			"user": model.UserProfile{
				ID:             "id-" + creds["email"],
				Username:       strings.Split(creds["email"], "@")[0],
				Email:          creds["email"],
				Role:           role,
				OrganizationID: "org1",
			},
		})
	})

	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var reg model.Registration
		json.NewDecoder(r.Body).Decode(&reg)
		if reg.Email == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"msg": "Email already registered"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if f.rejectTokens || r.Header.Get(backend.AuthHeader) == "" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"msg": "Not authenticated"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /api/videos", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.videos)
	}))

	mux.HandleFunc("GET /api/admin/users", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.users)
	}))

	mux.HandleFunc("DELETE /api/admin/user/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "id-locked" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"msg": "Cannot delete this user"})
			return
		}
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusOK)
	}))

	return mux
}

// setupUI wires a full UI over a fake platform and an in-memory store.
func setupUI(t *testing.T, platform *fakePlatform) (*UI, chi.Router) {
	t.Helper()

	srv := httptest.NewServer(platform.handler())
	t.Cleanup(srv.Close)

	st := setupTestStore(t)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := backend.NewClient(srv.URL, logger)
	hub := realtime.NewHub()

	ui := New(st, client, hub, logger, Config{})

	r := chi.NewRouter()
	ui.RegisterRoutes(r)
	return ui, r
}

// loginAs runs the login flow and returns the session cookie.
func loginAs(t *testing.T, r chi.Router, email string) *http.Cookie {
	t.Helper()

	form := url.Values{"email": {email}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("login: no session cookie set")
	return nil
}

func TestLogin_Success(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})

	form := url.Values{"email": {"editor@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			found = true
			if !c.HttpOnly {
				t.Error("expected HttpOnly session cookie")
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}

func TestLogin_BadCredentials_ShowsPlatformMessage(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})

	form := url.Values{"email": {"viewer@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	if loc.Path != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc.Path)
	}
	if got := loc.Query().Get("error"); got != "Invalid credentials" {
		t.Errorf("expected platform message in error, got %q", got)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			t.Error("expected no session cookie on failed login")
		}
	}
}

func TestRegister_Success_RedirectsToLogin(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})

	form := url.Values{
		"email":          {"new@example.com"},
		"username":       {"newbie"},
		"password":       {"secret"},
		"role":           {"viewer"},
		"organizationId": {"org1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			t.Error("registration must not create a session")
		}
	}
}

func TestRegister_Conflict_ShowsPlatformMessage(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})

	form := url.Values{
		"email":          {"taken@example.com"},
		"username":       {"dupe"},
		"password":       {"secret"},
		"role":           {"viewer"},
		"organizationId": {"org1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Path != "/register" {
		t.Errorf("expected redirect back to /register, got %q", loc.Path)
	}
	if got := loc.Query().Get("error"); got != "Email already registered" {
		t.Errorf("expected platform message, got %q", got)
	}
}

func TestRouteGuard_RedirectsWithoutSession(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})

	for _, path := range []string{"/dashboard", "/admin/users", "/events"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusSeeOther {
			t.Errorf("%s: expected 303, got %d", path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: expected redirect to /login, got %q", path, loc)
		}
	}
}

func TestRouteGuard_StaleCookieRedirects(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess_gone"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestDashboard_RendersVideos(t *testing.T) {
	platform := &fakePlatform{
		videos: []model.Video{
			{ID: "v1", Title: "launch.mp4", SensitivityStatus: model.StatusProcessing, ProcessingProgress: 40, CreatedAt: time.Now()},
			{ID: "v2", Title: "demo.mp4", SensitivityStatus: model.StatusSafe, ProcessingProgress: 100, CreatedAt: time.Now()},
		},
	}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "editor@example.com")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "launch.mp4") || !strings.Contains(body, "demo.mp4") {
		t.Error("expected video titles in dashboard")
	}
	if !strings.Contains(body, `data-video-id="v1"`) {
		t.Error("expected video rows addressable by ID")
	}
	// Editors can upload.
	if !strings.Contains(body, "/videos/upload") {
		t.Error("expected upload form for editor")
	}
	// Only safe videos get a watch link.
	if !strings.Contains(body, "/videos/stream/v2") {
		t.Error("expected watch link for safe video")
	}
	if strings.Contains(body, "/videos/stream/v1") {
		t.Error("processing video must not have a watch link")
	}
}

func TestDashboard_ViewerHasNoUploadForm(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})
	cookie := loginAs(t, r, "viewer@example.com")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "/videos/upload") {
		t.Error("viewer must not see the upload form")
	}
	// Viewers also must not see the admin nav entry.
	if strings.Contains(w.Body.String(), "/admin/users") {
		t.Error("viewer must not see the admin link")
	}
}

func TestDashboard_RejectedToken_SignsOut(t *testing.T) {
	platform := &fakePlatform{}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "viewer@example.com")

	// The platform now rejects every token.
	platform.rejectTokens = true

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Path != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc.Path)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
}

func TestUpload_ViewerBlocked(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})
	cookie := loginAs(t, r, "viewer@example.com")

	req := httptest.NewRequest(http.MethodPost, "/videos/upload", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Path != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc.Path)
	}
	if loc.Query().Get("error") == "" {
		t.Error("expected an error message in redirect")
	}
}

func TestAdminUsers_NonAdminRedirected(t *testing.T) {
	_, r := setupUI(t, &fakePlatform{})
	cookie := loginAs(t, r, "viewer@example.com")

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}
}

func TestAdminUsers_RendersDirectory(t *testing.T) {
	platform := &fakePlatform{
		users: []model.OrgUser{
			{ID: "id-admin@example.com", Username: "admin", Email: "admin@example.com", Role: model.RoleAdmin},
			{ID: "id-other", Username: "other", Email: "other@example.com", Role: model.RoleViewer},
		},
	}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "admin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "other@example.com") {
		t.Error("expected org users in directory")
	}
	// The caller's own row has no delete control.
	if !strings.Contains(body, `hx-delete="/admin/users/id-other"`) {
		t.Error("expected delete control for other user")
	}
	if strings.Contains(body, `hx-delete="/admin/users/id-admin@example.com"`) {
		t.Error("caller's own row must not have a delete control")
	}
	if !strings.Contains(body, "hx-confirm") {
		t.Error("expected delete to be guarded by a confirm")
	}
}

func TestAdminDeleteUser_Success(t *testing.T) {
	platform := &fakePlatform{}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "admin@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/id-other", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(platform.deleted) != 1 || platform.deleted[0] != "id-other" {
		t.Errorf("expected platform delete of id-other, got %v", platform.deleted)
	}
	if w.Header().Get("HX-Reswap") != "" {
		t.Error("successful delete must allow the row swap")
	}
}

func TestAdminDeleteUser_PlatformFailureKeepsRow(t *testing.T) {
	platform := &fakePlatform{}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "admin@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/id-locked", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code == http.StatusOK {
		t.Fatal("expected failure status")
	}
	if w.Header().Get("HX-Reswap") != "none" {
		t.Error("failed delete must suppress the row swap")
	}
	if len(platform.deleted) != 0 {
		t.Errorf("expected no deletions, got %v", platform.deleted)
	}
}

func TestAdminDeleteUser_SelfRejected(t *testing.T) {
	platform := &fakePlatform{}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "admin@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/id-admin@example.com", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(platform.deleted) != 0 {
		t.Errorf("expected no deletions, got %v", platform.deleted)
	}
}

func TestAdminDeleteUser_NonAdminForbidden(t *testing.T) {
	platform := &fakePlatform{}
	_, r := setupUI(t, platform)
	cookie := loginAs(t, r, "viewer@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/id-other", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if len(platform.deleted) != 0 {
		t.Errorf("expected no deletions, got %v", platform.deleted)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	ui, r := setupUI(t, &fakePlatform{})
	cookie := loginAs(t, r, "viewer@example.com")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}

	// The stored session is gone; the old cookie no longer works.
	sess, err := ui.sessions.Current(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if sess != nil {
		t.Error("expected session to be removed on logout")
	}
}

func TestEvents_StreamsProgress(t *testing.T) {
	platform := &fakePlatform{}
	ui, r := setupUI(t, platform)
	cookie := loginAs(t, r, "viewer@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	// Wait for the subscription, publish, then end the request.
	deadline := time.Now().Add(2 * time.Second)
	for ui.hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	ui.hub.Publish(model.ProgressEvent{VideoID: "v1", Progress: 55, Status: model.StatusProcessing})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: progress") {
		t.Errorf("expected progress event in stream, got %q", body)
	}
	if !strings.Contains(body, `"videoId":"v1"`) || !strings.Contains(body, `"progress":55`) {
		t.Errorf("expected event payload in stream, got %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
}
