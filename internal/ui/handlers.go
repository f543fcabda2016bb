package ui

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/streamsafe/internal/backend"
	"github.com/me/streamsafe/internal/realtime"
	"github.com/me/streamsafe/internal/store"
	"github.com/me/streamsafe/pkg/model"
)

// UI handles the web console: login and registration screens, the video
// dashboard, and the admin panel. All state lives at the platform; the
// console only renders it and forwards user actions.
type UI struct {
	backend        *backend.Client
	sessions       *SessionManager
	hub            *realtime.Hub
	logger         *slog.Logger
	secure         bool  // Use secure cookies (HTTPS)
	maxUploadBytes int64 // Multipart memory/size cap for uploads
}

// Config holds UI configuration.
type Config struct {
	Secure      bool  // Use secure cookies for HTTPS
	MaxUploadMB int64 // Upload size cap in megabytes
}

// New creates a new UI handler.
func New(st store.Store, client *backend.Client, hub *realtime.Hub, logger *slog.Logger, cfg Config) *UI {
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 500
	}
	return &UI{
		backend:        client,
		sessions:       NewSessionManager(st),
		hub:            hub,
		logger:         logger.With("component", "ui"),
		secure:         cfg.Secure,
		maxUploadBytes: maxMB << 20,
	}
}

// HandleIndex routes the bare path to the dashboard.
func (ui *UI) HandleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleLogin renders the login page.
func (ui *UI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to the dashboard.
	if sess, _ := ui.sessions.FromRequest(r); sess != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Title":  "Sign In - StreamSafe",
		"Error":  r.URL.Query().Get("error"),
		"Notice": r.URL.Query().Get("notice"),
	}
	ui.render(w, "login", data)
}

// HandleLoginPost exchanges credentials at the platform and creates the
// session holding exactly the token and profile from the response.
func (ui *UI) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+request", http.StatusSeeOther)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		http.Redirect(w, r, "/login?error=Email+and+password+required", http.StatusSeeOther)
		return
	}

	result, err := ui.backend.Login(r.Context(), email, password)
	if err != nil {
		ui.logger.Warn("login failed", "email", email, "error", err)
		http.Redirect(w, r, "/login?error="+url.QueryEscape(userMessage(err, "Login failed")), http.StatusSeeOther)
		return
	}

	sess, err := ui.sessions.Login(r.Context(), result.Token, result.User)
	if err != nil {
		ui.logger.Error("create session failed", "error", err)
		http.Redirect(w, r, "/login?error=Session+creation+failed", http.StatusSeeOther)
		return
	}

	SetSessionCookie(w, sess, ui.secure)

	ui.logger.Info("user logged in", "user_id", sess.User.ID, "org", sess.User.OrganizationID, "session", sess.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleRegister renders the registration page.
func (ui *UI) HandleRegister(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Create Account - StreamSafe",
		"Error": r.URL.Query().Get("error"),
		"Roles": []model.Role{model.RoleViewer, model.RoleEditor, model.RoleAdmin},
	}
	ui.render(w, "register", data)
}

// HandleRegisterPost creates an account at the platform. Registration
// does not log the user in; it redirects to the login screen.
func (ui *UI) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/register?error=Invalid+request", http.StatusSeeOther)
		return
	}

	reg := model.Registration{
		Username:       strings.TrimSpace(r.FormValue("username")),
		Email:          strings.TrimSpace(r.FormValue("email")),
		Password:       r.FormValue("password"),
		Role:           model.Role(r.FormValue("role")),
		OrganizationID: strings.TrimSpace(r.FormValue("organizationId")),
	}

	if reg.Username == "" || reg.Email == "" || reg.Password == "" || reg.OrganizationID == "" {
		http.Redirect(w, r, "/register?error=All+fields+are+required", http.StatusSeeOther)
		return
	}

	if err := ui.backend.Register(r.Context(), reg); err != nil {
		ui.logger.Warn("registration failed", "email", reg.Email, "error", err)
		http.Redirect(w, r, "/register?error="+url.QueryEscape(userMessage(err, "Registration failed")), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/login?notice=Account+created.+Please+sign+in.", http.StatusSeeOther)
}

// HandleLogout clears the session and redirects to login.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess != nil {
		_ = ui.sessions.Clear(r.Context(), sess.ID)
		ui.logger.Info("user logged out", "user_id", sess.User.ID, "session", sess.ID)
	}
	ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleDashboard renders the video library. The list is fetched once
// per page load and brought up to date from the progress cache; live
// updates arrive over /events.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	videos, err := ui.backend.ListVideos(r.Context(), sess.Token)
	if err != nil {
		if isAuthError(err) {
			// The platform rejected the token; the session is dead.
			ui.signOut(w, r, sess)
			return
		}
		ui.renderError(w, "Failed to load videos", err)
		return
	}

	ui.hub.MergeSnapshot(videos)

	data := map[string]any{
		"Title":     "Video Library - StreamSafe",
		"Session":   sess,
		"Videos":    videos,
		"CanUpload": sess.CanUpload(),
		"Error":     r.URL.Query().Get("error"),
	}
	ui.render(w, "dashboard", data)
}

// HandleUploadPost forwards a multipart upload to the platform and
// returns to the dashboard, where the new record renders on top.
func (ui *UI) HandleUploadPost(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	// The upload control only renders for admin/editor; the check here
	// backs that up. The platform enforces it regardless.
	if !sess.CanUpload() {
		http.Redirect(w, r, "/dashboard?error=Your+role+cannot+upload+videos", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ui.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+upload", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		http.Redirect(w, r, "/dashboard?error=No+file+selected", http.StatusSeeOther)
		return
	}
	defer file.Close()

	// The file name doubles as the title, as the platform expects.
	video, err := ui.backend.UploadVideo(r.Context(), sess.Token, header.Filename, header.Filename, file)
	if err != nil {
		ui.logger.Warn("upload failed", "filename", header.Filename, "error", err)
		http.Redirect(w, r, "/dashboard?error="+url.QueryEscape("Upload failed: "+userMessage(err, "check the server logs")), http.StatusSeeOther)
		return
	}

	ui.logger.Info("video uploaded", "video_id", video.ID, "title", video.Title, "user_id", sess.User.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleStream proxies the media stream so the token never reaches the
// page. Range headers pass through to keep seeking working.
func (ui *UI) HandleStream(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	resp, err := ui.backend.OpenStream(r.Context(), id, sess.Token, r.Header.Get("Range"))
	if err != nil {
		ui.logger.Warn("stream open failed", "video_id", id, "error", err)
		http.Error(w, "stream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for _, h := range []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges"} {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		ui.logger.Debug("stream copy ended", "video_id", id, "error", err)
	}
}

// --- Admin Panel ---

// HandleAdminUsers renders the organization directory. Non-admins are
// redirected to the dashboard. The platform re-checks the role on
// every admin call regardless.
func (ui *UI) HandleAdminUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := ui.requireAdmin(w, r)
	if !ok {
		return
	}

	users, err := ui.backend.ListOrgUsers(r.Context(), sess.Token)
	if err != nil {
		if isAuthError(err) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		ui.renderError(w, "Failed to load organization users", err)
		return
	}

	data := map[string]any{
		"Title":         "Admin Panel - StreamSafe",
		"Session":       sess,
		"Users":         users,
		"CurrentUserID": sess.User.ID,
		"Error":         r.URL.Query().Get("error"),
		"Notice":        r.URL.Query().Get("notice"),
		"Roles":         []model.Role{model.RoleViewer, model.RoleEditor, model.RoleAdmin},
	}
	ui.render(w, "admin/users", data)
}

// HandleAdminCreateUser provisions an account, then re-renders the full
// directory by redirecting back to the list.
func (ui *UI) HandleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := ui.requireAdmin(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/users?error=Invalid+request", http.StatusSeeOther)
		return
	}

	user := model.NewOrgUser{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     model.Role(r.FormValue("role")),
	}
	if user.Username == "" || user.Email == "" || user.Password == "" {
		http.Redirect(w, r, "/admin/users?error=All+fields+are+required", http.StatusSeeOther)
		return
	}
	if user.Role == "" {
		user.Role = model.RoleViewer
	}

	if err := ui.backend.CreateOrgUser(r.Context(), sess.Token, user); err != nil {
		if isAuthError(err) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/admin/users?error="+url.QueryEscape(userMessage(err, "Failed to create user")), http.StatusSeeOther)
		return
	}

	ui.logger.Info("org user created", "username", user.Username, "role", user.Role, "by", sess.User.ID)
	http.Redirect(w, r, "/admin/users?notice=User+added+to+organization", http.StatusSeeOther)
}

// HandleAdminDeleteUser removes a user (HTMX). The row disappears only
// after the platform confirms; on failure the swap is suppressed so the
// record stays in the list.
func (ui *UI) HandleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if !sess.IsAdmin() {
		w.Header().Set("HX-Redirect", "/dashboard")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	id := chi.URLParam(r, "id")

	// The delete control is hidden for the caller's own row; refuse it
	// here too in case the request is crafted.
	if id == sess.User.ID {
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := ui.backend.DeleteOrgUser(r.Context(), sess.Token, id); err != nil {
		ui.logger.Warn("delete user failed", "target", id, "error", err)
		if isAuthError(err) {
			w.Header().Set("HX-Redirect", "/dashboard")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ui.logger.Info("org user deleted", "target", id, "by", sess.User.ID)
	// Empty 200 lets HTMX remove the row element.
	w.WriteHeader(http.StatusOK)
}

// --- Helpers ---

// requireAdmin redirects non-admin sessions to the dashboard.
func (ui *UI) requireAdmin(w http.ResponseWriter, r *http.Request) (*model.Session, bool) {
	sess := SessionFromContext(r.Context())
	if sess == nil || !sess.IsAdmin() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}

// signOut drops a session whose token the platform no longer accepts.
func (ui *UI) signOut(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	_ = ui.sessions.Clear(r.Context(), sess.ID)
	ClearSessionCookie(w)
	http.Redirect(w, r, "/login?error=Session+expired.+Please+sign+in+again.", http.StatusSeeOther)
}

// userMessage extracts the platform's message from an error, falling
// back to the given generic text.
func userMessage(err error, fallback string) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// isAuthError reports whether the platform rejected the call as
// unauthenticated or unauthorized.
func isAuthError(err error) bool {
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.IsAuthError()
}

func (ui *UI) render(w http.ResponseWriter, template string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, message string, err error) {
	ui.logger.Error(message, "error", err)
	data := map[string]any{
		"Title":   "Error - StreamSafe",
		"Message": message,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)

	var buf bytes.Buffer
	if rerr := renderTemplate(&buf, "error", data); rerr != nil {
		ui.logger.Error("template render failed", "template", "error", "error", rerr)
		return
	}
	buf.WriteTo(w)
}
