package ui

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/me/streamsafe/internal/store"
	"github.com/me/streamsafe/pkg/model"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "streamsafe_session"

// SessionManager pairs browser cookies with stored platform sessions.
// Sessions have no expiry of their own: a token is used until the user
// signs out or the platform rejects it.
type SessionManager struct {
	store store.Store
}

// NewSessionManager creates a new session manager.
func NewSessionManager(st store.Store) *SessionManager {
	return &SessionManager{store: st}
}

// Login persists the token/profile pair returned by the platform and
// returns the created session. Exactly one session exists per browser:
// a new login simply supersedes the old cookie (last writer wins).
func (sm *SessionManager) Login(ctx context.Context, token string, profile model.UserProfile) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	sess := &model.Session{
		ID:        sessionID,
		Token:     token,
		User:      profile,
		CreatedAt: time.Now(),
	}

	if err := sm.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return sess, nil
}

// Current retrieves a session by ID from the store.
// Returns nil if the session doesn't exist.
func (sm *SessionManager) Current(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := sm.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Clear removes a session from the store.
func (sm *SessionManager) Clear(ctx context.Context, sessionID string) error {
	return sm.store.DeleteSession(ctx, sessionID)
}

// FromRequest extracts the session from the request cookie.
func (sm *SessionManager) FromRequest(r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, nil // No cookie, no session
	}
	return sm.Current(r.Context(), cookie.Value)
}

// SetSessionCookie sets the session cookie on the response. No Expires
// is set: the cookie lives for the browser session.
func SetSessionCookie(w http.ResponseWriter, sess *model.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateSessionID generates a cryptographically secure random session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sess_" + hex.EncodeToString(b), nil
}
