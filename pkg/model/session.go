package model

import "time"

// Session pairs the opaque platform token with the profile returned at
// login. Sessions carry no expiry of their own: a stale token is only
// discovered when the platform rejects a call.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"-"` // Platform token (not exposed via JSON)
	User      UserProfile `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool {
	return s.User.IsAdmin()
}

// CanUpload reports whether the session may upload videos.
func (s *Session) CanUpload() bool {
	return s.User.Role.CanUpload()
}
