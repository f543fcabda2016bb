package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/me/streamsafe/pkg/model"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return st
}

func TestSQLiteStore_SessionRoundTrip(t *testing.T) {
	st := setupTestStore(t)
	defer st.Close()
	ctx := context.Background()

	sess := &model.Session{
		ID:    "sess_abc",
		Token: "t1",
		User: model.UserProfile{
			ID:             "u1",
			Username:       "alice",
			Email:          "a@x.com",
			Role:           model.RoleAdmin,
			OrganizationID: "org_A",
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := st.GetSession(ctx, "sess_abc")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session to be found")
	}
	if got.Token != "t1" {
		t.Errorf("expected token 't1', got %q", got.Token)
	}
	if got.User != sess.User {
		t.Errorf("profile mismatch: got %+v, want %+v", got.User, sess.User)
	}
}

func TestSQLiteStore_GetSession_NotFound(t *testing.T) {
	st := setupTestStore(t)
	defer st.Close()

	got, err := st.GetSession(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil session for unknown ID")
	}
}

func TestSQLiteStore_DeleteSession(t *testing.T) {
	st := setupTestStore(t)
	defer st.Close()
	ctx := context.Background()

	sess := &model.Session{
		ID:        "sess_del",
		Token:     "t2",
		User:      model.UserProfile{ID: "u2", Role: model.RoleViewer},
		CreatedAt: time.Now(),
	}
	if err := st.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := st.DeleteSession(ctx, "sess_del"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	got, err := st.GetSession(ctx, "sess_del")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Error("expected session to be gone after delete")
	}

	// Deleting again is a no-op, not an error.
	if err := st.DeleteSession(ctx, "sess_del"); err != nil {
		t.Errorf("DeleteSession on missing row: %v", err)
	}
}
