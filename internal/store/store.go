package store

import (
	"context"

	"github.com/me/streamsafe/pkg/model"
)

// Store defines the durable session persistence for the console.
// Sessions carry no expiry: rows live until an explicit sign-out.
type Store interface {
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
