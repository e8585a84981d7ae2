package repository

import (
	"context"

	"fables-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts a pgx pool or transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// FableRepository persists fable aggregates as whole documents.
type FableRepository interface {
	// Create inserts a new fable and fills in its store-assigned ID.
	Create(ctx context.Context, fable *models.Fable) error
	// GetByID returns the full aggregate or models.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Fable, error)
	// Save writes the whole aggregate back. It succeeds only when the
	// stored revision matches fable.Revision, returning
	// models.ErrVersionConflict otherwise, and bumps the revision on
	// success.
	Save(ctx context.Context, fable *models.Fable) error
	// Delete removes the fable and everything embedded in it.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByLocale returns a page of fables carrying the locale, ordered
	// by likes count descending, plus the total number of matches.
	ListByLocale(ctx context.Context, locale string, offset, limit int) ([]models.Fable, int64, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenRepository stores issued token UUIDs for revocation checks.
type TokenRepository interface {
	SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error
	DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error)
	GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error)
	GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error)
	DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
