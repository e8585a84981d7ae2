package repository

import (
	"context"
	"errors"
	"fmt"

	"fables-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgFableRepository implements FableRepository
var _ FableRepository = (*pgFableRepository)(nil)

const fableColumns = `id, name, creator_id, locales, characters, messages, likes, dislikes, likes_count, dislikes_count, created_at, updated_at, revision`

const (
	insertFableQuery = `INSERT INTO fables (name, creator_id, locales, characters, messages, likes, dislikes, likes_count, dislikes_count, created_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`

	getFableQuery = `SELECT ` + fableColumns + ` FROM fables WHERE id = $1`

	// The revision predicate makes the whole-document write conditional:
	// a concurrent writer that already bumped the revision causes zero
	// affected rows.
	saveFableQuery = `UPDATE fables SET
			name = $1, locales = $2, characters = $3, messages = $4,
			likes = $5, dislikes = $6, likes_count = $7, dislikes_count = $8,
			updated_at = $9, revision = revision + 1
		WHERE id = $10 AND revision = $11`

	deleteFableQuery = `DELETE FROM fables WHERE id = $1`

	fableExistsQuery = `SELECT EXISTS (SELECT 1 FROM fables WHERE id = $1)`

	listFablesQuery = `SELECT ` + fableColumns + ` FROM fables
		WHERE $1 = ANY(locales)
		ORDER BY likes_count DESC, created_at DESC, id
		LIMIT $2 OFFSET $3`

	countFablesQuery = `SELECT COUNT(*) FROM fables WHERE $1 = ANY(locales)`
)

type pgFableRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgFableRepository creates a new PostgreSQL-backed FableRepository.
func NewPgFableRepository(db DBTX, logger *zap.Logger) FableRepository {
	return &pgFableRepository{
		db:     db,
		logger: logger.Named("PgFableRepo"),
	}
}

// Create inserts a new fable document.
func (r *pgFableRepository) Create(ctx context.Context, fable *models.Fable) error {
	logFields := []zap.Field{zap.String("name", fable.Name), zap.String("creatorID", fable.CreatorID.String())}
	r.logger.Debug("Inserting fable", logFields...)

	err := r.db.QueryRow(ctx, insertFableQuery,
		fable.Name, fable.CreatorID, fable.Locales,
		fable.Characters, fable.Messages, fable.Likes, fable.Dislikes,
		fable.LikesCount, fable.DislikesCount,
		fable.CreatedAt, fable.UpdatedAt, fable.Revision,
	).Scan(&fable.ID)
	if err != nil {
		r.logger.Error("Failed to insert fable", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert fable: %w", err)
	}

	r.logger.Info("Fable created", zap.String("fableID", fable.ID.String()), zap.String("creatorID", fable.CreatorID.String()))
	return nil
}

// GetByID loads the full fable aggregate.
func (r *pgFableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Fable, error) {
	r.logger.Debug("Loading fable", zap.String("fableID", id.String()))

	var fable models.Fable
	err := pgxscan.Get(ctx, r.db, &fable, getFableQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Fable not found", zap.String("fableID", id.String()))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to load fable", zap.String("fableID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load fable %s: %w", id, err)
	}
	return &fable, nil
}

// Save writes the whole aggregate back conditionally on its revision.
func (r *pgFableRepository) Save(ctx context.Context, fable *models.Fable) error {
	logFields := []zap.Field{zap.String("fableID", fable.ID.String()), zap.Int64("revision", fable.Revision)}
	r.logger.Debug("Saving fable", logFields...)

	tag, err := r.db.Exec(ctx, saveFableQuery,
		fable.Name, fable.Locales, fable.Characters, fable.Messages,
		fable.Likes, fable.Dislikes, fable.LikesCount, fable.DislikesCount,
		fable.UpdatedAt,
		fable.ID, fable.Revision,
	)
	if err != nil {
		r.logger.Error("Failed to save fable", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to save fable %s: %w", fable.ID, err)
	}

	if tag.RowsAffected() == 0 {
		// Either the row is gone or another writer bumped the revision.
		var exists bool
		if err := r.db.QueryRow(ctx, fableExistsQuery, fable.ID).Scan(&exists); err != nil {
			r.logger.Error("Failed to check fable existence after conditional save", append(logFields, zap.Error(err))...)
			return fmt.Errorf("failed to check fable %s after save: %w", fable.ID, err)
		}
		if !exists {
			r.logger.Debug("Fable disappeared before save", logFields...)
			return models.ErrNotFound
		}
		r.logger.Debug("Fable revision conflict on save", logFields...)
		return models.ErrVersionConflict
	}

	fable.Revision++
	r.logger.Debug("Fable saved", zap.String("fableID", fable.ID.String()), zap.Int64("newRevision", fable.Revision))
	return nil
}

// Delete removes the fable row and everything embedded in it.
func (r *pgFableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Debug("Deleting fable", zap.String("fableID", id.String()))

	tag, err := r.db.Exec(ctx, deleteFableQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete fable", zap.String("fableID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete fable %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("Fable not found for deletion", zap.String("fableID", id.String()))
		return models.ErrNotFound
	}

	r.logger.Info("Fable deleted", zap.String("fableID", id.String()))
	return nil
}

// ListByLocale returns a page of fables for the locale ordered by
// popularity, plus the total number of matches.
func (r *pgFableRepository) ListByLocale(ctx context.Context, locale string, offset, limit int) ([]models.Fable, int64, error) {
	logFields := []zap.Field{zap.String("locale", locale), zap.Int("offset", offset), zap.Int("limit", limit)}
	r.logger.Debug("Listing fables", logFields...)

	var total int64
	if err := r.db.QueryRow(ctx, countFablesQuery, locale).Scan(&total); err != nil {
		r.logger.Error("Failed to count fables", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("failed to count fables for locale %s: %w", locale, err)
	}

	fables := make([]models.Fable, 0, limit)
	if err := pgxscan.Select(ctx, r.db, &fables, listFablesQuery, locale, limit, offset); err != nil {
		r.logger.Error("Failed to list fables", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("failed to list fables for locale %s: %w", locale, err)
	}

	r.logger.Debug("Fables listed", append(logFields, zap.Int("count", len(fables)), zap.Int64("total", total))...)
	return fables, total, nil
}
