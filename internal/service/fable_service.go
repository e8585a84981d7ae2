package service

import (
	"context"

	"fables-server/internal/models"

	"github.com/google/uuid"
)

// FablePatch carries the updatable fields of a fable. Nil/empty fields are
// left untouched.
type FablePatch struct {
	Name    *string
	Locales []string
}

// ReactionResult reports the counters after a like/dislike, and whether the
// call was a no-op because the user had already reacted the same way.
type ReactionResult struct {
	LikesCount    int  `json:"likesCount"`
	DislikesCount int  `json:"dislikesCount"`
	Already       bool `json:"-"`
}

// FableService contains the business rules for fable collections and
// everything embedded in them.
type FableService interface {
	List(ctx context.Context, locale string, page, limit int) ([]models.Fable, int64, error)
	Create(ctx context.Context, creatorID uuid.UUID, name string, locales []string) (*models.Fable, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Fable, error)
	Update(ctx context.Context, id, callerID uuid.UUID, patch FablePatch) (*models.Fable, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error

	ListMessages(ctx context.Context, id uuid.UUID) ([]models.Message, error)
	AddMessage(ctx context.Context, id, callerID uuid.UUID, messageType models.MessageType, body, character string) (*models.Message, error)
	UpdateMessage(ctx context.Context, id, messageID, callerID uuid.UUID, body string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id, messageID, callerID uuid.UUID) error

	Like(ctx context.Context, id, callerID uuid.UUID) (*ReactionResult, error)
	Dislike(ctx context.Context, id, callerID uuid.UUID) (*ReactionResult, error)

	CreateCharacter(ctx context.Context, id, callerID uuid.UUID, name string) (*models.Character, error)
	UpdateCharacter(ctx context.Context, id, characterID, callerID uuid.UUID, name string) (*models.Character, error)
	DeleteCharacter(ctx context.Context, id, characterID, callerID uuid.UUID) error
}
