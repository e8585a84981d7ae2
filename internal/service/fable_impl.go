package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fables-server/internal/messaging"
	"fables-server/internal/models"
	"fables-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxListLimit caps the page size of fable listings.
	maxListLimit = 100

	// reactionSaveAttempts bounds the read-modify-write retries when a
	// concurrent reaction bumped the fable revision first.
	reactionSaveAttempts = 3
)

// Compile-time check to ensure fableServiceImpl implements FableService
var _ FableService = (*fableServiceImpl)(nil)

type fableServiceImpl struct {
	fableRepo repository.FableRepository
	publisher messaging.FableEventPublisher
	logger    *zap.Logger
}

// NewFableService creates a new instance of fableServiceImpl. The publisher
// may be nil, which disables activity events.
func NewFableService(fableRepo repository.FableRepository, publisher messaging.FableEventPublisher, logger *zap.Logger) FableService {
	return &fableServiceImpl{
		fableRepo: fableRepo,
		publisher: publisher,
		logger:    logger.Named("FableService"),
	}
}

// List returns a page of fables for the locale, most liked first.
func (s *fableServiceImpl) List(ctx context.Context, locale string, page, limit int) ([]models.Fable, int64, error) {
	logFields := []zap.Field{zap.String("locale", locale), zap.Int("page", page), zap.Int("limit", limit)}
	s.logger.Debug("Listing fables", logFields...)

	if !models.ValidLocale(locale) {
		s.logger.Warn("List requested with unsupported locale", logFields...)
		return nil, 0, fmt.Errorf("unsupported locale %q: %w", locale, models.ErrInvalidInput)
	}
	if page < 1 {
		return nil, 0, fmt.Errorf("page must be positive: %w", models.ErrInvalidInput)
	}
	if limit < 1 {
		return nil, 0, fmt.Errorf("limit must be positive: %w", models.ErrInvalidInput)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	fables, total, err := s.fableRepo.ListByLocale(ctx, locale, (page-1)*limit, limit)
	if err != nil {
		s.logger.Error("Failed to list fables via repository", append(logFields, zap.Error(err))...)
		return nil, 0, fmt.Errorf("failed to list fables: %w", err)
	}
	return fables, total, nil
}

// Create validates and stores a new fable for the creator.
func (s *fableServiceImpl) Create(ctx context.Context, creatorID uuid.UUID, name string, locales []string) (*models.Fable, error) {
	name = strings.TrimSpace(name)
	logFields := []zap.Field{zap.String("creatorID", creatorID.String()), zap.String("name", name)}
	s.logger.Info("Creating fable", logFields...)

	if name == "" {
		s.logger.Warn("Create attempt with empty name", logFields...)
		return nil, fmt.Errorf("fable name is required: %w", models.ErrInvalidInput)
	}
	locales, err := normalizeLocales(locales)
	if err != nil {
		s.logger.Warn("Create attempt with invalid locales", append(logFields, zap.Error(err))...)
		return nil, err
	}

	now := time.Now().UTC()
	fable := &models.Fable{
		Name:       name,
		CreatorID:  creatorID,
		Locales:    locales,
		Characters: []models.Character{},
		Messages:   []models.Message{},
		Likes:      []models.Reaction{},
		Dislikes:   []models.Reaction{},
		CreatedAt:  now,
		UpdatedAt:  now,
		Revision:   1,
	}

	if err := s.fableRepo.Create(ctx, fable); err != nil {
		s.logger.Error("Failed to create fable via repository", append(logFields, zap.Error(err))...)
		return nil, err
	}

	s.publishEvent(ctx, messaging.EventFableCreated, fable, creatorID)
	s.logger.Info("Fable created", zap.String("fableID", fable.ID.String()), zap.String("creatorID", creatorID.String()))
	return fable, nil
}

// Get loads a single fable.
func (s *fableServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Fable, error) {
	s.logger.Debug("Getting fable", zap.String("fableID", id.String()))
	return s.fableRepo.GetByID(ctx, id)
}

// Update modifies the fable's own fields. Creator-only.
func (s *fableServiceImpl) Update(ctx context.Context, id, callerID uuid.UUID, patch FablePatch) (*models.Fable, error) {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("callerID", callerID.String())}
	s.logger.Info("Updating fable", logFields...)

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			s.logger.Warn("Update attempt with empty name", logFields...)
			return nil, fmt.Errorf("fable name is required: %w", models.ErrInvalidInput)
		}
		fable.Name = name
	}
	if patch.Locales != nil {
		locales, err := normalizeLocales(patch.Locales)
		if err != nil {
			s.logger.Warn("Update attempt with invalid locales", append(logFields, zap.Error(err))...)
			return nil, err
		}
		fable.Locales = locales
	}

	if err := s.save(ctx, fable); err != nil {
		return nil, err
	}
	return fable, nil
}

// Delete removes the fable and all embedded documents. Creator-only.
func (s *fableServiceImpl) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("callerID", callerID.String())}
	s.logger.Info("Deleting fable", logFields...)

	if _, err := s.loadOwned(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.fableRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete fable via repository", append(logFields, zap.Error(err))...)
		return err
	}
	s.logger.Info("Fable deleted", logFields...)
	return nil
}

// ListMessages returns the fable's message thread in order.
func (s *fableServiceImpl) ListMessages(ctx context.Context, id uuid.UUID) ([]models.Message, error) {
	s.logger.Debug("Listing messages", zap.String("fableID", id.String()))
	fable, err := s.fableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return fable.Messages, nil
}

// AddMessage appends a message to the fable's thread. Creator-only.
// For video messages carrying a "v=" query fragment only the part after it
// is stored, so full YouTube URLs collapse to the video identifier.
func (s *fableServiceImpl) AddMessage(ctx context.Context, id, callerID uuid.UUID, messageType models.MessageType, body, character string) (*models.Message, error) {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("callerID", callerID.String()), zap.String("messageType", string(messageType))}
	s.logger.Info("Adding message", logFields...)

	if !models.ValidMessageType(messageType) {
		s.logger.Warn("Add message attempt with unsupported type", logFields...)
		return nil, fmt.Errorf("unsupported message type %q: %w", messageType, models.ErrInvalidInput)
	}

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if messageType == models.MessageTypeVideo {
		if i := strings.Index(body, "v="); i >= 0 {
			body = body[i+len("v="):]
		}
	}

	message := models.Message{
		ID:          uuid.New(),
		MessageType: messageType,
		Body:        body,
		Character:   character,
		Date:        time.Now().UTC(),
	}
	fable.Messages = append(fable.Messages, message)

	if err := s.save(ctx, fable); err != nil {
		return nil, err
	}
	s.logger.Info("Message added", append(logFields, zap.String("messageID", message.ID.String()))...)
	return &message, nil
}

// UpdateMessage replaces the body of an existing message. Creator-only.
func (s *fableServiceImpl) UpdateMessage(ctx context.Context, id, messageID, callerID uuid.UUID, body string) (*models.Message, error) {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("messageID", messageID.String()), zap.String("callerID", callerID.String())}
	s.logger.Info("Updating message", logFields...)

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	idx := fable.MessageIndex(messageID)
	if idx < 0 {
		s.logger.Warn("Message not found for update", logFields...)
		return nil, models.ErrMessageNotFound
	}
	fable.Messages[idx].Body = body

	if err := s.save(ctx, fable); err != nil {
		return nil, err
	}
	return &fable.Messages[idx], nil
}

// DeleteMessage removes a message from the thread. Creator-only.
func (s *fableServiceImpl) DeleteMessage(ctx context.Context, id, messageID, callerID uuid.UUID) error {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("messageID", messageID.String()), zap.String("callerID", callerID.String())}
	s.logger.Info("Deleting message", logFields...)

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return err
	}

	idx := fable.MessageIndex(messageID)
	if idx < 0 {
		s.logger.Warn("Message not found for deletion", logFields...)
		return models.ErrMessageNotFound
	}
	fable.Messages = append(fable.Messages[:idx], fable.Messages[idx+1:]...)

	return s.save(ctx, fable)
}

// Like records the caller's like. Liking twice is a no-op; a previous
// dislike is withdrawn first.
func (s *fableServiceImpl) Like(ctx context.Context, id, callerID uuid.UUID) (*ReactionResult, error) {
	return s.react(ctx, id, callerID, messaging.EventFableLiked, func(f *models.Fable, now time.Time) bool {
		return f.ApplyLike(callerID, now)
	})
}

// Dislike is the mirror of Like.
func (s *fableServiceImpl) Dislike(ctx context.Context, id, callerID uuid.UUID) (*ReactionResult, error) {
	return s.react(ctx, id, callerID, messaging.EventFableDisliked, func(f *models.Fable, now time.Time) bool {
		return f.ApplyDislike(callerID, now)
	})
}

// react runs the shared read-modify-write cycle for reactions. When a
// concurrent reaction wins the conditional save, the whole cycle is retried
// against the fresh document so neither reaction is lost.
func (s *fableServiceImpl) react(ctx context.Context, id, callerID uuid.UUID, eventType string, apply func(*models.Fable, time.Time) bool) (*ReactionResult, error) {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("callerID", callerID.String()), zap.String("event", eventType)}
	s.logger.Info("Applying reaction", logFields...)

	var lastErr error
	for attempt := 1; attempt <= reactionSaveAttempts; attempt++ {
		fable, err := s.fableRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		if !apply(fable, now) {
			s.logger.Debug("Reaction already present, nothing to do", logFields...)
			return &ReactionResult{
				LikesCount:    fable.LikesCount,
				DislikesCount: fable.DislikesCount,
				Already:       true,
			}, nil
		}
		fable.UpdatedAt = now

		err = s.fableRepo.Save(ctx, fable)
		if err == nil {
			s.publishEvent(ctx, eventType, fable, callerID)
			s.logger.Info("Reaction applied",
				append(logFields, zap.Int("likesCount", fable.LikesCount), zap.Int("dislikesCount", fable.DislikesCount), zap.Int("attempt", attempt))...)
			return &ReactionResult{
				LikesCount:    fable.LikesCount,
				DislikesCount: fable.DislikesCount,
			}, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			s.logger.Error("Failed to save reaction", append(logFields, zap.Error(err))...)
			return nil, err
		}

		lastErr = err
		s.logger.Debug("Reaction lost the conditional save, retrying", append(logFields, zap.Int("attempt", attempt))...)
	}

	s.logger.Warn("Reaction retries exhausted", append(logFields, zap.Int("attempts", reactionSaveAttempts))...)
	return nil, fmt.Errorf("reaction retries exhausted: %w", lastErr)
}

// CreateCharacter adds a character to the fable. Creator-only.
func (s *fableServiceImpl) CreateCharacter(ctx context.Context, id, callerID uuid.UUID, name string) (*models.Character, error) {
	name = strings.TrimSpace(name)
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("callerID", callerID.String()), zap.String("name", name)}
	s.logger.Info("Creating character", logFields...)

	if name == "" {
		s.logger.Warn("Create character attempt with empty name", logFields...)
		return nil, fmt.Errorf("character name is required: %w", models.ErrInvalidInput)
	}

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	character := models.Character{ID: uuid.New(), Name: name}
	fable.Characters = append(fable.Characters, character)

	if err := s.save(ctx, fable); err != nil {
		return nil, err
	}
	s.logger.Info("Character created", append(logFields, zap.String("characterID", character.ID.String()))...)
	return &character, nil
}

// UpdateCharacter renames an existing character. Creator-only.
func (s *fableServiceImpl) UpdateCharacter(ctx context.Context, id, characterID, callerID uuid.UUID, name string) (*models.Character, error) {
	name = strings.TrimSpace(name)
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("characterID", characterID.String()), zap.String("callerID", callerID.String())}
	s.logger.Info("Updating character", logFields...)

	if name == "" {
		s.logger.Warn("Update character attempt with empty name", logFields...)
		return nil, fmt.Errorf("character name is required: %w", models.ErrInvalidInput)
	}

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	idx := fable.CharacterIndex(characterID)
	if idx < 0 {
		s.logger.Warn("Character not found for update", logFields...)
		return nil, models.ErrCharacterNotFound
	}
	fable.Characters[idx].Name = name

	if err := s.save(ctx, fable); err != nil {
		return nil, err
	}
	return &fable.Characters[idx], nil
}

// DeleteCharacter removes a character from the fable. Creator-only.
// Messages referencing the character by name are left untouched.
func (s *fableServiceImpl) DeleteCharacter(ctx context.Context, id, characterID, callerID uuid.UUID) error {
	logFields := []zap.Field{zap.String("fableID", id.String()), zap.String("characterID", characterID.String()), zap.String("callerID", callerID.String())}
	s.logger.Info("Deleting character", logFields...)

	fable, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return err
	}

	idx := fable.CharacterIndex(characterID)
	if idx < 0 {
		s.logger.Warn("Character not found for deletion", logFields...)
		return models.ErrCharacterNotFound
	}
	fable.Characters = append(fable.Characters[:idx], fable.Characters[idx+1:]...)

	return s.save(ctx, fable)
}

// --- Helpers ---

// loadOwned loads a fable and verifies the caller is its creator.
func (s *fableServiceImpl) loadOwned(ctx context.Context, id, callerID uuid.UUID) (*models.Fable, error) {
	fable, err := s.fableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fable.CreatorID != callerID {
		s.logger.Warn("Caller is not the fable creator",
			zap.String("fableID", id.String()),
			zap.String("callerID", callerID.String()),
			zap.String("creatorID", fable.CreatorID.String()),
		)
		return nil, models.ErrForbidden
	}
	return fable, nil
}

// save stamps the update time and persists the aggregate.
func (s *fableServiceImpl) save(ctx context.Context, fable *models.Fable) error {
	fable.UpdatedAt = time.Now().UTC()
	if err := s.fableRepo.Save(ctx, fable); err != nil {
		s.logger.Error("Failed to save fable via repository", zap.String("fableID", fable.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// publishEvent emits an activity event, logging but never propagating
// publish failures.
func (s *fableServiceImpl) publishEvent(ctx context.Context, eventType string, fable *models.Fable, actorID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	payload := models.FableEventPayload{
		EventType:     eventType,
		FableID:       fable.ID.String(),
		ActorID:       actorID.String(),
		LikesCount:    fable.LikesCount,
		DislikesCount: fable.DislikesCount,
		OccurredAt:    time.Now().Unix(),
	}
	if err := s.publisher.PublishFableEvent(ctx, payload); err != nil {
		s.logger.Error("Failed to publish fable event",
			zap.String("event", eventType),
			zap.String("fableID", fable.ID.String()),
			zap.Error(err),
		)
	}
}

func normalizeLocales(locales []string) ([]string, error) {
	if len(locales) == 0 {
		return []string{models.DefaultLocale}, nil
	}
	seen := make(map[string]struct{}, len(locales))
	normalized := make([]string, 0, len(locales))
	for _, locale := range locales {
		locale = strings.ToLower(strings.TrimSpace(locale))
		if !models.ValidLocale(locale) {
			return nil, fmt.Errorf("unsupported locale %q: %w", locale, models.ErrInvalidInput)
		}
		if _, dup := seen[locale]; dup {
			continue
		}
		seen[locale] = struct{}{}
		normalized = append(normalized, locale)
	}
	return normalized, nil
}
