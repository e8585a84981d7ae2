package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLocale is applied when a fable is created without locales.
const DefaultLocale = "en_us"

// supportedLocales is the closed set of locales a fable may carry.
var supportedLocales = map[string]struct{}{
	"en_us": {},
}

// ValidLocale reports whether the given locale is supported.
func ValidLocale(locale string) bool {
	_, ok := supportedLocales[locale]
	return ok
}

// MessageType classifies a fable message.
type MessageType string

const (
	MessageTypeText      MessageType = "text"
	MessageTypeImage     MessageType = "image"
	MessageTypeVideo     MessageType = "video"
	MessageTypeNarration MessageType = "narration"
)

// ValidMessageType reports whether the given message type is supported.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeNarration:
		return true
	}
	return false
}

// Character is a named participant embedded in a fable.
type Character struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Message is a single entry of a fable's thread. Character references a
// character by name and is not enforced against the character list.
type Message struct {
	ID          uuid.UUID   `json:"id"`
	MessageType MessageType `json:"messageType"`
	Body        string      `json:"body"`
	Character   string      `json:"character,omitempty"`
	Date        time.Time   `json:"date"`
}

// Reaction records a single user's like or dislike.
type Reaction struct {
	UserID uuid.UUID `json:"user"`
	Date   time.Time `json:"date"`
}

// Fable is the aggregate root: a story collection with its characters,
// messages and reactions embedded. The whole document is persisted as a
// unit; Revision guards concurrent read-modify-write cycles.
type Fable struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	CreatorID     uuid.UUID   `db:"creator_id" json:"creator"`
	Locales       []string    `db:"locales" json:"locales"`
	Characters    []Character `db:"characters" json:"characters"`
	Messages      []Message   `db:"messages" json:"messages"`
	Likes         []Reaction  `db:"likes" json:"likes"`
	Dislikes      []Reaction  `db:"dislikes" json:"dislikes"`
	LikesCount    int         `db:"likes_count" json:"likesCount"`
	DislikesCount int         `db:"dislikes_count" json:"dislikesCount"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
	Revision      int64       `db:"revision" json:"-"`
}

// HasLiked reports whether the user is present in the likes list.
func (f *Fable) HasLiked(userID uuid.UUID) bool {
	for _, r := range f.Likes {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// HasDisliked reports whether the user is present in the dislikes list.
func (f *Fable) HasDisliked(userID uuid.UUID) bool {
	for _, r := range f.Dislikes {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ApplyLike adds the user's like to the aggregate. Returns false without
// modifying anything when the user already liked the fable. A previous
// dislike by the same user is removed, keeping the two lists mutually
// exclusive. Counters are recomputed from the lists.
func (f *Fable) ApplyLike(userID uuid.UUID, now time.Time) bool {
	if f.HasLiked(userID) {
		return false
	}
	f.Dislikes = removeReaction(f.Dislikes, userID)
	f.Likes = append(f.Likes, Reaction{UserID: userID, Date: now})
	f.recountReactions()
	return true
}

// ApplyDislike is the mirror of ApplyLike.
func (f *Fable) ApplyDislike(userID uuid.UUID, now time.Time) bool {
	if f.HasDisliked(userID) {
		return false
	}
	f.Likes = removeReaction(f.Likes, userID)
	f.Dislikes = append(f.Dislikes, Reaction{UserID: userID, Date: now})
	f.recountReactions()
	return true
}

// MessageIndex returns the position of the message with the given ID, or -1.
func (f *Fable) MessageIndex(messageID uuid.UUID) int {
	for i := range f.Messages {
		if f.Messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// CharacterIndex returns the position of the character with the given ID, or -1.
func (f *Fable) CharacterIndex(characterID uuid.UUID) int {
	for i := range f.Characters {
		if f.Characters[i].ID == characterID {
			return i
		}
	}
	return -1
}

func (f *Fable) recountReactions() {
	f.LikesCount = len(f.Likes)
	f.DislikesCount = len(f.Dislikes)
}

func removeReaction(reactions []Reaction, userID uuid.UUID) []Reaction {
	result := reactions[:0]
	for _, r := range reactions {
		if r.UserID != userID {
			result = append(result, r)
		}
	}
	return result
}
