package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLike(t *testing.T) {
	user := uuid.New()
	now := time.Now().UTC()
	fable := &Fable{}

	applied := fable.ApplyLike(user, now)
	require.True(t, applied, "first like should be applied")
	assert.Equal(t, 1, fable.LikesCount)
	assert.Equal(t, 0, fable.DislikesCount)
	assert.True(t, fable.HasLiked(user))

	// Liking again is a no-op and must not change anything.
	applied = fable.ApplyLike(user, now.Add(time.Second))
	assert.False(t, applied, "second like by the same user should not be applied")
	assert.Equal(t, 1, fable.LikesCount)
	assert.Len(t, fable.Likes, 1)
}

func TestApplyDislikeRemovesLike(t *testing.T) {
	user := uuid.New()
	now := time.Now().UTC()
	fable := &Fable{}

	require.True(t, fable.ApplyLike(user, now))
	require.True(t, fable.ApplyDislike(user, now.Add(time.Second)))

	assert.False(t, fable.HasLiked(user), "dislike should withdraw the previous like")
	assert.True(t, fable.HasDisliked(user))
	assert.Equal(t, 0, fable.LikesCount)
	assert.Equal(t, 1, fable.DislikesCount)

	// And back again.
	require.True(t, fable.ApplyLike(user, now.Add(2*time.Second)))
	assert.True(t, fable.HasLiked(user))
	assert.False(t, fable.HasDisliked(user))
	assert.Equal(t, 1, fable.LikesCount)
	assert.Equal(t, 0, fable.DislikesCount)
}

func TestReactionCountsMatchLists(t *testing.T) {
	fable := &Fable{}
	now := time.Now().UTC()

	users := make([]uuid.UUID, 5)
	for i := range users {
		users[i] = uuid.New()
		require.True(t, fable.ApplyLike(users[i], now))
	}
	require.True(t, fable.ApplyDislike(users[0], now))
	require.True(t, fable.ApplyDislike(users[1], now))

	assert.Equal(t, len(fable.Likes), fable.LikesCount)
	assert.Equal(t, len(fable.Dislikes), fable.DislikesCount)
	assert.Equal(t, 3, fable.LikesCount)
	assert.Equal(t, 2, fable.DislikesCount)
}

func TestMessageAndCharacterIndex(t *testing.T) {
	msgID := uuid.New()
	charID := uuid.New()
	fable := &Fable{
		Messages: []Message{
			{ID: uuid.New()},
			{ID: msgID},
		},
		Characters: []Character{
			{ID: charID, Name: "Fox"},
		},
	}

	assert.Equal(t, 1, fable.MessageIndex(msgID))
	assert.Equal(t, -1, fable.MessageIndex(uuid.New()))
	assert.Equal(t, 0, fable.CharacterIndex(charID))
	assert.Equal(t, -1, fable.CharacterIndex(uuid.New()))
}

func TestValidLocale(t *testing.T) {
	assert.True(t, ValidLocale("en_us"))
	assert.False(t, ValidLocale("EN_US"))
	assert.False(t, ValidLocale("fr_fr"))
	assert.False(t, ValidLocale(""))
}

func TestValidMessageType(t *testing.T) {
	for _, mt := range []MessageType{MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeNarration} {
		assert.True(t, ValidMessageType(mt), string(mt))
	}
	assert.False(t, ValidMessageType("audio"))
	assert.False(t, ValidMessageType(""))
}
