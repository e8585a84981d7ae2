package models

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FableEventPayload is the activity event published to RabbitMQ when a
// fable is created or receives a reaction.
type FableEventPayload struct {
	EventType     string `json:"event_type"` // fable_created, fable_liked, fable_disliked
	FableID       string `json:"fable_id"`
	ActorID       string `json:"actor_id"`
	LikesCount    int    `json:"likes_count"`
	DislikesCount int    `json:"dislikes_count"`
	OccurredAt    int64  `json:"occurred_at"` // Unix seconds
}
