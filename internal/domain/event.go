package domain

import "time"

type EventType string

const (
	EventLikeToggled EventType = "like.toggled"
	EventWishDeleted EventType = "wish.deleted"
)

type Event struct {
	Type       EventType `json:"type"`
	WishID     string    `json:"wish_id"`
	UserID     string    `json:"user_id,omitempty"`
	Liked      bool      `json:"liked,omitempty"`
	TotalLikes int       `json:"total_likes"`
	OccurredAt time.Time `json:"occurred_at"`
}
