package domain

import "time"

type LikeRelationship struct {
	ID        string
	UserID    string
	WishID    string
	CreatedAt time.Time
}

type ToggleResult struct {
	Liked      bool
	TotalLikes int
}
