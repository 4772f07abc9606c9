package dto

import (
	"time"

	"wishboard/internal/domain"
)

type ErrorResponse struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Fields  []FieldResponse `json:"fields,omitempty"`
}

type FieldResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type WishResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url,omitempty"`
	Link           string    `json:"link,omitempty"`
	Tags           []string  `json:"tags"`
	Status         string    `json:"status,omitempty"`
	Likes          int       `json:"likes"`
	UserID         string    `json:"user_id"`
	OwnerName      string    `json:"owner_name,omitempty"`
	OwnerAvatarURL string    `json:"owner_avatar_url,omitempty"`
	IsLiked        bool      `json:"is_liked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ToggleResponse struct {
	IsLiked    bool `json:"is_liked"`
	TotalLikes int  `json:"total_likes"`
}

type LikesResponse struct {
	Likes int `json:"likes"`
}

type IsLikedResponse struct {
	IsLiked bool `json:"is_liked"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

func NewWishResponse(w *domain.Wish) WishResponse {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return WishResponse{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		ImageURL:       w.ImageURL,
		Link:           w.Link,
		Tags:           tags,
		Status:         string(w.Status),
		Likes:          w.LikeCount,
		UserID:         w.OwnerID,
		OwnerName:      w.OwnerName,
		OwnerAvatarURL: w.OwnerAvatarURL,
		IsLiked:        w.IsLiked,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func NewWishListResponse(wishes []domain.Wish) []WishResponse {
	out := make([]WishResponse, 0, len(wishes))
	for i := range wishes {
		out = append(out, NewWishResponse(&wishes[i]))
	}
	return out
}

func NewProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		UpdatedAt: p.UpdatedAt,
	}
}
