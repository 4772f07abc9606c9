package domain

import "time"

type Wish struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Link        string
	Tags        []string
	Status      WishStatus
	LikeCount   int
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined from profiles and the viewer's like row; never written.
	OwnerName      string
	OwnerAvatarURL string
	IsLiked        bool
}

type WishStatus string

const (
	StatusNone         WishStatus = ""
	StatusCompleted    WishStatus = "completed"
	StatusNotCompleted WishStatus = "not_completed"
)

func (s WishStatus) Valid() bool {
	switch s {
	case StatusNone, StatusCompleted, StatusNotCompleted:
		return true
	}
	return false
}

type CreateWishInput struct {
	Title       string
	Description string
	ImageURL    string
	Link        string
	Tags        []string
	Status      WishStatus
}

// UpdateWishInput carries only the fields being changed. A nil field is left as is.
type UpdateWishInput struct {
	Title       *string
	Description *string
	ImageURL    *string
	Link        *string
	Tags        *[]string
	Status      *WishStatus
}

func (in UpdateWishInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.ImageURL == nil &&
		in.Link == nil && in.Tags == nil && in.Status == nil
}

type WishFilter struct {
	OwnerID  string
	ViewerID string
}

type Profile struct {
	ID        string
	FullName  string
	AvatarURL string
	UpdatedAt time.Time
}

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxLinkLength        = 2048
	MaxTags              = 20
	MaxTagLength         = 50
)
