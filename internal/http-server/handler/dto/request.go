package dto

import "wishboard/internal/domain"

type CreateWishRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"max=1000"`
	ImageURL    string   `json:"image_url"   validate:"omitempty,max=2048"`
	Link        string   `json:"link"        validate:"omitempty,max=2048"`
	Tags        []string `json:"tags"        validate:"max=20,dive,max=50"`
	Status      string   `json:"status"      validate:"omitempty,oneof=completed not_completed"`
}

func (r CreateWishRequest) Input() domain.CreateWishInput {
	return domain.CreateWishInput{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Link:        r.Link,
		Tags:        r.Tags,
		Status:      domain.WishStatus(r.Status),
	}
}

// UpdateWishRequest distinguishes absent fields (nil) from empty ones. An
// empty status clears it.
type UpdateWishRequest struct {
	Title       *string   `json:"title"       validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string   `json:"image_url"   validate:"omitempty,max=2048"`
	Link        *string   `json:"link"        validate:"omitempty,max=2048"`
	Tags        *[]string `json:"tags"        validate:"omitempty,max=20"`
	Status      *string   `json:"status"`
}

func (r UpdateWishRequest) Input() domain.UpdateWishInput {
	in := domain.UpdateWishInput{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Link:        r.Link,
		Tags:        r.Tags,
	}
	if r.Status != nil {
		status := domain.WishStatus(*r.Status)
		in.Status = &status
	}
	return in
}

type ProfileRequest struct {
	FullName  string `json:"full_name"  validate:"required,max=200"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,max=2048"`
}

// UploadForm holds the multipart crop fields once parsed. Field names match
// the form keys.
type UploadForm struct {
	Rotation          float64 `json:"rotation"           validate:"gte=-360,lte=360"`
	FlipHorizontal    bool    `json:"flip_horizontal"`
	FlipVertical      bool    `json:"flip_vertical"`
	Zoom              float64 `json:"zoom"               validate:"gte=0"`
	Aspect            string  `json:"aspect"`
	CropX             int     `json:"crop_x"`
	CropY             int     `json:"crop_y"`
	CropWidth         int     `json:"crop_width"         validate:"gte=0"`
	CropHeight        int     `json:"crop_height"        validate:"gte=0"`
	WatermarkText     string  `json:"watermark_text"     validate:"max=200"`
	WatermarkPosition string  `json:"watermark_position" validate:"omitempty,oneof=top-left top-right bottom-left bottom-right center"`
}

func (f UploadForm) HasCrop() bool {
	return f.CropWidth > 0 || f.CropHeight > 0
}
