package upload

import (
	"regexp"
	"testing"
	"time"

	"wishboard/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 0, 0, time.FixedZone("UTC+3", 3*3600))
	key := ObjectKey(now, &domain.Asset{MediaType: domain.MediaTypeJPEG})

	assert.Regexp(t, regexp.MustCompile(`^wishes/2024/12/31/[0-9a-f-]{36}\.jpg$`), key)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		asset domain.Asset
		want  string
	}{
		{domain.Asset{MediaType: "image/png"}, ".png"},
		{domain.Asset{MediaType: "image/webp"}, ".webp"},
		{domain.Asset{Name: "photo.JPEG"}, ".jpeg"},
		{domain.Asset{Name: "blob"}, ".bin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(&tt.asset))
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn/x/wishes/a.jpg", PublicURL("https://cdn/x/", "/wishes/a.jpg"))
	assert.Equal(t, "/uploads/wishes/a.jpg", PublicURL("/uploads", "wishes/a.jpg"))
}
