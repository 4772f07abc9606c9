package upload

import (
	"path"
	"strings"
	"time"

	"wishboard/internal/domain"

	"github.com/google/uuid"
)

const keyPrefix = "wishes"

// ObjectKey returns wishes/YYYY/MM/DD/<uuid><ext> for the asset.
func ObjectKey(now time.Time, asset *domain.Asset) string {
	return path.Join(keyPrefix, now.UTC().Format("2006/01/02"), uuid.NewString()+Extension(asset))
}

// Extension picks the file extension from the media type, falling back to the
// asset name.
func Extension(asset *domain.Asset) string {
	switch asset.MediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	}
	if ext := path.Ext(asset.Name); ext != "" {
		return strings.ToLower(ext)
	}
	return ".bin"
}

// PublicURL joins a base URL and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
