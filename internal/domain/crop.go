package domain

import "image"

type CropRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r CropRect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

type AspectRatio struct {
	Width  int
	Height int
}

func (a AspectRatio) Free() bool {
	return a.Width <= 0 || a.Height <= 0
}

func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// CropSpec describes one interactive crop. Crop is expressed in the coordinate
// space of the rotated, zoomed view, so Zoom is informational here.
type CropSpec struct {
	RotationDegrees float64
	FlipHorizontal  bool
	FlipVertical    bool
	Zoom            float64
	Aspect          AspectRatio
	Crop            CropRect
	Watermark       *WatermarkOptions
}

type WatermarkOptions struct {
	Text     string
	Position WatermarkPosition
	Opacity  float64
	FontSize float64
}

type WatermarkPosition string

const (
	WatermarkTopLeft     WatermarkPosition = "top-left"
	WatermarkTopRight    WatermarkPosition = "top-right"
	WatermarkBottomLeft  WatermarkPosition = "bottom-left"
	WatermarkBottomRight WatermarkPosition = "bottom-right"
	WatermarkCenter      WatermarkPosition = "center"
)

// Asset is an encoded file ready for the upload gateway.
type Asset struct {
	Name      string
	MediaType string
	Data      []byte
}

func (a *Asset) Size() int64 {
	return int64(len(a.Data))
}

const (
	DefaultMaxUploadSize    = 32 << 20
	DefaultJPEGQuality      = 90
	DefaultMaxPixels        = 40_000_000
	DefaultMinZoom          = 0.5
	DefaultMaxZoom          = 5
	DefaultWatermarkOpacity = 0.5
	DefaultWatermarkSize    = 36

	CroppedAssetName = "cropped-image.jpg"
	MediaTypeJPEG    = "image/jpeg"
)

var AspectPresets = map[string]AspectRatio{
	"4:3":  {Width: 4, Height: 3},
	"1:1":  {Width: 1, Height: 1},
	"free": {},
}
