package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"wishboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

var loggerOnce sync.Once

func testLogger() *zlog.Zerolog {
	loggerOnce.Do(zlog.Init)
	return &zlog.Logger
}

func newTestProcessor(t *testing.T) *ImageProcessor {
	t.Helper()
	p, err := NewImageProcessor(Options{Quality: domain.DefaultJPEGQuality}, testLogger())
	require.NoError(t, err)
	return p
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestRender_SolidColorRoundTrip(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	red := color.RGBA{R: 220, G: 30, B: 40, A: 255}

	out, err := p.Render(solidImage(120, 80, red), domain.CropSpec{
		Crop: domain.CropRect{X: 0, Y: 0, Width: 50, Height: 50},
	})
	require.NoError(t, err)

	require.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			require.Equal(t, red, out.RGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestTransform_SolidColorAsset(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}

	asset, err := p.Transform(context.Background(), encodePNG(t, solidImage(100, 100, gray)), domain.CropSpec{
		Crop: domain.CropRect{X: 0, Y: 0, Width: 50, Height: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CroppedAssetName, asset.Name)
	assert.Equal(t, domain.MediaTypeJPEG, asset.MediaType)

	decoded, err := jpeg.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	require.Equal(t, 50, decoded.Bounds().Dx())
	require.Equal(t, 50, decoded.Bounds().Dy())

	b := decoded.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := decoded.At(x, y).RGBA()
			require.Equal(t, [3]uint32{128, 128, 128}, [3]uint32{r >> 8, g >> 8, bl >> 8}, "pixel (%d,%d)", x, y)
		}
	}
}

func TestRender_QuarterTurnSwapsAndMovesCorner(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	src := solidImage(200, 100, color.RGBA{B: 255, A: 255})
	marker := color.RGBA{R: 255, A: 255}
	src.SetRGBA(0, 0, marker)

	out, err := p.Render(src, domain.CropSpec{
		RotationDegrees: 90,
		Crop:            domain.CropRect{Width: 100, Height: 200},
	})
	require.NoError(t, err)

	require.Equal(t, image.Rect(0, 0, 100, 200), out.Bounds())
	// Clockwise on a y-down canvas: top-left moves to top-right.
	assert.Equal(t, marker, out.RGBAAt(99, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(0, 0))
}

func TestRender_HorizontalFlip(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	src := solidImage(40, 20, color.RGBA{G: 255, A: 255})
	marker := color.RGBA{R: 255, A: 255}
	src.SetRGBA(0, 0, marker)

	out, err := p.Render(src, domain.CropSpec{
		FlipHorizontal: true,
		Crop:           domain.CropRect{Width: 40, Height: 20},
	})
	require.NoError(t, err)

	assert.Equal(t, marker, out.RGBAAt(39, 0))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, out.RGBAAt(0, 0))
}

func TestRender_ArbitraryAngleUsesBoundingBox(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	out, err := p.Render(solidImage(100, 100, color.White), domain.CropSpec{
		RotationDegrees: 45,
		Crop:            domain.CropRect{Width: 142, Height: 142},
	})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 142, 142), out.Bounds())
	// The center stays inside the rotated source.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(71, 71))
}

func TestRender_ClampsCropToCanvas(t *testing.T) {
	t.Parallel()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p, err := NewImageProcessor(Options{Quality: domain.DefaultJPEGQuality, Background: white}, testLogger())
	require.NoError(t, err)

	out, err := p.Render(solidImage(100, 60, color.Black), domain.CropSpec{
		Crop: domain.CropRect{X: 80, Y: 40, Width: 50, Height: 50},
	})
	require.NoError(t, err)

	// Output keeps the requested size; only the source region is clamped.
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(19, 19))
	assert.Equal(t, white, out.RGBAAt(20, 0))
	assert.Equal(t, white, out.RGBAAt(0, 20))
	assert.Equal(t, white, out.RGBAAt(49, 49))
}

func TestRender_CropLargerThanCanvas(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	out, err := p.Render(solidImage(100, 100, color.Black), domain.CropSpec{
		Crop: domain.CropRect{X: -10, Y: -10, Width: 120, Height: 120},
	})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 120, 120), out.Bounds())
	assert.Equal(t, color.RGBA{}, out.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(109, 109))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(110, 110))
}

func TestValidate_CropAboveMaxPixels(t *testing.T) {
	t.Parallel()

	p, err := NewImageProcessor(Options{MaxPixels: 100}, testLogger())
	require.NoError(t, err)

	err = p.Validate(domain.CropSpec{Crop: domain.CropRect{Width: 20, Height: 10}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("crop"))
}

func TestRender_CropOutsideCanvas(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	_, err := p.Render(solidImage(100, 60, color.Black), domain.CropSpec{
		Crop: domain.CropRect{X: 500, Y: 500, Width: 10, Height: 10},
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("crop"))
}

func TestRender_Watermark(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	black := color.RGBA{A: 255}
	out, err := p.Render(solidImage(300, 120, black), domain.CropSpec{
		Crop:      domain.CropRect{Width: 300, Height: 120},
		Watermark: &domain.WatermarkOptions{Text: "wish", Opacity: 1, Position: domain.WatermarkCenter},
	})
	require.NoError(t, err)

	changed := 0
	for y := 0; y < 120; y++ {
		for x := 0; x < 300; x++ {
			if out.RGBAAt(x, y) != black {
				changed++
			}
		}
	}
	assert.Positive(t, changed)
}

func TestTransform_CorruptImage(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	_, err := p.Transform(context.Background(), []byte("definitely not an image"), domain.CropSpec{
		Crop: domain.CropRect{Width: 10, Height: 10},
	})
	require.ErrorIs(t, err, domain.ErrDecode)
}

func TestTransform_TooManyPixels(t *testing.T) {
	t.Parallel()

	p, err := NewImageProcessor(Options{MaxPixels: 100}, testLogger())
	require.NoError(t, err)

	_, err = p.Transform(context.Background(), encodePNG(t, solidImage(20, 20, color.White)), domain.CropSpec{
		Crop: domain.CropRect{Width: 10, Height: 10},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("file"))
}

func TestTransform_CanceledContext(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Transform(ctx, encodePNG(t, solidImage(20, 20, color.White)), domain.CropSpec{
		Crop: domain.CropRect{Width: 10, Height: 10},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)

	tests := []struct {
		name  string
		spec  domain.CropSpec
		field string
	}{
		{"zero size", domain.CropSpec{}, "crop"},
		{"zoom too small", domain.CropSpec{Zoom: 0.1, Crop: domain.CropRect{Width: 1, Height: 1}}, "zoom"},
		{"zoom too large", domain.CropSpec{Zoom: 9, Crop: domain.CropRect{Width: 1, Height: 1}}, "zoom"},
		{"aspect mismatch", domain.CropSpec{Aspect: domain.AspectPresets["1:1"], Crop: domain.CropRect{Width: 40, Height: 30}}, "aspect"},
		{"valid 4:3", domain.CropSpec{Zoom: 1, Aspect: domain.AspectPresets["4:3"], Crop: domain.CropRect{Width: 401, Height: 300}}, ""},
		{"free aspect", domain.CropSpec{Aspect: domain.AspectPresets["free"], Crop: domain.CropRect{Width: 7, Height: 300}}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := p.Validate(tt.spec)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.HasField(tt.field))
		})
	}
}

func TestMediaType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/png", MediaType("png"))
	assert.Equal(t, "image/webp", MediaType("webp"))
	assert.Equal(t, "application/octet-stream", MediaType("xcf"))
}
