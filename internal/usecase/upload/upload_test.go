package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"wishboard/internal/domain"
	"wishboard/internal/usecase/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

var loggerOnce sync.Once

func testLogger() *zlog.Zerolog {
	loggerOnce.Do(zlog.Init)
	return &zlog.Logger
}

type fakeGateway struct {
	saved []*domain.Asset
	err   error
}

func (g *fakeGateway) Save(_ context.Context, asset *domain.Asset) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.saved = append(g.saved, asset)
	return "/uploads/wishes/" + asset.Name, nil
}

func newUsecase(t *testing.T, gw *fakeGateway, maxSize int64) *UploadUsecase {
	t.Helper()
	engine, err := processor.NewImageProcessor(processor.Options{Quality: domain.DefaultJPEGQuality, Background: color.White}, testLogger())
	require.NoError(t, err)
	return NewUploadUsecase(engine, gw, maxSize, testLogger())
}

func pngSource(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_WithCrop(t *testing.T) {
	gw := &fakeGateway{}
	uc := newUsecase(t, gw, 0)

	spec := &domain.CropSpec{RotationDegrees: 90, Crop: domain.CropRect{X: 0, Y: 0, Width: 10, Height: 20}}
	ref, err := uc.Upload(context.Background(), pngSource(t, 40, 30), "photo.png", spec)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/wishes/"+domain.CroppedAssetName, ref)

	require.Len(t, gw.saved, 1)
	asset := gw.saved[0]
	assert.Equal(t, domain.MediaTypeJPEG, asset.MediaType)

	img, err := jpeg.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 20), img.Bounds())
}

func TestUpload_OriginalKeepsFormat(t *testing.T) {
	gw := &fakeGateway{}
	uc := newUsecase(t, gw, 0)

	src := pngSource(t, 8, 8)
	_, err := uc.Upload(context.Background(), src, "../../avatar.png", nil)
	require.NoError(t, err)

	require.Len(t, gw.saved, 1)
	assert.Equal(t, "avatar.png", gw.saved[0].Name)
	assert.Equal(t, "image/png", gw.saved[0].MediaType)
	assert.Equal(t, src, gw.saved[0].Data)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		src     []byte
		spec    *domain.CropSpec
		maxSize int64
		wantErr error
	}{
		{name: "empty", src: nil, wantErr: domain.ErrValidation},
		{name: "too large", src: make([]byte, 11), maxSize: 10, wantErr: domain.ErrValidation},
		{name: "not an image", src: []byte("hello"), wantErr: domain.ErrDecode},
		{
			name:    "corrupt with crop",
			src:     []byte("hello"),
			spec:    &domain.CropSpec{Crop: domain.CropRect{Width: 1, Height: 1}},
			wantErr: domain.ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			uc := newUsecase(t, gw, tt.maxSize)

			_, err := uc.Upload(context.Background(), tt.src, "x", tt.spec)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, gw.saved)
		})
	}
}

func TestUpload_GatewayFailure(t *testing.T) {
	boom := errors.New("disk full")
	uc := newUsecase(t, &fakeGateway{err: boom}, 0)

	_, err := uc.Upload(context.Background(), pngSource(t, 4, 4), "a.png", nil)
	require.ErrorIs(t, err, boom)
}
