package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"wishboard/internal/domain"
	"wishboard/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/zlog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const aspectTolerance = 0.02

type Options struct {
	Quality    int
	MaxPixels  int
	MinZoom    float64
	MaxZoom    float64
	Background color.Color
}

type ImageProcessor struct {
	rotator     *operations.Rotator
	cropper     *operations.Cropper
	watermarker *operations.Watermarker
	encoder     *operations.Encoder
	opts        Options
	logger      *zlog.Zerolog
}

func NewImageProcessor(opts Options, logger *zlog.Zerolog) (*ImageProcessor, error) {
	watermarker, err := operations.NewWatermarker()
	if err != nil {
		return nil, err
	}

	if opts.MaxPixels <= 0 {
		opts.MaxPixels = domain.DefaultMaxPixels
	}
	if opts.MinZoom <= 0 {
		opts.MinZoom = domain.DefaultMinZoom
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = domain.DefaultMaxZoom
	}

	return &ImageProcessor{
		rotator:     operations.NewRotator(opts.Background),
		cropper:     operations.NewCropper(opts.Background),
		watermarker: watermarker,
		encoder:     operations.NewEncoder(opts.Quality),
		opts:        opts,
		logger:      logger,
	}, nil
}

// Transform decodes src, applies spec and returns the encoded crop.
func (p *ImageProcessor) Transform(ctx context.Context, src []byte, spec domain.CropSpec) (*domain.Asset, error) {
	if err := p.Validate(spec); err != nil {
		return nil, err
	}

	img, format, err := p.Decode(src)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := p.Render(img, spec)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := p.encoder.Encode(out)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("source_format", format).
		Float64("rotation", spec.RotationDegrees).
		Int("width", out.Bounds().Dx()).
		Int("height", out.Bounds().Dy()).
		Int("size", len(data)).
		Msg("Crop rendered")

	return &domain.Asset{
		Name:      domain.CroppedAssetName,
		MediaType: domain.MediaTypeJPEG,
		Data:      data,
	}, nil
}

// Render runs the pixel pipeline without encoding.
func (p *ImageProcessor) Render(img image.Image, spec domain.CropSpec) (*image.RGBA, error) {
	canvas := p.rotator.Rotate(img, spec.RotationDegrees, spec.FlipHorizontal, spec.FlipVertical)

	out, err := p.cropper.Crop(canvas, spec.Crop.Rectangle())
	if err != nil {
		if errors.Is(err, operations.ErrEmptyCrop) {
			return nil, domain.NewValidationError("crop", err.Error())
		}
		return nil, err
	}

	if spec.Watermark != nil {
		if err := p.watermarker.Apply(out, *spec.Watermark); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Decode decodes a supported raster after checking its declared size.
func (p *ImageProcessor) Decode(src []byte) (image.Image, string, error) {
	if _, _, err := p.Inspect(src); err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return img, format, nil
}

// Inspect reads only the image header.
func (p *ImageProcessor) Inspect(src []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", fmt.Errorf("%w: empty image", domain.ErrDecode)
	}
	if cfg.Width*cfg.Height > p.opts.MaxPixels {
		return image.Config{}, "", domain.NewValidationError("file",
			fmt.Sprintf("image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, p.opts.MaxPixels))
	}
	return cfg, format, nil
}

func (p *ImageProcessor) Validate(spec domain.CropSpec) error {
	var errs []domain.FieldError

	if math.IsNaN(spec.RotationDegrees) || math.IsInf(spec.RotationDegrees, 0) {
		errs = append(errs, domain.FieldError{Field: "rotation", Message: "must be a finite number"})
	}

	if spec.Crop.Width <= 0 || spec.Crop.Height <= 0 {
		errs = append(errs, domain.FieldError{Field: "crop", Message: "width and height must be positive"})
	} else if spec.Crop.Width*spec.Crop.Height > p.opts.MaxPixels {
		errs = append(errs, domain.FieldError{
			Field:   "crop",
			Message: fmt.Sprintf("crop %dx%d exceeds %d pixels", spec.Crop.Width, spec.Crop.Height, p.opts.MaxPixels),
		})
	} else if !spec.Aspect.Free() {
		got := float64(spec.Crop.Width) / float64(spec.Crop.Height)
		if math.Abs(got-spec.Aspect.Ratio())/spec.Aspect.Ratio() > aspectTolerance {
			errs = append(errs, domain.FieldError{
				Field:   "aspect",
				Message: fmt.Sprintf("crop %dx%d does not match %d:%d", spec.Crop.Width, spec.Crop.Height, spec.Aspect.Width, spec.Aspect.Height),
			})
		}
	}

	if spec.Zoom != 0 && (spec.Zoom < p.opts.MinZoom || spec.Zoom > p.opts.MaxZoom) {
		errs = append(errs, domain.FieldError{
			Field:   "zoom",
			Message: fmt.Sprintf("must be between %g and %g", p.opts.MinZoom, p.opts.MaxZoom),
		})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// MediaType maps a decoder name to its MIME type.
func MediaType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
