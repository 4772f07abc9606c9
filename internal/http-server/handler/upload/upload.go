package upload

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wishboard/internal/domain"
	"wishboard/internal/http-server/handler/dto"
	"wishboard/internal/http-server/handler/respond"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	maxMemory = 32 << 20
	// form fields and multipart headers on top of the file itself
	formOverhead = 1 << 20
)

type UploadHandler struct {
	usecase  uploadUsecase
	validate *validator.Validate
	maxSize  int64
	logger   *zlog.Zerolog
}

func NewUploadHandler(usecase uploadUsecase, maxSize int64, logger *zlog.Zerolog) *UploadHandler {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxUploadSize
	}
	return &UploadHandler{
		usecase:  usecase,
		validate: respond.NewValidator(),
		maxSize:  maxSize,
		logger:   logger,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.DomainError(w, h.logger, err, "upload file")
			return
		}
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		respond.Error(w, h.logger, http.StatusBadRequest, "Invalid request format", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("File not found in request")
		respond.DomainError(w, h.logger, domain.NewValidationError("file", "is required"), "upload file")
		return
	}
	defer file.Close()

	spec, err := h.parseCropSpec(r.MultipartForm.Value)
	if err != nil {
		respond.DomainError(w, h.logger, err, "upload file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read file")
		respond.Error(w, h.logger, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	ref, err := h.usecase.Upload(ctx, data, header.Filename, spec)
	if err != nil {
		respond.DomainError(w, h.logger, err, "upload file")
		return
	}

	respond.JSON(w, h.logger, http.StatusCreated, dto.UploadResponse{URL: ref})
}

// parseCropSpec returns nil when no crop rectangle was sent.
func (h *UploadHandler) parseCropSpec(form url.Values) (*domain.CropSpec, error) {
	p := formParser{values: form}

	f := dto.UploadForm{
		Rotation:          p.number("rotation"),
		FlipHorizontal:    p.flag("flip_horizontal"),
		FlipVertical:      p.flag("flip_vertical"),
		Zoom:              p.number("zoom"),
		Aspect:            strings.TrimSpace(form.Get("aspect")),
		CropX:             p.pixels("crop_x"),
		CropY:             p.pixels("crop_y"),
		CropWidth:         p.pixels("crop_width"),
		CropHeight:        p.pixels("crop_height"),
		WatermarkText:     strings.TrimSpace(form.Get("watermark_text")),
		WatermarkPosition: strings.TrimSpace(form.Get("watermark_position")),
	}

	aspect, err := parseAspect(f.Aspect)
	if err != nil {
		p.fail("aspect", err.Error())
	}

	if len(p.errs) > 0 {
		return nil, domain.NewValidationErrors(p.errs)
	}
	if err := respond.Struct(h.validate, f); err != nil {
		return nil, err
	}

	if !f.HasCrop() {
		return nil, nil
	}

	spec := &domain.CropSpec{
		RotationDegrees: f.Rotation,
		FlipHorizontal:  f.FlipHorizontal,
		FlipVertical:    f.FlipVertical,
		Zoom:            f.Zoom,
		Aspect:          aspect,
		Crop: domain.CropRect{
			X:      f.CropX,
			Y:      f.CropY,
			Width:  f.CropWidth,
			Height: f.CropHeight,
		},
	}

	if f.WatermarkText != "" {
		position := domain.WatermarkPosition(f.WatermarkPosition)
		if position == "" {
			position = domain.WatermarkBottomRight
		}
		spec.Watermark = &domain.WatermarkOptions{
			Text:     f.WatermarkText,
			Position: position,
			Opacity:  domain.DefaultWatermarkOpacity,
			FontSize: domain.DefaultWatermarkSize,
		}
	}

	return spec, nil
}

// parseAspect accepts a preset name or "W:H".
func parseAspect(s string) (domain.AspectRatio, error) {
	if s == "" {
		return domain.AspectRatio{}, nil
	}
	if preset, ok := domain.AspectPresets[strings.ToLower(s)]; ok {
		return preset, nil
	}

	w, hgt, ok := strings.Cut(s, ":")
	if !ok {
		return domain.AspectRatio{}, fmt.Errorf("must be free or W:H")
	}
	width, err1 := strconv.Atoi(strings.TrimSpace(w))
	height, err2 := strconv.Atoi(strings.TrimSpace(hgt))
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return domain.AspectRatio{}, fmt.Errorf("must be free or W:H with positive integers")
	}
	return domain.AspectRatio{Width: width, Height: height}, nil
}

type formParser struct {
	values url.Values
	errs   []domain.FieldError
}

func (p *formParser) fail(field, message string) {
	p.errs = append(p.errs, domain.FieldError{Field: field, Message: message})
}

func (p *formParser) raw(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

func (p *formParser) number(key string) float64 {
	s := p.raw(key)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(key, "must be a number")
	}
	return v
}

func (p *formParser) pixels(key string) int {
	s := p.raw(key)
	if s == "" {
		return 0
	}
	// browsers send fractional pixel offsets from the crop widget
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(key, "must be a number")
		return 0
	}
	return int(math.Round(v))
}

func (p *formParser) flag(key string) bool {
	s := p.raw(key)
	if s == "" {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(key, "must be true or false")
	}
	return v
}
