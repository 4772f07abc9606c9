package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"wishboard/internal/domain"
	"wishboard/internal/http-server/handler/dto"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxJSONBody = 1 << 20

// NewValidator reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads a size-limited JSON body into dst and validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "is required")
		}
		return domain.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}

	return Struct(v, dst)
}

// Struct runs validator tags and converts failures into a domain validation error.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{Field: fieldName(fe), Message: message(fe)})
	}
	return domain.NewValidationErrors(fields)
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func JSON(w http.ResponseWriter, logger *zlog.Zerolog, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func Error(w http.ResponseWriter, logger *zlog.Zerolog, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil && status >= http.StatusInternalServerError {
		response.Details = err.Error()
	}

	JSON(w, logger, status, response)
}

// DomainError maps a usecase error onto an HTTP status and writes it.
func DomainError(w http.ResponseWriter, logger *zlog.Zerolog, err error, action string) {
	var (
		verr   *domain.ValidationError
		maxErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verr):
		response := dto.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Validation failed",
			Fields:  make([]dto.FieldResponse, 0, len(verr.Errors)),
		}
		for _, fe := range verr.Errors {
			response.Fields = append(response.Fields, dto.FieldResponse{Field: fe.Field, Message: fe.Message})
		}
		JSON(w, logger, http.StatusBadRequest, response)
	case errors.As(err, &maxErr):
		Error(w, logger, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), nil)
	case errors.Is(err, domain.ErrValidation):
		Error(w, logger, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		Error(w, logger, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		Error(w, logger, http.StatusForbidden, "Only the owner can change this resource", nil)
	case errors.Is(err, domain.ErrDecode):
		Error(w, logger, http.StatusUnprocessableEntity, "Unsupported or corrupt image", nil)
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		Error(w, logger, http.StatusConflict, "Conflicting request, retry", nil)
	default:
		logger.Error().Err(err).Str("action", action).Msg("Request failed")
		Error(w, logger, http.StatusInternalServerError, "Failed to "+action, err)
	}
}
