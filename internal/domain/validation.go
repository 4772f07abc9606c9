package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateCreate checks a new wish and normalises its tags in place.
func ValidateCreate(in *CreateWishInput) error {
	var errs []FieldError

	errs = appendTitleErrors(errs, in.Title)
	errs = appendDescriptionErrors(errs, in.Description)
	errs = appendLinkErrors(errs, in.Link)
	errs = appendStatusErrors(errs, in.Status)

	tags, tagErrs := normalizeTags(in.Tags)
	errs = append(errs, tagErrs...)

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Tags = tags
	return nil
}

// ValidateUpdate checks only the fields that are present.
func ValidateUpdate(in *UpdateWishInput) error {
	var errs []FieldError

	if in.Title != nil {
		errs = appendTitleErrors(errs, *in.Title)
	}
	if in.Description != nil {
		errs = appendDescriptionErrors(errs, *in.Description)
	}
	if in.Link != nil {
		errs = appendLinkErrors(errs, *in.Link)
	}
	if in.Status != nil {
		errs = appendStatusErrors(errs, *in.Status)
	}

	var tags []string
	if in.Tags != nil {
		var tagErrs []FieldError
		tags, tagErrs = normalizeTags(*in.Tags)
		errs = append(errs, tagErrs...)
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Tags != nil {
		in.Tags = &tags
	}
	return nil
}

func appendTitleErrors(errs []FieldError, title string) []FieldError {
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		return append(errs, FieldError{Field: "title", Message: "is required"})
	case utf8.RuneCountInString(trimmed) > MaxTitleLength:
		return append(errs, FieldError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)})
	}
	return errs
}

func appendDescriptionErrors(errs []FieldError, description string) []FieldError {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return append(errs, FieldError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)})
	}
	return errs
}

func appendLinkErrors(errs []FieldError, link string) []FieldError {
	if len(link) > MaxLinkLength {
		return append(errs, FieldError{Field: "link", Message: fmt.Sprintf("must be at most %d bytes", MaxLinkLength)})
	}
	return errs
}

func appendStatusErrors(errs []FieldError, status WishStatus) []FieldError {
	if !status.Valid() {
		return append(errs, FieldError{Field: "status", Message: fmt.Sprintf("must be %q or %q", StatusCompleted, StatusNotCompleted)})
	}
	return errs
}

func normalizeTags(raw []string) ([]string, []FieldError) {
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > MaxTagLength {
			return nil, []FieldError{{Field: "tags", Message: fmt.Sprintf("each tag must be at most %d characters", MaxTagLength)}}
		}
		tags = append(tags, t)
	}
	if len(tags) > MaxTags {
		return nil, []FieldError{{Field: "tags", Message: fmt.Sprintf("at most %d tags allowed", MaxTags)}}
	}
	return tags, nil
}
