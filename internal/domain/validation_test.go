package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     CreateWishInput
		badFields []string
	}{
		{
			name:  "valid",
			input: CreateWishInput{Title: "Trip", Description: "See the world"},
		},
		{
			name:      "empty title",
			input:     CreateWishInput{Title: "", Description: "x"},
			badFields: []string{"title"},
		},
		{
			name:      "blank title",
			input:     CreateWishInput{Title: "   "},
			badFields: []string{"title"},
		},
		{
			name:  "description at limit counts code points",
			input: CreateWishInput{Title: "t", Description: strings.Repeat("ж", MaxDescriptionLength)},
		},
		{
			name:      "description over limit",
			input:     CreateWishInput{Title: "t", Description: strings.Repeat("a", MaxDescriptionLength+1)},
			badFields: []string{"description"},
		},
		{
			name:      "unknown status",
			input:     CreateWishInput{Title: "t", Status: "done"},
			badFields: []string{"status"},
		},
		{
			name:  "completed status",
			input: CreateWishInput{Title: "t", Status: StatusCompleted},
		},
		{
			name:      "several fields at once",
			input:     CreateWishInput{Title: "", Status: "maybe"},
			badFields: []string{"title", "status"},
		},
		{
			name:      "tag too long",
			input:     CreateWishInput{Title: "t", Tags: []string{strings.Repeat("x", MaxTagLength+1)}},
			badFields: []string{"tags"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := tt.input
			err := ValidateCreate(&in)
			if len(tt.badFields) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Errors, len(tt.badFields))
			for _, f := range tt.badFields {
				assert.True(t, verr.HasField(f), "expected field %q in %v", f, verr.Errors)
			}
		})
	}
}

func TestValidateCreate_NormalisesTags(t *testing.T) {
	t.Parallel()

	in := CreateWishInput{Title: "  Trip  ", Tags: []string{" travel ", "", "sea"}}
	require.NoError(t, ValidateCreate(&in))

	assert.Equal(t, "Trip", in.Title)
	assert.Equal(t, []string{"travel", "sea"}, in.Tags)
}

func TestValidateCreate_NilTagsBecomeEmpty(t *testing.T) {
	t.Parallel()

	in := CreateWishInput{Title: "Trip"}
	require.NoError(t, ValidateCreate(&in))

	assert.NotNil(t, in.Tags)
	assert.Empty(t, in.Tags)
}

func TestValidateUpdate_OnlySuppliedFields(t *testing.T) {
	t.Parallel()

	desc := strings.Repeat("a", MaxDescriptionLength+1)
	empty := ""

	err := ValidateUpdate(&UpdateWishInput{Description: &desc})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("description"))
	assert.False(t, verr.HasField("title"))

	err = ValidateUpdate(&UpdateWishInput{Title: &empty})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("title"))

	require.NoError(t, ValidateUpdate(&UpdateWishInput{}))
}

func TestValidateUpdate_StatusCanBeCleared(t *testing.T) {
	t.Parallel()

	none := StatusNone
	require.NoError(t, ValidateUpdate(&UpdateWishInput{Status: &none}))

	bad := WishStatus("later")
	require.ErrorIs(t, ValidateUpdate(&UpdateWishInput{Status: &bad}), ErrValidation)
}
