package broker

import (
	"testing"
	"time"

	"wishboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCodec(t *testing.T) {
	event := domain.Event{
		Type:       domain.EventLikeToggled,
		WishID:     "w1",
		UserID:     "u1",
		Liked:      true,
		TotalLikes: 3,
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := EncodeEvent(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"like.toggled"`)

	got, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event, got)
}

func TestDecodeEvent_Rejects(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"wish.renamed","wish_id":"w1"}`))
	require.ErrorIs(t, err, ErrUnknownEvent)

	_, err = DecodeEvent([]byte(`{"type":"wish.deleted"}`))
	require.Error(t, err)

	_, err = DecodeEvent([]byte(`not json`))
	require.Error(t, err)
}
