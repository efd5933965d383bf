package finbert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/pkg/errors"
)

func TestNewEncoder_Validates(t *testing.T) {
	_, err := NewEncoder(1, 128)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = NewEncoder(10000, 0)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestEncoder_Encode(t *testing.T) {
	enc, err := NewEncoder(10000, 8)
	require.NoError(t, err)

	ids := enc.Encode("Revenue growth beat estimates")
	require.Len(t, ids, 8)

	// Four tokens, then padding
	for i := 0; i < 4; i++ {
		assert.NotEqual(t, PadID, ids[i])
		assert.Less(t, ids[i], int64(10000))
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, PadID, ids[i])
	}

	assert.Equal(t, ids, enc.Encode("Revenue growth beat estimates"))
}

func TestEncoder_SynonymsShareIDs(t *testing.T) {
	enc, err := NewEncoder(10000, 4)
	require.NoError(t, err)

	// sales and revenue canonicalize to the same marker
	assert.Equal(t, enc.Encode("sales"), enc.Encode("revenue"))
	// inflections share a stem
	assert.Equal(t, enc.Encode("gains"), enc.Encode("gain"))
}

func TestEncoder_TruncatesLongText(t *testing.T) {
	enc, err := NewEncoder(50, 16)
	require.NoError(t, err)

	ids := enc.Encode(strings.Repeat("market ", 1000))
	require.Len(t, ids, 16)
	for _, id := range ids {
		assert.NotEqual(t, PadID, id)
		assert.Less(t, id, int64(50))
	}

	assert.Equal(t, make([]int64, 16), enc.Encode(""))
}
