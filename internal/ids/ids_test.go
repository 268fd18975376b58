package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MonotonicWithinSameInstant(t *testing.T) {
	now := time.Now()
	prev := New(now)
	for i := 0; i < 100; i++ {
		next := New(now)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNew_EncodesTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := ulid.Parse(New(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
}
