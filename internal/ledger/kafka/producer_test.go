package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer([]string{"localhost:9092"}, "erasure-events")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "erasure-events", p.topic)
	assert.NoError(t, p.Close())
}

func TestErasureRecord_WireShape(t *testing.T) {
	payload, err := json.Marshal(erasureRecord{
		EventID:   "7e6a9a1e-0000-0000-0000-000000000000",
		SubjectID: "s1",
		ErasedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "7e6a9a1e-0000-0000-0000-000000000000", decoded["event_id"])
	assert.Equal(t, "s1", decoded["subject_id"])
	assert.Equal(t, "2025-03-01T12:00:00Z", decoded["erased_at"])
}
