package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netfuse/capsule-sync/internal/model"
)

func TestFormatCalls(t *testing.T) {
	t.Parallel()

	raw := []model.RawCall{
		{
			Direction: model.DirectionInbound,
			CLID:      "07911123456",
			DNIS:      "02012345",
			TimeUTC:   "2024-01-01T10:00:00Z",
			TimeLocal: "2024-01-01 10:00:00",
			Length:    125,
			GUID:      "call-1",
		},
		{
			Direction: model.DirectionOutbound,
			CLID:      "02012345",
			DNIS:      "07911123456",
			TimeUTC:   "2024-01-01T11:00:00Z",
			Length:    59,
			GUID:      "call-2",
		},
		{
			Direction: "missed",
			CLID:      "07911123456",
			DNIS:      "02012345",
			TimeUTC:   "2024-01-01T12:00:00Z",
			GUID:      "call-3",
		},
	}

	formatted := FormatCalls(raw)

	// The missed record is dropped silently.
	require.Len(t, formatted, 2)

	assert.Equal(t, model.NormalizedCall{
		FromNumber: "07911123456",
		ToNumber:   "02012345",
		Timestamp:  "2024-01-01T10:00:00Z",
		LocalTime:  "2024-01-01 10:00:00",
		Duration:   125,
		CallID:     "call-1",
	}, formatted[0])

	// Both directions populate the same fields from the same sources.
	assert.Equal(t, "02012345", formatted[1].FromNumber)
	assert.Equal(t, "07911123456", formatted[1].ToNumber)
	assert.Equal(t, 59, formatted[1].Duration)
	assert.Equal(t, "call-2", formatted[1].CallID)
}

func TestFormatCallsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatCalls(nil))
	assert.Empty(t, FormatCalls([]model.RawCall{{Direction: "voicemail"}}))
}
