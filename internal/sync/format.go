package sync

import "github.com/netfuse/capsule-sync/internal/model"

// FormatCalls maps raw Synthesis CDRs into the direction-agnostic shape the
// rest of the pipeline works with. Both directions map clid to the
// originator and dnis to the destination; records with any other direction
// value (missed, voicemail, internal transfers) are dropped.
func FormatCalls(calls []model.RawCall) []model.NormalizedCall {
	formatted := make([]model.NormalizedCall, 0, len(calls))
	for _, call := range calls {
		switch call.Direction {
		case model.DirectionInbound, model.DirectionOutbound:
			formatted = append(formatted, model.NormalizedCall{
				FromNumber: call.CLID,
				ToNumber:   call.DNIS,
				Timestamp:  call.TimeUTC,
				LocalTime:  call.TimeLocal,
				Duration:   call.Length,
				CallID:     call.GUID,
			})
		}
	}
	return formatted
}
