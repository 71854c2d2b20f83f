package sync

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/netfuse/capsule-sync/internal/model"
)

// ComposeNote renders the history note for one side of a call. Outbound
// notes belong to the from-party, inbound notes to the to-party; the owning
// leg must be resolved. EntryDate carries the call's UTC timestamp string
// verbatim so the dedup equality check stays stable across runs.
func ComposeNote(direction model.Direction, call model.NormalizedCall) (model.NoteRecord, error) {
	var owner *model.Party
	var text string

	fromName := displayName(call.From.Party)
	toName := displayName(call.To.Party)
	duration := formatDuration(call.Duration)

	switch direction {
	case model.DirectionOutbound:
		owner = call.From.Party
		text = fmt.Sprintf("%s (%s) called %s (%s). Call duration: %s",
			fromName, call.FromNumber, toName, call.ToNumber, duration)
	case model.DirectionInbound:
		owner = call.To.Party
		text = fmt.Sprintf("%s (%s) was called by %s (%s). Call duration: %s",
			toName, call.ToNumber, fromName, call.FromNumber, duration)
	default:
		return model.NoteRecord{}, eris.Errorf("compose note: invalid direction %q", direction)
	}

	if owner == nil {
		return model.NoteRecord{}, eris.Errorf("compose note: %s leg is unresolved", direction)
	}

	if clock := localClock(call.LocalTime); clock != "" {
		text = clock + " - " + text
	}

	return model.NoteRecord{
		PartyID:   owner.ID,
		EntryDate: call.Timestamp,
		Text:      text,
	}, nil
}

// displayName tolerates an unresolved leg: the note then shows only the
// bare number, as the original integration did.
func displayName(p *model.Party) string {
	if p == nil {
		return ""
	}
	return p.DisplayName
}

// formatDuration renders seconds as "Nm Ns" with integer division, e.g.
// 125 -> "2m5s", 59 -> "0m59s".
func formatDuration(seconds int) string {
	return fmt.Sprintf("%dm%ds", seconds/60, seconds%60)
}

// localClock extracts the time of day from the call's local timestamp.
// Empty or unparseable local times yield no prefix.
func localClock(localTime string) string {
	if localTime == "" {
		return ""
	}
	t, ok := parseTimestamp(localTime)
	if !ok {
		return ""
	}
	return t.Format("15:04")
}
