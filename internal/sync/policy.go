package sync

import (
	"github.com/rotisserie/eris"

	"github.com/netfuse/capsule-sync/internal/model"
)

// NoteTarget is one note the match policy wants written: a resolved party
// and the direction its note is tagged with.
type NoteTarget struct {
	Party     *model.Party
	Direction model.Direction
}

// MatchPolicy decides, for a call with both legs resolved (or not), which
// parties get a note. Two variants shipped historically; the policy is a
// value so the choice is configuration, not control flow.
type MatchPolicy func(call model.NormalizedCall) []NoteTarget

// StrictMatch writes notes only when both legs resolve to two distinct
// parties: one outbound note for the caller, one inbound note for the
// callee. Self-calls and single-sided matches write nothing. This is the
// shipped default.
func StrictMatch(call model.NormalizedCall) []NoteTarget {
	from, to := call.From.Party, call.To.Party
	if from == nil || to == nil || from.ID == to.ID {
		return nil
	}
	return []NoteTarget{
		{Party: from, Direction: model.DirectionOutbound},
		{Party: to, Direction: model.DirectionInbound},
	}
}

// LenientMatch writes a note for every leg that resolved. When both legs
// resolve to the same party only the outbound note is kept.
func LenientMatch(call model.NormalizedCall) []NoteTarget {
	from, to := call.From.Party, call.To.Party

	var targets []NoteTarget
	if from != nil {
		targets = append(targets, NoteTarget{Party: from, Direction: model.DirectionOutbound})
	}
	if to != nil && (from == nil || from.ID != to.ID) {
		targets = append(targets, NoteTarget{Party: to, Direction: model.DirectionInbound})
	}
	return targets
}

// ParseMatchPolicy maps a config value to a policy.
func ParseMatchPolicy(name string) (MatchPolicy, error) {
	switch name {
	case "", "strict":
		return StrictMatch, nil
	case "lenient":
		return LenientMatch, nil
	default:
		return nil, eris.Errorf("unknown match policy %q (want strict or lenient)", name)
	}
}
