package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/netfuse/capsule-sync/internal/model"
	"github.com/netfuse/capsule-sync/pkg/capsule"
)

// SelectFirst picks one party from a search result: the first person if any
// matched, otherwise the first organisation. First-match, not best-match —
// the selection lives here so a smarter policy is a one-function change.
func SelectFirst(matches capsule.PartyMatches) *model.Party {
	if len(matches.People) > 0 {
		p := matches.People[0]
		return &model.Party{
			ID:          p.ID.String(),
			DisplayName: p.FirstName + " " + p.LastName,
			Kind:        model.PartyKindPerson,
		}
	}
	if len(matches.Organisations) > 0 {
		o := matches.Organisations[0]
		return &model.Party{
			ID:          o.ID.String(),
			DisplayName: o.Name,
			Kind:        model.PartyKindOrganisation,
		}
	}
	return nil
}

// resolveLeg looks up one side of a call by its normalized national number.
// Every failure mode — transport, decode, no match — resolves to an
// unmatched leg; only the log distinguishes them.
func (s *Syncer) resolveLeg(ctx context.Context, log *zap.Logger, rawNumber string) model.CallLeg {
	national, err := s.norm.Normalize(rawNumber, false)
	if err != nil {
		log.Warn("unusable phone number on call leg", zap.String("number", rawNumber), zap.Error(err))
		return model.CallLeg{}
	}

	matches, err := s.crm.FindParty(ctx, national)
	if err != nil {
		log.Warn("party search failed", zap.String("number", national), zap.Error(err))
		return model.CallLeg{}
	}

	return model.CallLeg{Party: SelectFirst(matches)}
}
