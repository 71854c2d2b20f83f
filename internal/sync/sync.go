// Package sync drives one batch run of the Synthesis-to-Capsule call sync:
// fetch CDRs, resolve each call leg to a CRM party, deduplicate against the
// party's history and write the missing notes.
package sync

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/netfuse/capsule-sync/internal/model"
	"github.com/netfuse/capsule-sync/internal/phone"
	"github.com/netfuse/capsule-sync/pkg/capsule"
	"github.com/netfuse/capsule-sync/pkg/synthesis"
)

// Syncer owns one run of the pipeline. All remote calls go through the two
// injected clients; there is no shared transport state.
type Syncer struct {
	synth  synthesis.Client
	crm    capsule.Client
	norm   phone.Normalizer
	policy MatchPolicy
	userID string
	log    *zap.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithExplicitUser pins the run to a specific Capsule user id instead of
// auto-detecting the token's owner.
func WithExplicitUser(userID string) Option {
	return func(s *Syncer) {
		s.userID = userID
	}
}

// WithLogger overrides the global logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Syncer) {
		s.log = log
	}
}

// New builds a Syncer over the two platform clients.
func New(synth synthesis.Client, crm capsule.Client, norm phone.Normalizer, policy MatchPolicy, opts ...Option) *Syncer {
	s := &Syncer{
		synth:  synth,
		crm:    crm,
		norm:   norm,
		policy: policy,
		log:    zap.L(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes one complete sync pass. Authentication failures on either
// platform abort the run; every other remote failure is absorbed as absence
// of data and tallied in the report. Calls are processed strictly in
// sequence.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := s.log.With(zap.String("run_id", report.RunID))

	if err := s.synth.Login(ctx); err != nil {
		return report, eris.Wrap(err, "sync: synthesis login")
	}
	if err := s.crm.Login(ctx); err != nil {
		return report, eris.Wrap(err, "sync: capsule login")
	}

	numbers, err := s.userNumbers(ctx)
	if err != nil {
		return report, eris.Wrap(err, "sync: resolve user numbers")
	}
	if len(numbers) == 0 {
		log.Info("user party has no phone contacts, nothing to sync")
		return report, nil
	}

	raw := s.fetchCalls(ctx, log, numbers, report)
	report.CallsFetched = len(raw)

	calls := FormatCalls(raw)
	report.CallsFormatted = len(calls)

	for _, call := range calls {
		s.processCall(ctx, log, call, report)
	}

	log.Info("sync run complete",
		zap.Int("calls_fetched", report.CallsFetched),
		zap.Int("notes_written", report.NotesWritten),
		zap.Int("duplicates_suppressed", report.DuplicatesSuppressed),
		zap.Int("write_failures", report.WriteFailures),
	)
	return report, nil
}

// userNumbers finds the party whose calls this run syncs and returns its
// phone contact numbers. With an explicit user id the user list is searched
// for it; otherwise the token's owner (first listed user) is taken.
func (s *Syncer) userNumbers(ctx context.Context) ([]string, error) {
	users, err := s.crm.Users(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, eris.New("capsule account has no users")
	}

	var user *capsule.User
	if s.userID == "" {
		user = &users[0]
	} else {
		for i := range users {
			if users[i].ID.String() == s.userID {
				user = &users[i]
				break
			}
		}
		if user == nil {
			return nil, eris.Errorf("capsule user %s not found", s.userID)
		}
	}

	party, err := s.crm.FindPartyByID(ctx, user.PartyID.String())
	if err != nil {
		return nil, err
	}
	return party.PhoneNumbers(), nil
}

// fetchCalls pulls the CDR window for each of the user's numbers. A failed
// fetch for one number is logged and skipped; the run continues with the
// rest.
func (s *Syncer) fetchCalls(ctx context.Context, log *zap.Logger, numbers []string, report *Report) []model.RawCall {
	var raw []model.RawCall
	for _, number := range numbers {
		e164, err := s.norm.Normalize(number, true)
		if err != nil {
			log.Warn("skipping unusable contact number", zap.String("number", number), zap.Error(err))
			continue
		}

		calls, err := s.synth.GetCalls(ctx, e164)
		if err != nil {
			log.Warn("call fetch failed for number", zap.String("number", e164), zap.Error(err))
			continue
		}
		report.NumbersSynced++
		raw = append(raw, calls...)
	}
	return raw
}

// processCall runs the per-call state machine: short-circuit no-answer
// calls before any resolver traffic, resolve both legs, apply the match
// policy, then dedup-check and write each admitted note.
func (s *Syncer) processCall(ctx context.Context, log *zap.Logger, call model.NormalizedCall, report *Report) {
	log = log.With(zap.String("call_id", call.CallID))

	if call.Duration <= 0 {
		report.SkippedNoAnswer++
		return
	}

	call.From = s.resolveLeg(ctx, log, call.FromNumber)
	call.To = s.resolveLeg(ctx, log, call.ToNumber)

	targets := s.policy(call)
	if len(targets) == 0 {
		if call.From.Resolved() && call.To.Resolved() && call.From.Party.ID == call.To.Party.ID {
			report.SkippedSelfCall++
		} else {
			report.SkippedUnmatched++
		}
		return
	}

	for _, target := range targets {
		if s.hasExistingNote(ctx, log, target.Party.ID, call.Timestamp) {
			report.DuplicatesSuppressed++
			continue
		}

		note, err := ComposeNote(target.Direction, call)
		if err != nil {
			log.Warn("note composition failed", zap.Error(err))
			continue
		}

		if err := s.crm.AddNote(ctx, note.PartyID, capsule.NotePayload{
			Note:      note.Text,
			EntryDate: note.EntryDate,
		}); err != nil {
			report.WriteFailures++
			log.Warn("note write failed", zap.String("party_id", note.PartyID), zap.Error(err))
			continue
		}
		report.NotesWritten++
	}
}
