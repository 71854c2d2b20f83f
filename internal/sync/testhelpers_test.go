package sync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/netfuse/capsule-sync/internal/model"
	"github.com/netfuse/capsule-sync/pkg/capsule"
	"github.com/netfuse/capsule-sync/pkg/synthesis"
)

var errNotFound = errors.New("party not found")

func num(s string) json.Number {
	return json.Number(s)
}

// fakeSynth is an in-memory synthesis.Client.
type fakeSynth struct {
	loginErr error
	getErr   error
	calls    map[string][]model.RawCall // keyed by E.164 filter
	fetches  []string
}

var _ synthesis.Client = (*fakeSynth)(nil)

func (f *fakeSynth) Login(context.Context) error {
	return f.loginErr
}

func (f *fakeSynth) GetCalls(_ context.Context, number string) ([]model.RawCall, error) {
	f.fetches = append(f.fetches, number)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.calls[number], nil
}

// writtenNote records one AddNote call against the fake CRM.
type writtenNote struct {
	partyID string
	payload capsule.NotePayload
}

// fakeCRM is an in-memory capsule.Client.
type fakeCRM struct {
	loginErr   error
	users      []capsule.User
	usersErr   error
	parties    map[string]*capsule.PartyDetail    // keyed by party id
	searches   map[string]capsule.PartyMatches    // keyed by query
	searchErr  error
	history    map[string][]capsule.HistoryEntry  // keyed by party id
	historyErr error
	addNoteErr error

	searchCalls  []string
	historyCalls []string
	notes        []writtenNote
}

var _ capsule.Client = (*fakeCRM)(nil)

func (f *fakeCRM) Login(context.Context) error {
	return f.loginErr
}

func (f *fakeCRM) Users(context.Context) ([]capsule.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

func (f *fakeCRM) FindParty(_ context.Context, query string) (capsule.PartyMatches, error) {
	f.searchCalls = append(f.searchCalls, query)
	if f.searchErr != nil {
		return capsule.PartyMatches{}, f.searchErr
	}
	return f.searches[query], nil
}

func (f *fakeCRM) FindPartyByID(_ context.Context, id string) (*capsule.PartyDetail, error) {
	detail, ok := f.parties[id]
	if !ok {
		return nil, errNotFound
	}
	return detail, nil
}

func (f *fakeCRM) GetHistory(_ context.Context, partyID string) ([]capsule.HistoryEntry, error) {
	f.historyCalls = append(f.historyCalls, partyID)
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history[partyID], nil
}

func (f *fakeCRM) AddNote(_ context.Context, partyID string, note capsule.NotePayload) error {
	if f.addNoteErr != nil {
		return f.addNoteErr
	}
	f.notes = append(f.notes, writtenNote{partyID: partyID, payload: note})
	return nil
}

// personMatch builds a single-person search result.
func personMatch(id, first, last string) capsule.PartyMatches {
	return capsule.PartyMatches{
		People: []capsule.Person{{ID: num(id), FirstName: first, LastName: last}},
	}
}

// orgMatch builds a single-organisation search result.
func orgMatch(id, name string) capsule.PartyMatches {
	return capsule.PartyMatches{
		Organisations: []capsule.Organisation{{ID: num(id), Name: name}},
	}
}

func party(id, name string) *model.Party {
	return &model.Party{ID: id, DisplayName: name, Kind: model.PartyKindPerson}
}
