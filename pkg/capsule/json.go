package capsule

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/netfuse/capsule-sync/internal/apierr"
	"github.com/netfuse/capsule-sync/internal/model"
)

// The Capsule v1 API is XML-derived JSON: any field that logically holds a
// list serializes as a bare object when there is exactly one element and as
// an array otherwise, and is absent entirely when empty. Every decoder here
// goes through objectOrArray so callers only ever see a slice — the
// none/single/many distinction survives as len 0, 1 or n.

// Person is the person shape inside a party search result.
type Person struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
}

// Organisation is the organisation shape inside a party search result.
type Organisation struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// PartyMatches holds the decoded result of a party search: zero, one or
// many people and organisations.
type PartyMatches struct {
	People        []Person
	Organisations []Organisation
}

// Empty reports whether the search matched nothing.
func (m PartyMatches) Empty() bool {
	return len(m.People) == 0 && len(m.Organisations) == 0
}

// PhoneContact is a phone entry in a party's contact block.
type PhoneContact struct {
	Type        string `json:"type"`
	PhoneNumber string `json:"phoneNumber"`
}

// Contacts is a party's contact block.
type Contacts struct {
	Phones []PhoneContact
}

// UnmarshalJSON tolerates the phone field being absent, an object or an
// array.
func (c *Contacts) UnmarshalJSON(b []byte) error {
	var raw struct {
		Phone json.RawMessage `json:"phone"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	phones, err := objectOrArray[PhoneContact](raw.Phone)
	if err != nil {
		return err
	}
	c.Phones = phones
	return nil
}

// PersonDetail is a fully fetched person, including contacts.
type PersonDetail struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Contacts  Contacts    `json:"contacts"`
}

// OrganisationDetail is a fully fetched organisation, including contacts.
type OrganisationDetail struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Contacts Contacts    `json:"contacts"`
}

// PartyDetail is the result of fetching one party by id: exactly one of
// Person or Organisation is set.
type PartyDetail struct {
	Person       *PersonDetail       `json:"person"`
	Organisation *OrganisationDetail `json:"organisation"`
}

// PhoneNumbers returns the raw phone numbers attached to the party.
func (d *PartyDetail) PhoneNumbers() []string {
	var contacts Contacts
	switch {
	case d.Person != nil:
		contacts = d.Person.Contacts
	case d.Organisation != nil:
		contacts = d.Organisation.Contacts
	}

	numbers := make([]string, 0, len(contacts.Phones))
	for _, p := range contacts.Phones {
		if p.PhoneNumber != "" {
			numbers = append(numbers, p.PhoneNumber)
		}
	}
	return numbers
}

// Party converts the detail into the pipeline's party shape.
func (d *PartyDetail) Party() *model.Party {
	switch {
	case d.Person != nil:
		return &model.Party{
			ID:          d.Person.ID.String(),
			DisplayName: d.Person.FirstName + " " + d.Person.LastName,
			Kind:        model.PartyKindPerson,
		}
	case d.Organisation != nil:
		return &model.Party{
			ID:          d.Organisation.ID.String(),
			DisplayName: d.Organisation.Name,
			Kind:        model.PartyKindOrganisation,
		}
	}
	return nil
}

// objectOrArray decodes a field that Capsule serializes as a bare object
// for one element and an array for several. Absent and null both decode to
// an empty slice.
func objectOrArray[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, &apierr.DecodeError{Err: err}
		}
		return many, nil
	}

	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, &apierr.DecodeError{Err: err}
	}
	return []T{one}, nil
}

func decodePartyMatches(body []byte) (PartyMatches, error) {
	var resp struct {
		Parties struct {
			Person       json.RawMessage `json:"person"`
			Organisation json.RawMessage `json:"organisation"`
		} `json:"parties"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return PartyMatches{}, &apierr.DecodeError{Err: err}
	}

	people, err := objectOrArray[Person](resp.Parties.Person)
	if err != nil {
		return PartyMatches{}, eris.Wrap(err, "decode person matches")
	}
	orgs, err := objectOrArray[Organisation](resp.Parties.Organisation)
	if err != nil {
		return PartyMatches{}, eris.Wrap(err, "decode organisation matches")
	}

	return PartyMatches{People: people, Organisations: orgs}, nil
}

func decodePartyDetail(body []byte) (*PartyDetail, error) {
	var detail PartyDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, &apierr.DecodeError{Err: err}
	}
	if detail.Person == nil && detail.Organisation == nil {
		return nil, &apierr.DecodeError{Err: eris.New("party response has neither person nor organisation")}
	}
	return &detail, nil
}

func decodeUsers(body []byte) ([]User, error) {
	var resp struct {
		Users struct {
			User json.RawMessage `json:"user"`
		} `json:"users"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apierr.DecodeError{Err: err}
	}
	return objectOrArray[User](resp.Users.User)
}

func decodeHistory(body []byte) ([]HistoryEntry, error) {
	var resp struct {
		History struct {
			HistoryItem json.RawMessage `json:"historyItem"`
		} `json:"history"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apierr.DecodeError{Err: err}
	}
	return objectOrArray[HistoryEntry](resp.History.HistoryItem)
}
