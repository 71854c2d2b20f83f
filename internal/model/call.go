package model

// Direction is a call direction as reported by Synthesis.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// RawCall is a single CDR as returned by the Synthesis /calls endpoint.
type RawCall struct {
	Direction Direction `json:"direction"`
	CLID      string    `json:"clid"`
	DNIS      string    `json:"dnis"`
	TimeUTC   string    `json:"time_utc"`
	TimeLocal string    `json:"time_local,omitempty"`
	Length    int       `json:"length"`
	GUID      string    `json:"guid"`
}

// NormalizedCall is a direction-agnostic view of a RawCall. FromNumber is
// always the call originator, whichever direction the provider reported.
type NormalizedCall struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	Timestamp  string `json:"timestamp"`
	LocalTime  string `json:"local_time,omitempty"`
	Duration   int    `json:"duration"`
	CallID     string `json:"call_id"`

	// Legs are attached by the orchestrator after party resolution.
	From CallLeg `json:"from_party,omitempty"`
	To   CallLeg `json:"to_party,omitempty"`
}

// PartyKind distinguishes the two Capsule party shapes.
type PartyKind string

const (
	PartyKindPerson       PartyKind = "person"
	PartyKindOrganisation PartyKind = "organisation"
)

// Party is a resolved CRM contact.
type Party struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Kind        PartyKind `json:"kind"`
}

// CallLeg is one resolution side of a call. Party is nil when the number
// matched nothing in the CRM.
type CallLeg struct {
	Party *Party `json:"party,omitempty"`
}

// Resolved reports whether this leg matched a CRM party.
func (l CallLeg) Resolved() bool {
	return l.Party != nil
}

// NoteRecord is a history note to be appended to a Capsule party. The
// (PartyID, EntryDate) pair is the deduplication key: EntryDate must carry
// the call's UTC timestamp string verbatim so repeated runs compare equal.
type NoteRecord struct {
	PartyID   string `json:"party_id"`
	EntryDate string `json:"entry_date"`
	Text      string `json:"text"`
}
