package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// timestampLayouts are the entry-date stringifications seen across the two
// platforms. All are parsed timezone-aware; bare layouts assume UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses an entry date with second precision.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// hasExistingNote reports whether the party already has a history entry at
// exactly the given timestamp. It fails open: a failed history fetch, an
// empty history or an unparseable input all report false, preferring a
// possible duplicate note over a missing one. Equality is second-level
// after timezone-aware parsing; there is no tolerance window, so platforms
// that stringify the same instant differently produce duplicates.
func (s *Syncer) hasExistingNote(ctx context.Context, log *zap.Logger, partyID, timestamp string) bool {
	want, ok := parseTimestamp(timestamp)
	if !ok {
		log.Warn("unparseable call timestamp, dedup check skipped",
			zap.String("party_id", partyID), zap.String("timestamp", timestamp))
		return false
	}

	entries, err := s.crm.GetHistory(ctx, partyID)
	if err != nil {
		log.Warn("history fetch failed, treating as no existing note",
			zap.String("party_id", partyID), zap.Error(err))
		return false
	}

	for _, entry := range entries {
		got, ok := parseTimestamp(entry.EntryDate)
		if !ok {
			continue
		}
		if got.Unix() == want.Unix() {
			return true
		}
	}
	return false
}
