package sync

// Report tallies what one sync run did. It is the only state the run keeps,
// and it dies with the process.
type Report struct {
	RunID                string
	NumbersSynced        int
	CallsFetched         int
	CallsFormatted       int
	SkippedNoAnswer      int
	SkippedUnmatched     int
	SkippedSelfCall      int
	NotesWritten         int
	DuplicatesSuppressed int
	WriteFailures        int
}
