package mapping

import "strings"

// Confidence tiers assigned by the matcher.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// Match types attached to a suggestion.
const (
	MatchExact   = "exact"
	MatchPartial = "partial"
	MatchNone    = "no_match"
)

// Per-file statuses reported by the rename endpoint.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusPartial = "partial_success"
	StatusError   = "error"
)

// PhotoRecord describes one photo in the mapped Drive folder together with
// the matcher's suggestion for it. The photo ID is stable across renames
// within one snapshot; a reload may hand out a different ID after a
// copy-based rename.
type PhotoRecord struct {
	PhotoID            string   `json:"photo_id"`
	Filename           string   `json:"filename"`
	ThumbnailURL       string   `json:"thumbnail_url"`
	DirectLink         string   `json:"direct_link"`
	MatchedPlayer      string   `json:"matched_player"`
	Confidence         string   `json:"confidence"`
	MatchType          string   `json:"match_type"`
	MatchedVariation   string   `json:"matched_variation"`
	StudentID          string   `json:"student_id"`
	AlternativeMatches []string `json:"alternative_matches"`
}

// RosterPlayer is the canonical identity of a player available for
// assignment. FullName is the value the diff engine and exporter work with.
type RosterPlayer struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StudentID string `json:"student_id"`
}

// Stats summarizes one snapshot.
type Stats struct {
	TotalPhotos             int `json:"total_photos"`
	TotalPlayers            int `json:"total_players"`
	HighConfidenceMatches   int `json:"high_confidence_matches"`
	MediumConfidenceMatches int `json:"medium_confidence_matches"`
}

// Snapshot is the result of one canonical fetch. Other components treat it
// as immutable for the duration of a cycle.
type Snapshot struct {
	Mappings []PhotoRecord  `json:"mappings"`
	Roster   []RosterPlayer `json:"roster"`
	Stats    Stats          `json:"stats"`
}

// RenameOperation is one entry of a rename batch.
type RenameOperation struct {
	PhotoID     string `json:"photo_id"`
	CurrentName string `json:"current_name"`
	NewName     string `json:"new_name"`
}

// RenameOutcome is the per-file result reported by the rename endpoint.
type RenameOutcome struct {
	PhotoID string `json:"photo_id"`
	Status  string `json:"status"`
	OldName string `json:"old_name,omitempty"`
	NewName string `json:"new_name,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchResult is the endpoint's own accounting for one rename batch. The
// buckets are not guaranteed to sum to Total: partial copies (copy
// succeeded, delete of the original failed) are counted in no bucket.
// Callers display these numbers verbatim.
type BatchResult struct {
	Success    bool            `json:"success"`
	Results    []RenameOutcome `json:"results,omitempty"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
}

// Consistent reports whether the bucket counts add up to Total. A mismatch
// is a data-quality signal, not an error.
func (b BatchResult) Consistent() bool {
	return b.Successful+b.Skipped+b.Failed == b.Total
}

// Stem returns the filename with its final dot-delimited extension segment
// removed. A name with no dot is its own stem, so "a.b.jpg" -> "a.b" and
// "noext" -> "noext".
func Stem(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[:i]
	}
	return filename
}

// Ext returns the final extension segment including the dot, or "" when the
// filename has none. Stem(f) + Ext(f) == f always holds.
func Ext(filename string) string {
	return filename[len(Stem(filename)):]
}
