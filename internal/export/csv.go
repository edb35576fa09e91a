// Package export serializes confirmed photo-to-player assignments into the
// CSV interchange format downstream tooling consumes.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"photomapper/internal/mapping"
)

// ErrNoEligibleRows is returned when an export is requested and every
// assignment is empty or excluded. A header-only file is never produced.
var ErrNoEligibleRows = errors.New("no confirmed mappings to export")

// MIMEType of the produced artifact.
const MIMEType = "text/csv"

// Header is the fixed first row of the interchange format.
var Header = []string{"PlayerName", "DriveId", "Filename", "GoogleDriveLink", "DirectImageLink", "ThumbnailLink"}

const (
	viewLinkFormat   = "https://drive.google.com/file/d/%s/view"
	directLinkFormat = "https://drive.google.com/uc?id=%s"
)

// Row builds one data row. The view and direct links are derived from the
// photo ID; everything else is carried through verbatim.
func Row(playerName, photoID, filename, thumbnailURL string) []string {
	return []string{
		playerName,
		photoID,
		filename,
		fmt.Sprintf(viewLinkFormat, photoID),
		fmt.Sprintf(directLinkFormat, photoID),
		thumbnailURL,
	}
}

// Rows projects the confirmed assignments: one row per photo with a
// non-empty, non-excluded selection, in photo order. Selections are not
// trimmed, so a whitespace-only selection counts as assigned.
func Rows(photos []mapping.PhotoRecord, store *mapping.AssignmentStore) ([][]string, error) {
	var rows [][]string
	for _, p := range photos {
		a, ok := store.Get(p.PhotoID)
		if !ok || a.Excluded || a.SelectedName == "" {
			continue
		}
		rows = append(rows, Row(a.SelectedName, p.PhotoID, p.Filename, p.ThumbnailURL))
	}
	if len(rows) == 0 {
		return nil, ErrNoEligibleRows
	}
	return rows, nil
}

// Write emits the header and the given rows. Every field is wrapped in
// double quotes with embedded quotes doubled; there is no other escaping.
func Write(w io.Writer, rows [][]string) error {
	if err := writeRecord(w, Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRecord(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Render produces the full CSV payload for the confirmed assignments.
func Render(photos []mapping.PhotoRecord, store *mapping.AssignmentStore) ([]byte, error) {
	rows, err := Rows(photos, store)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns the date-stamped artifact name.
func Filename(now time.Time) string {
	return "photo_player_mappings_" + now.Format("2006-01-02") + ".csv"
}

func writeRecord(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteField(f)
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

func quoteField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// unquoteField inverts quoteField; it exists so tests can prove the
// escaping round-trips.
func unquoteField(field string) string {
	field = strings.TrimPrefix(field, `"`)
	field = strings.TrimSuffix(field, `"`)
	return strings.ReplaceAll(field, `""`, `"`)
}
