// Package reconcile owns one reconciliation cycle: the canonical snapshot,
// the assignment store derived from it, batch submission with its
// confirmation gate, and the post-success reload.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"photomapper/internal/export"
	"photomapper/internal/mapping"
)

// ErrNoOperations is returned when a rename is requested but every
// assignment already matches its photo. The endpoint is never called.
var ErrNoOperations = errors.New("no rename operations to submit")

// ErrDeclined is returned when the confirmation gate rejects the batch.
// Nothing was submitted.
var ErrDeclined = errors.New("rename batch declined")

// ErrBusy rejects re-entrant invocation while a fetch or batch submission
// is outstanding. The session is single-threaded by contract; this flag
// catches accidental re-entry, it is not a lock.
var ErrBusy = errors.New("another operation is in flight")

// Canonical is the slice of the backend the session consumes.
type Canonical interface {
	LoadData(ctx context.Context) (*mapping.Snapshot, error)
	RenameFiles(ctx context.Context, renames []mapping.RenameOperation) (*mapping.BatchResult, error)
}

// Session holds the in-memory state for one cycle. PhotoRecord and
// RosterPlayer data are immutable snapshots; only the assignment store
// mutates between reloads, and it is discarded wholesale on every reload.
type Session struct {
	client      Canonical
	snapshot    *mapping.Snapshot
	assignments *mapping.AssignmentStore
	busy        bool
	logf        func(format string, args ...any)
}

// NewSession creates a session with no snapshot; call Reload before
// anything else.
func NewSession(client Canonical) *Session {
	return &Session{client: client, logf: log.Printf}
}

// Reload fetches a fresh {mappings, roster} pair and replaces the snapshot
// and assignment store atomically. On failure the previous snapshot, if
// any, stays in place; a first-load failure leaves the session blocked
// until retried.
func (s *Session) Reload(ctx context.Context) error {
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	defer func() { s.busy = false }()
	return s.reload(ctx)
}

func (s *Session) reload(ctx context.Context) error {
	snap, err := s.client.LoadData(ctx)
	if err != nil {
		return err
	}
	s.snapshot = snap
	s.assignments = mapping.NewAssignmentStore(snap.Mappings)
	return nil
}

// Snapshot returns the current canonical snapshot, nil before the first
// successful reload.
func (s *Session) Snapshot() *mapping.Snapshot {
	return s.snapshot
}

// Assignments returns the store for the current cycle, nil before the
// first successful reload.
func (s *Session) Assignments() *mapping.AssignmentStore {
	return s.assignments
}

// Plan returns the minimal rename list for the current state.
func (s *Session) Plan() []mapping.RenameOperation {
	if s.snapshot == nil {
		return nil
	}
	return mapping.BuildRenamePlan(s.snapshot.Mappings, s.assignments)
}

// SubmitRenames plans the batch, runs it through the confirmation gate
// with the operation count, submits it as one atomic request, and reloads
// canonical data after a reported success. The endpoint's counts are
// returned verbatim; a bucket mismatch is logged, never corrected. When
// the post-success reload fails its error is returned alongside the
// result, since filenames have already changed server-side.
func (s *Session) SubmitRenames(ctx context.Context, confirm func(count int) bool) (*mapping.BatchResult, error) {
	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true
	defer func() { s.busy = false }()

	ops := s.Plan()
	if len(ops) == 0 {
		return nil, ErrNoOperations
	}
	if confirm != nil && !confirm(len(ops)) {
		return nil, ErrDeclined
	}

	result, err := s.client.RenameFiles(ctx, ops)
	if err != nil {
		return nil, err
	}
	if !result.Consistent() {
		s.logf("rename counts do not add up: %d successful + %d skipped + %d failed != %d total",
			result.Successful, result.Skipped, result.Failed, result.Total)
	}

	if err := s.reload(ctx); err != nil {
		return result, fmt.Errorf("batch applied but refresh failed: %w", err)
	}
	return result, nil
}

// ExportCSV renders the confirmed assignments as the interchange CSV and
// returns the payload with its date-stamped filename. Zero eligible rows
// yield export.ErrNoEligibleRows and no artifact.
func (s *Session) ExportCSV() ([]byte, string, error) {
	if s.snapshot == nil {
		return nil, "", errors.New("no data loaded")
	}
	payload, err := export.Render(s.snapshot.Mappings, s.assignments)
	if err != nil {
		return nil, "", err
	}
	return payload, export.Filename(time.Now()), nil
}
