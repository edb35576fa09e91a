package mapping

import "strings"

// BuildRenamePlan computes the minimal rename list for the given photos and
// assignment state. Per photo, in input order:
//
//  1. excluded photos are skipped regardless of selection,
//  2. empty selections are skipped,
//  3. photos whose filename stem already equals the selection
//     case-insensitively are skipped,
//  4. otherwise an operation is emitted carrying the selection verbatim.
//
// The result contains exactly the photos whose stored name must change and
// nothing else.
func BuildRenamePlan(photos []PhotoRecord, store *AssignmentStore) []RenameOperation {
	var ops []RenameOperation
	for _, p := range photos {
		a, ok := store.Get(p.PhotoID)
		if !ok || a.Excluded || a.SelectedName == "" {
			continue
		}
		if strings.EqualFold(Stem(p.Filename), a.SelectedName) {
			continue
		}
		ops = append(ops, RenameOperation{
			PhotoID:     p.PhotoID,
			CurrentName: p.Filename,
			NewName:     a.SelectedName,
		})
	}
	return ops
}
