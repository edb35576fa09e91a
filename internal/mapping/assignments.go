package mapping

// Assignment is the user-owned selection state for one photo. An empty
// SelectedName means "unassigned" and is distinct from whitespace; values
// are stored verbatim, never trimmed.
type Assignment struct {
	SelectedName string
	Excluded     bool
}

// AssignmentStore owns the per-photo assignments for one snapshot cycle.
// It is rebuilt wholesale on every reload; no assignment survives a refresh.
// Writes are visible to subsequent reads immediately.
type AssignmentStore struct {
	order       []string
	assignments map[string]*Assignment
}

// NewAssignmentStore seeds one assignment per photo from the matcher's
// suggestion, preserving the photo collection's order. Excluded defaults to
// false.
func NewAssignmentStore(photos []PhotoRecord) *AssignmentStore {
	s := &AssignmentStore{assignments: make(map[string]*Assignment, len(photos))}
	for _, p := range photos {
		if _, ok := s.assignments[p.PhotoID]; ok {
			continue
		}
		s.order = append(s.order, p.PhotoID)
		s.assignments[p.PhotoID] = &Assignment{SelectedName: p.MatchedPlayer}
	}
	return s
}

// SetName records a user selection for a photo. Returns false when the
// photo is not part of the current snapshot.
func (s *AssignmentStore) SetName(photoID, name string) bool {
	a, ok := s.assignments[photoID]
	if !ok {
		return false
	}
	a.SelectedName = name
	return true
}

// SetExcluded flags or unflags a photo.
func (s *AssignmentStore) SetExcluded(photoID string, excluded bool) bool {
	a, ok := s.assignments[photoID]
	if !ok {
		return false
	}
	a.Excluded = excluded
	return true
}

// Get returns the current assignment for a photo.
func (s *AssignmentStore) Get(photoID string) (Assignment, bool) {
	a, ok := s.assignments[photoID]
	if !ok {
		return Assignment{}, false
	}
	return *a, true
}

// Len returns the number of tracked photos.
func (s *AssignmentStore) Len() int {
	return len(s.order)
}
