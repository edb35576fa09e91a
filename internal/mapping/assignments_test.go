package mapping

import "testing"

func TestAssignmentStoreSeedsFromSuggestions(t *testing.T) {
	photos := []PhotoRecord{
		{PhotoID: "p1", Filename: "a.jpg", MatchedPlayer: "Alex Lee"},
		{PhotoID: "p2", Filename: "b.jpg"},
	}
	store := NewAssignmentStore(photos)

	a, ok := store.Get("p1")
	if !ok || a.SelectedName != "Alex Lee" || a.Excluded {
		t.Fatalf("p1 should be seeded with the suggestion, got %+v", a)
	}
	b, ok := store.Get("p2")
	if !ok || b.SelectedName != "" {
		t.Fatalf("p2 without a suggestion should start unassigned, got %+v", b)
	}
}

func TestAssignmentStoreWritesVisibleImmediately(t *testing.T) {
	store := NewAssignmentStore([]PhotoRecord{{PhotoID: "p1"}})

	if !store.SetName("p1", "Jordan Reyes") {
		t.Fatal("SetName on a known photo should succeed")
	}
	if a, _ := store.Get("p1"); a.SelectedName != "Jordan Reyes" {
		t.Fatalf("write not visible: %+v", a)
	}

	store.SetExcluded("p1", true)
	if a, _ := store.Get("p1"); !a.Excluded {
		t.Fatal("exclusion flag not visible")
	}
}

func TestAssignmentStoreUnknownPhoto(t *testing.T) {
	store := NewAssignmentStore(nil)
	if store.SetName("ghost", "x") || store.SetExcluded("ghost", true) {
		t.Fatal("mutations on unknown photos must be rejected")
	}
	if _, ok := store.Get("ghost"); ok {
		t.Fatal("unknown photo must not resolve")
	}
}

func TestAssignmentStoreRebuildDropsEdits(t *testing.T) {
	photos := []PhotoRecord{{PhotoID: "p1", MatchedPlayer: "Suggested"}}
	store := NewAssignmentStore(photos)
	store.SetName("p1", "Edited")

	// A reload builds a fresh store; nothing survives.
	rebuilt := NewAssignmentStore(photos)
	if a, _ := rebuilt.Get("p1"); a.SelectedName != "Suggested" {
		t.Fatalf("rebuilt store must reseed from suggestions, got %+v", a)
	}
}
