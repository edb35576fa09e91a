package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"photomapper/internal/drive"
	"photomapper/internal/mapping"
	"photomapper/internal/matcher"
	"photomapper/internal/queue"
)

type fakePhotos struct {
	photos  []drive.Photo
	listErr error

	copyErrFor   map[string]error
	deleteErrFor map[string]error
	copied       []string
	deleted      []string
}

func (f *fakePhotos) ListPhotos(ctx context.Context, folderID string) ([]drive.Photo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.photos, nil
}

func (f *fakePhotos) Copy(ctx context.Context, fileID, newName string) (string, error) {
	if err := f.copyErrFor[fileID]; err != nil {
		return "", err
	}
	f.copied = append(f.copied, fileID+"->"+newName)
	return fileID + "-copy", nil
}

func (f *fakePhotos) Delete(ctx context.Context, fileID string) error {
	if err := f.deleteErrFor[fileID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

type fakeRoster struct {
	players []matcher.Player
	err     error
}

func (f *fakeRoster) LoadRoster(ctx context.Context, spreadsheetID, worksheet string) ([]matcher.Player, error) {
	return f.players, f.err
}

func newTestService(photos *fakePhotos, roster *fakeRoster, q queue.Queue) *Service {
	return New(Config{
		Photos:        photos,
		Roster:        roster,
		FolderID:      "folder1",
		SpreadsheetID: "sheet1",
		Queue:         q,
	})
}

func TestLoadDataBuildsSnapshot(t *testing.T) {
	photos := &fakePhotos{photos: []drive.Photo{
		{ID: "p1", Name: "alex_lee.jpg", ThumbnailLink: "http://t/1"},
		{ID: "p2", Name: "img_0042.jpg"},
	}}
	roster := &fakeRoster{players: []matcher.Player{
		{StudentID: "s1", FirstName: "Alex", LastName: "Lee", FullName: "Alex Lee"},
	}}

	snap, err := newTestService(photos, roster, nil).LoadData(context.Background())
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}

	if snap.Stats.TotalPhotos != 2 || snap.Stats.TotalPlayers != 1 {
		t.Fatalf("unexpected stats: %+v", snap.Stats)
	}
	if snap.Stats.HighConfidenceMatches != 1 {
		t.Fatalf("exact filename match should count as high confidence: %+v", snap.Stats)
	}
	if len(snap.Mappings) != 2 {
		t.Fatalf("expected a record per photo, got %d", len(snap.Mappings))
	}

	matched := snap.Mappings[0]
	if matched.MatchedPlayer != "Alex Lee" || matched.MatchType != mapping.MatchExact || matched.StudentID != "s1" {
		t.Fatalf("unexpected matched record: %+v", matched)
	}
	if matched.DirectLink != "https://drive.google.com/uc?id=p1" {
		t.Fatalf("bad direct link: %s", matched.DirectLink)
	}

	unmatched := snap.Mappings[1]
	if unmatched.MatchedPlayer != "" || unmatched.MatchType != mapping.MatchNone {
		t.Fatalf("unmatched photo should keep an empty suggestion: %+v", unmatched)
	}
	if unmatched.AlternativeMatches == nil {
		t.Fatal("alternative matches must encode as an empty list, not null")
	}
}

func TestLoadDataEmptyFolder(t *testing.T) {
	svc := newTestService(&fakePhotos{}, &fakeRoster{players: []matcher.Player{{FirstName: "A", LastName: "B"}}}, nil)
	if _, err := svc.LoadData(context.Background()); !errors.Is(err, ErrNoPhotos) {
		t.Fatalf("expected ErrNoPhotos, got %v", err)
	}
}

func TestLoadDataEmptyRoster(t *testing.T) {
	photos := &fakePhotos{photos: []drive.Photo{{ID: "p1", Name: "a.jpg"}}}
	svc := newTestService(photos, &fakeRoster{}, nil)
	if _, err := svc.LoadData(context.Background()); !errors.Is(err, ErrNoRoster) {
		t.Fatalf("expected ErrNoRoster, got %v", err)
	}
}

func TestRenameBatchEmpty(t *testing.T) {
	svc := newTestService(&fakePhotos{}, &fakeRoster{}, nil)
	if _, err := svc.RenameBatch(context.Background(), nil); !errors.Is(err, ErrNoRenames) {
		t.Fatalf("expected ErrNoRenames, got %v", err)
	}
}

func TestRenameBatchAccounting(t *testing.T) {
	photos := &fakePhotos{
		copyErrFor:   map[string]error{"p3": errors.New("copy quota exceeded")},
		deleteErrFor: map[string]error{"p4": errors.New("insufficient permissions")},
	}
	svc := newTestService(photos, &fakeRoster{}, nil)

	renames := []mapping.RenameOperation{
		{PhotoID: "p1", CurrentName: "old.jpg", NewName: "Alex Lee"},
		{PhotoID: "p2", CurrentName: "Sam Cole.png", NewName: "sam cole"},
		{PhotoID: "p3", CurrentName: "x.jpg", NewName: "Jordan"},
		{PhotoID: "p4", CurrentName: "y.jpg", NewName: "Riley"},
		{PhotoID: "", CurrentName: "z.jpg", NewName: "Nobody"},
	}
	result, err := svc.RenameBatch(context.Background(), renames)
	if err != nil {
		t.Fatalf("RenameBatch: %v", err)
	}

	if result.Total != 5 {
		t.Fatalf("total = %d", result.Total)
	}
	if result.Successful != 1 || result.Skipped != 1 || result.Failed != 2 {
		t.Fatalf("unexpected buckets: %+v", result)
	}
	// p4 copied but kept its original, so it lands in no bucket.
	if result.Consistent() {
		t.Fatal("a partial copy must leave the buckets short of the total")
	}

	byID := map[string]mapping.RenameOutcome{}
	for _, r := range result.Results {
		byID[r.PhotoID] = r
	}
	if byID["p1-copy"].Status != mapping.StatusSuccess || byID["p1-copy"].NewName != "Alex Lee.jpg" {
		t.Fatalf("success outcome: %+v", byID["p1-copy"])
	}
	if byID["p2"].Status != mapping.StatusSkipped {
		t.Fatalf("stem-equal rename should skip: %+v", byID["p2"])
	}
	if byID["p3"].Status != mapping.StatusError {
		t.Fatalf("copy failure outcome: %+v", byID["p3"])
	}
	if partial := byID["p4-copy"]; partial.Status != mapping.StatusPartial || partial.NewName != "Riley.jpg" {
		t.Fatalf("partial outcome: %+v", partial)
	}
	if byID[""].Status != mapping.StatusError {
		t.Fatalf("missing fields should fail validation: %+v", byID[""])
	}

	// The skipped photo must never touch Drive.
	for _, c := range photos.copied {
		if c == "p2->sam cole.png" {
			t.Fatal("skipped photo was copied")
		}
	}
}

func TestRenameBatchPreservesExtension(t *testing.T) {
	photos := &fakePhotos{}
	svc := newTestService(photos, &fakeRoster{}, nil)

	_, err := svc.RenameBatch(context.Background(), []mapping.RenameOperation{
		{PhotoID: "p1", CurrentName: "IMG 2024.08.01.heic", NewName: "Alex Lee"},
	})
	if err != nil {
		t.Fatalf("RenameBatch: %v", err)
	}
	if len(photos.copied) != 1 || photos.copied[0] != "p1->Alex Lee.heic" {
		t.Fatalf("extension not preserved: %v", photos.copied)
	}
}

func TestRenameBatchPublishesRefresh(t *testing.T) {
	q := queue.NewInMemory(1)
	svc := newTestService(&fakePhotos{}, &fakeRoster{}, q)

	if _, err := svc.RenameBatch(context.Background(), []mapping.RenameOperation{
		{PhotoID: "p1", CurrentName: "a.jpg", NewName: "B"},
	}); err != nil {
		t.Fatalf("RenameBatch: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	select {
	case msg := <-msgs:
		if msg.Type != queue.TypeRefresh {
			t.Fatalf("unexpected message type: %s", msg.Type)
		}
	case <-ctx.Done():
		t.Fatal("no refresh message published")
	}
}
