// Package service assembles canonical snapshots from Drive and Sheets and
// executes rename batches against the photo store. It is the server half
// behind /api/load-data and /api/rename-files.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"photomapper/internal/drive"
	"photomapper/internal/history"
	"photomapper/internal/mapping"
	"photomapper/internal/matcher"
	"photomapper/internal/metrics"
	"photomapper/internal/queue"
	"photomapper/internal/store"
)

// ErrNoPhotos means the Drive folder listing came back empty.
var ErrNoPhotos = errors.New("no photos found in the Drive folder")

// ErrNoRoster means the roster sheet produced no players.
var ErrNoRoster = errors.New("no players found in the roster sheet")

// ErrNoRenames means a batch was submitted with zero operations.
var ErrNoRenames = errors.New("no rename operations provided")

const snapshotCacheKey = "photomapper:snapshot"

// PhotoSource is the slice of the Drive client the service uses.
type PhotoSource interface {
	ListPhotos(ctx context.Context, folderID string) ([]drive.Photo, error)
	Copy(ctx context.Context, fileID, newName string) (string, error)
	Delete(ctx context.Context, fileID string) error
}

// RosterSource loads players from the roster sheet.
type RosterSource interface {
	LoadRoster(ctx context.Context, spreadsheetID, worksheet string) ([]matcher.Player, error)
}

// Config wires a Service. Cache, History and Queue are optional; the
// service degrades to uncached, unaudited operation without them.
type Config struct {
	Photos        PhotoSource
	Roster        RosterSource
	FolderID      string
	SpreadsheetID string
	Worksheet     string

	Cache    *store.Redis
	CacheTTL time.Duration
	History  *history.Repository
	Queue    queue.Queue
}

// Service is safe for the concurrent use gin subjects it to; all state
// lives in its collaborators.
type Service struct {
	cfg Config
}

// New creates a service.
func New(cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Worksheet == "" {
		cfg.Worksheet = "Roster"
	}
	return &Service{cfg: cfg}
}

// LoadData returns the current snapshot, preferring the Redis cache. A
// cache miss triggers a full Drive listing, roster load and matching pass.
func (s *Service) LoadData(ctx context.Context) (*mapping.Snapshot, error) {
	if snap := s.cachedSnapshot(ctx); snap != nil {
		metrics.SnapshotLoads.WithLabelValues("cache").Inc()
		return snap, nil
	}

	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		metrics.SnapshotLoads.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SnapshotLoads.WithLabelValues("ok").Inc()

	s.storeSnapshot(ctx, snap)
	return snap, nil
}

// RefreshSnapshot drops the cache and rebuilds the snapshot. The worker
// calls this after a rename batch.
func (s *Service) RefreshSnapshot(ctx context.Context) (*mapping.Snapshot, error) {
	s.dropCache(ctx)
	return s.LoadData(ctx)
}

func (s *Service) buildSnapshot(ctx context.Context) (*mapping.Snapshot, error) {
	photos, err := s.cfg.Photos.ListPhotos(ctx, s.cfg.FolderID)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}

	players, err := s.cfg.Roster.LoadRoster(ctx, s.cfg.SpreadsheetID, s.cfg.Worksheet)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(players) == 0 {
		return nil, ErrNoRoster
	}

	snap := &mapping.Snapshot{
		Mappings: buildMappings(photos, players),
		Roster:   make([]mapping.RosterPlayer, 0, len(players)),
	}
	for _, p := range players {
		snap.Roster = append(snap.Roster, mapping.RosterPlayer{
			FullName:  p.FullName,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			StudentID: p.StudentID,
		})
	}

	snap.Stats = mapping.Stats{
		TotalPhotos:  len(photos),
		TotalPlayers: len(players),
	}
	for _, m := range snap.Mappings {
		switch m.Confidence {
		case mapping.ConfidenceHigh:
			snap.Stats.HighConfidenceMatches++
		case mapping.ConfidenceMedium:
			snap.Stats.MediumConfidenceMatches++
		}
	}
	return snap, nil
}

// buildMappings runs the matcher over every photo. Photos with no
// candidate keep an empty suggestion and a no_match type so the client can
// still assign them by hand.
func buildMappings(photos []drive.Photo, players []matcher.Player) []mapping.PhotoRecord {
	records := make([]mapping.PhotoRecord, 0, len(photos))
	for _, photo := range photos {
		rec := mapping.PhotoRecord{
			PhotoID:      photo.ID,
			Filename:     photo.Name,
			ThumbnailURL: photo.ThumbnailLink,
			DirectLink:   "https://drive.google.com/uc?id=" + photo.ID,
		}

		matches := matcher.MatchPhoto(photo.Name, players)
		if len(matches) == 0 {
			rec.Confidence = mapping.ConfidenceMedium
			rec.MatchType = mapping.MatchNone
			rec.AlternativeMatches = []string{}
			records = append(records, rec)
			continue
		}

		best := matches[0]
		rec.MatchedPlayer = best.Player.FullName
		rec.Confidence = best.Confidence
		rec.MatchType = best.MatchType
		rec.MatchedVariation = best.Variation
		rec.StudentID = best.Player.StudentID
		rec.AlternativeMatches = matcher.Alternatives(matches)
		if rec.AlternativeMatches == nil {
			rec.AlternativeMatches = []string{}
		}
		records = append(records, rec)
	}
	return records
}

// RenameBatch executes the operations one file at a time and reports the
// aggregate the way this endpoint always has: stem-equal names are
// skipped, a copy whose original could not be deleted is partial_success
// and lands in no bucket, so the buckets may not sum to total.
func (s *Service) RenameBatch(ctx context.Context, renames []mapping.RenameOperation) (*mapping.BatchResult, error) {
	if len(renames) == 0 {
		return nil, ErrNoRenames
	}

	results := make([]mapping.RenameOutcome, 0, len(renames))
	for _, op := range renames {
		results = append(results, s.renameOne(ctx, op))
	}

	result := &mapping.BatchResult{
		Success: true,
		Results: results,
		Total:   len(renames),
	}
	for _, r := range results {
		metrics.Renames.WithLabelValues(r.Status).Inc()
		switch r.Status {
		case mapping.StatusSuccess:
			result.Successful++
		case mapping.StatusSkipped:
			result.Skipped++
		case mapping.StatusError:
			result.Failed++
		}
	}

	log.Printf("rename batch completed: %d successful, %d skipped, %d failed (of %d)",
		result.Successful, result.Skipped, result.Failed, result.Total)

	if s.cfg.History != nil {
		if _, err := s.cfg.History.RecordBatch(ctx, *result); err != nil {
			log.Printf("record rename batch failed: %v", err)
		}
	}
	s.dropCache(ctx)
	if s.cfg.Queue != nil {
		if err := s.cfg.Queue.Publish(ctx, queue.Message{Type: queue.TypeRefresh}); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}
	return result, nil
}

func (s *Service) renameOne(ctx context.Context, op mapping.RenameOperation) mapping.RenameOutcome {
	if op.PhotoID == "" || op.CurrentName == "" || op.NewName == "" {
		return mapping.RenameOutcome{
			PhotoID: op.PhotoID,
			Status:  mapping.StatusError,
			Message: "missing required fields",
		}
	}

	if strings.EqualFold(mapping.Stem(op.CurrentName), op.NewName) {
		return mapping.RenameOutcome{
			PhotoID: op.PhotoID,
			Status:  mapping.StatusSkipped,
			Message: "names are already the same",
		}
	}

	newFilename := op.NewName + mapping.Ext(op.CurrentName)

	newID, err := s.cfg.Photos.Copy(ctx, op.PhotoID, newFilename)
	if err != nil {
		log.Printf("rename %s failed: %v", op.CurrentName, err)
		return mapping.RenameOutcome{
			PhotoID: op.PhotoID,
			Status:  mapping.StatusError,
			Message: err.Error(),
		}
	}

	// The copy is the renamed file from here on; report its ID either way.
	if err := s.cfg.Photos.Delete(ctx, op.PhotoID); err != nil {
		log.Printf("copied %s but couldn't delete original: %v", op.CurrentName, err)
		return mapping.RenameOutcome{
			PhotoID: newID,
			Status:  mapping.StatusPartial,
			OldName: op.CurrentName,
			NewName: newFilename,
			Message: fmt.Sprintf("file copied with new name, but original remains: %v", err),
		}
	}

	return mapping.RenameOutcome{
		PhotoID: newID,
		Status:  mapping.StatusSuccess,
		OldName: op.CurrentName,
		NewName: newFilename,
	}
}

func (s *Service) cachedSnapshot(ctx context.Context) *mapping.Snapshot {
	if s.cfg.Cache == nil || s.cfg.Cache.Client == nil {
		return nil
	}
	raw, err := s.cfg.Cache.Client.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var snap mapping.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return &snap
}

func (s *Service) storeSnapshot(ctx context.Context, snap *mapping.Snapshot) {
	if s.cfg.Cache == nil || s.cfg.Cache.Client == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cfg.Cache.Client.Set(ctx, snapshotCacheKey, raw, s.cfg.CacheTTL).Err(); err != nil {
		log.Printf("snapshot cache write failed: %v", err)
	}
}

func (s *Service) dropCache(ctx context.Context) {
	if s.cfg.Cache == nil || s.cfg.Cache.Client == nil {
		return
	}
	if err := s.cfg.Cache.Client.Del(ctx, snapshotCacheKey).Err(); err != nil {
		log.Printf("snapshot cache invalidation failed: %v", err)
	}
}
