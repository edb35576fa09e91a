package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"photomapper/internal/config"
	"photomapper/internal/drive"
	"photomapper/internal/queue"
	"photomapper/internal/service"
	"photomapper/internal/sheets"
	"photomapper/internal/store"
)

// Worker consumes refresh messages published after rename batches and
// re-warms the snapshot cache so the next load-data is served hot.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	svc, err := buildService(cfg)
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "photomapper:refresh")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for refresh messages...")
	for msg := range messages {
		if msg.Type != queue.TypeRefresh {
			continue
		}

		log.Println("refreshing snapshot cache")
		snap, err := svc.RefreshSnapshot(ctx)
		if err != nil {
			log.Printf("snapshot refresh failed: %v", err)
			continue
		}
		log.Printf("snapshot refreshed: %d photos, %d players, %d high / %d medium confidence",
			snap.Stats.TotalPhotos, snap.Stats.TotalPlayers,
			snap.Stats.HighConfidenceMatches, snap.Stats.MediumConfidenceMatches)
	}

	log.Println("worker stopped")
}

func buildService(cfg config.App) (*service.Service, error) {
	creds, err := drive.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	folderID, err := drive.ExtractFolderID(cfg.DriveFolderURL)
	if err != nil {
		return nil, fmt.Errorf("drive folder: %w", err)
	}

	tokens := drive.NewServiceAccountTokens(creds,
		drive.ScopeDriveReadOnly, drive.ScopeDriveMetadata, drive.ScopeDriveFile,
		drive.ScopeSpreadsheetsReadOnly)

	return service.New(service.Config{
		Photos:        drive.New(tokens),
		Roster:        sheets.New(tokens),
		FolderID:      folderID,
		SpreadsheetID: cfg.SpreadsheetID,
		Worksheet:     cfg.RosterSheet,
		Cache:         store.NewRedis(cfg.RedisAddr),
		CacheTTL:      cfg.SnapshotTTL,
	}), nil
}
