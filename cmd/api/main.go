package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photomapper/internal/config"
	"photomapper/internal/drive"
	"photomapper/internal/export"
	"photomapper/internal/history"
	"photomapper/internal/httpmiddleware"
	"photomapper/internal/mapping"
	"photomapper/internal/metrics"
	"photomapper/internal/queue"
	"photomapper/internal/service"
	"photomapper/internal/sheets"
	"photomapper/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	creds, err := drive.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("google credentials: %w", err)
	}
	folderID, err := drive.ExtractFolderID(cfg.DriveFolderURL)
	if err != nil {
		return fmt.Errorf("drive folder: %w", err)
	}

	tokens := drive.NewServiceAccountTokens(creds,
		drive.ScopeDriveReadOnly, drive.ScopeDriveMetadata, drive.ScopeDriveFile,
		drive.ScopeSpreadsheetsReadOnly)
	driveClient := drive.New(tokens)
	sheetsClient := sheets.New(tokens)

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable, rename history disabled: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "photomapper:refresh")
	}

	var repo *history.Repository
	if db != nil && db.Client != nil {
		repo = history.NewRepository(db.Client)
	}

	svc := service.New(service.Config{
		Photos:        driveClient,
		Roster:        sheetsClient,
		FolderID:      folderID,
		SpreadsheetID: cfg.SpreadsheetID,
		Worksheet:     cfg.RosterSheet,
		Cache:         redisClient,
		CacheTTL:      cfg.SnapshotTTL,
		History:       repo,
		Queue:         q,
	})

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.GET("/api/load-data", func(c *gin.Context) {
		snap, err := svc.LoadData(c.Request.Context())
		if err != nil {
			log.Printf("load data failed: %v", err)
			status := http.StatusInternalServerError
			if errors.Is(err, service.ErrNoPhotos) || errors.Is(err, service.ErrNoRoster) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	r.POST("/api/rename-files", func(c *gin.Context) {
		var req struct {
			Renames []mapping.RenameOperation `json:"renames"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := svc.RenameBatch(c.Request.Context(), req.Renames)
		if err != nil {
			if errors.Is(err, service.ErrNoRenames) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Printf("rename batch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	// Builds the interchange rows for the mappings the caller confirmed.
	// With ?format=csv the fully quoted text/csv artifact is returned
	// instead of the row arrays.
	r.POST("/api/export-csv", func(c *gin.Context) {
		var req struct {
			Mappings []struct {
				PlayerName   string `json:"player_name"`
				PhotoID      string `json:"photo_id"`
				Filename     string `json:"filename"`
				ThumbnailURL string `json:"thumbnail_url"`
			} `json:"mappings"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(req.Mappings) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no mappings provided"})
			return
		}

		var rows [][]string
		for _, m := range req.Mappings {
			if m.PlayerName == "" {
				continue
			}
			rows = append(rows, export.Row(m.PlayerName, m.PhotoID, m.Filename, m.ThumbnailURL))
		}
		if len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": export.ErrNoEligibleRows.Error()})
			return
		}
		metrics.Exports.Inc()

		if c.Query("format") == "csv" {
			c.Header("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
			c.Header("Content-Type", export.MIMEType)
			c.Status(http.StatusOK)
			if err := export.Write(c.Writer, rows); err != nil {
				log.Printf("export write failed: %v", err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"csv_data":       append([][]string{export.Header}, rows...),
			"total_mappings": len(rows),
		})
	})

	r.GET("/api/history", func(c *gin.Context) {
		if repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rename history not available"})
			return
		}
		batches, err := repo.ListBatches(c.Request.Context(), 20)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"batches": batches})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Drive listings and batches are slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
