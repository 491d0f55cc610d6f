package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anuragpatel/minisocial-service/internal/config"
	"github.com/anuragpatel/minisocial-service/internal/services/media"
	"github.com/anuragpatel/minisocial-service/internal/storage"
	"github.com/anuragpatel/minisocial-service/internal/storage/postgres"
)

// MediaJanitor periodically deletes profile-picture objects that no user
// record references anymore. Replaced pictures become orphans because users
// overwrite profile_pic in place.
type MediaJanitor struct {
	storage  storage.Storage
	media    *media.Service
	interval time.Duration
	minAge   time.Duration
	logger   *slog.Logger
}

func NewMediaJanitor(store storage.Storage, mediaService *media.Service, interval time.Duration) *MediaJanitor {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &MediaJanitor{
		storage:  store,
		media:    mediaService,
		interval: interval,
		// Recent objects are skipped so an upload in flight is never deleted
		// between PutObject and the profile_pic update.
		minAge: 24 * time.Hour,
		logger: logger,
	}
}

func (mj *MediaJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(mj.interval)
	defer ticker.Stop()

	mj.logger.Info("Media janitor started",
		"interval", mj.interval.String())

	// Run once immediately on startup
	mj.sweepOrphans(ctx)

	for {
		select {
		case <-ctx.Done():
			mj.logger.Info("Media janitor shutting down")
			return
		case <-ticker.C:
			mj.sweepOrphans(ctx)
		}
	}
}

func (mj *MediaJanitor) sweepOrphans(ctx context.Context) {
	startTime := time.Now()

	mj.logger.Info("Starting orphaned media sweep")

	keys, err := mj.storage.ProfilePicKeys()
	if err != nil {
		mj.logger.Error("Failed to list referenced profile pictures",
			"error", err.Error())
		return
	}

	referenced := make(map[string]bool, len(keys))
	for _, key := range keys {
		referenced[key] = true
	}

	objects, err := mj.media.ListProfilePics(ctx)
	if err != nil {
		mj.logger.Error("Failed to list stored profile pictures",
			"error", err.Error())
		return
	}

	deleted := 0
	for _, obj := range objects {
		if referenced[obj.Key] {
			continue
		}
		if time.Since(obj.LastModified) < mj.minAge {
			continue
		}

		if err := mj.media.DeleteObject(ctx, obj.Key); err != nil {
			mj.logger.Error("Failed to delete orphaned object",
				"object_key", obj.Key,
				"error", err.Error())
			continue
		}
		deleted++
	}

	duration := time.Since(startTime)

	mj.logger.Info("Completed orphaned media sweep",
		"objects_scanned", len(objects),
		"objects_deleted", deleted,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

func main() {
	// Load config
	cfg := config.MustLoad()

	// Initialize database connection
	store, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	mediaService, err := media.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media service:", err)
	}

	janitor := NewMediaJanitor(store, mediaService, time.Hour)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	janitor.Start(ctx)

	slog.Info("Media janitor stopped")
}
