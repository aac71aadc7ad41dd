package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matchbot-dev/matchbot/internal/api"
	"github.com/matchbot-dev/matchbot/internal/bot"
	"github.com/matchbot-dev/matchbot/internal/config"
	"github.com/matchbot-dev/matchbot/internal/db"
	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Rebuild the engine from the saved queue snapshots
	engine := matchmaking.NewEngine(nil)
	if err := restoreQueues(engine, database); err != nil {
		log.Fatalf("Failed to restore queues: %v", err)
	}

	// Load queue placements
	reg := registry.New(database)
	if err := reg.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load queue registry: %v", err)
	}

	// Initialize Discord bot and attach its adapter to the engine
	discordBot, err := bot.New(cfg.DiscordToken, engine, reg, database)
	if err != nil {
		log.Fatalf("Failed to create discord bot: %v", err)
	}
	engine.SetAdapter(discordBot.Adapter())

	// Initialize API server
	apiServer := api.New(cfg, engine, reg, database)

	// Start Discord bot
	if err := discordBot.Start(); err != nil {
		log.Fatalf("Failed to start discord bot: %v", err)
	}
	defer discordBot.Stop()

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Persist queue state periodically and once more on the way out
	snapshotCtx, stopSnapshots := context.WithCancel(context.Background())
	go snapshotLoop(snapshotCtx, engine, database, cfg.SnapshotInterval)

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	stopSnapshots()
	saveQueues(engine, database)
}

func restoreQueues(engine *matchmaking.Engine, database *db.DB) error {
	saved, err := database.LoadSnapshots(context.Background())
	if err != nil {
		return err
	}
	for id, data := range saved {
		var snap matchmaking.QueueSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Printf("Skipping corrupt snapshot for queue %s: %v", id, err)
			continue
		}
		engine.RestoreQueue(snap)
	}
	log.Printf("Restored %d queue(s)", len(saved))
	return nil
}

func saveQueues(engine *matchmaking.Engine, database *db.DB) {
	for _, snap := range engine.Snapshot() {
		data, err := json.Marshal(snap)
		if err != nil {
			log.Printf("Failed to marshal snapshot for queue %s: %v", snap.ID, err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.SaveSnapshot(ctx, snap.ID, data); err != nil {
			log.Printf("Failed to save snapshot for queue %s: %v", snap.ID, err)
		}
		cancel()
	}
}

func snapshotLoop(ctx context.Context, engine *matchmaking.Engine, database *db.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			saveQueues(engine, database)
		}
	}
}
