// Package main is the entry point for the Mina Profunda game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/content"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/engine"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/infra/cache"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/infra/storage"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/network"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/metrics"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/optimization"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/save"
)

// saveHistoryKeep is how many save documents the pruner leaves behind.
const saveHistoryKeep = 20

func profileConfig() *optimization.Config {
	switch os.Getenv("GAME_PROFILE") {
	case "stress":
		return optimization.StressTestConfig()
	case "low":
		return optimization.LowResourceConfig()
	default:
		return optimization.DefaultConfig()
	}
}

func openRepositories(cfg *optimization.Config, appLogger *logger.Logger) (storage.EventRepository, storage.SaveRepository, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		appLogger.Info("Connecting to PostgreSQL...")
		db, err := storage.InitPostgres(dsn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresEventRepository(db), storage.NewPostgresSaveRepository(db, engine.GameID), nil
	}

	dbPath := os.Getenv("MINE_DB")
	if dbPath == "" {
		dbPath = "mine.db"
	}
	appLogger.Info("Initializing SQLite database '" + dbPath + "'...")
	db, err := storage.InitSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLiteEventRepository(db), storage.NewSQLiteSaveRepository(db, engine.GameID), nil
}

func loadPack(path string, appLogger *logger.Logger) *content.Pack {
	if path == "" {
		appLogger.Info("Loading embedded content pack...")
		return content.DefaultPack()
	}
	appLogger.Info("Loading content pack '" + path + "'...")
	pack, err := content.Load(path)
	if err != nil {
		appLogger.Error("Content pack rejected: " + err.Error())
		os.Exit(1)
	}
	return pack
}

func main() {
	packPath := flag.String("content", os.Getenv("CONTENT_PACK"), "Path to a YAML content pack (empty = embedded default)")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	log.Println("[MINE-SERVER] Initializing 'Mina Profunda' Authoritative Server...")

	appLogger := logger.NewLogger()
	cfg := profileConfig()

	eventRepo, saveRepo, err := openRepositories(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize storage: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Bootstrapping EventLog...")
	eventPersister := storage.NewEventPersisterAdapter(eventRepo, engine.GameID)
	eventLog := events.NewEventLog(eventPersister)

	appLogger.Info("Bootstrapping Engine Subsystems...")
	gameEngine := engine.NewEngine(eventLog, appLogger, cfg)

	pack := loadPack(*packPath, appLogger)
	if err := pack.Install(gameEngine); err != nil {
		appLogger.Error("Content pack installation failed: " + err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the last save and grant offline progress for the downtime.
	record, err := saveRepo.Latest(ctx)
	if err != nil {
		appLogger.Error("Failed to query latest save: " + err.Error())
		os.Exit(1)
	}
	if record != nil {
		result := gameEngine.Deserialize(record.Document)
		if !result.Success {
			appLogger.Error("Save restore failed, starting fresh: " + result.Error)
		} else {
			away := time.Since(result.SavedAt).Seconds()
			report := gameEngine.CalculateOfflineProgress(away)
			if report.SimulatedSeconds > 0 {
				appLogger.Info("Offline progress granted for the downtime.")
			}
		}
	} else {
		appLogger.Info("No existing save. Starting a fresh run.")
	}

	gameEngine.Start(ctx)

	appLogger.Info("Bootstrapping Autosaver...")
	autosaver := save.NewAutosaver(gameEngine, saveRepo, cfg.AutosaveInterval, appLogger)
	go autosaver.Start(ctx)
	go func() {
		pruneTicker := time.NewTicker(10 * time.Minute)
		defer pruneTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-pruneTicker.C:
				if err := saveRepo.Prune(ctx, saveHistoryKeep); err != nil {
					appLogger.Warn("Save pruning failed: " + err.Error())
				}
			}
		}
	}()

	// Watch the collector for signs the loop or the save path is falling
	// behind and surface tuning advice in the log.
	go func() {
		tuneTicker := time.NewTicker(5 * time.Minute)
		defer tuneTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tuneTicker.C:
				rec := optimization.Analyze(metrics.Get().Snapshot())
				for _, note := range rec.Notes {
					appLogger.Warn("Tuning: " + note)
				}
			}
		}
	}()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(gameEngine, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, 200*time.Millisecond)
	hub.StartStatePusher(ctx, time.Second)

	stateCache := cache.NewStateCache(cache.NewMemoryClient())
	bridge := network.NewBridge(gameEngine, stateCache, autosaver, appLogger)
	history := network.NewHistoryHandler(eventLog, storage.NewRecapper(eventRepo), appLogger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	bridge.RegisterRoutes(mux)
	history.RegisterRoutes(mux)
	mux.Handle("/metrics/json", metrics.Handler())
	mux.Handle("/metrics/prometheus", metrics.PrometheusHandler())

	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		log.Printf("[MINE-SERVER] HTTP API & WS Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[MINE-SERVER] Server running. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[MINE-SERVER] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	// One last flush so the shutdown itself costs no progress.
	if err := autosaver.SaveNow(shutdownCtx); err != nil {
		appLogger.Error("Final save failed: " + err.Error())
	}
	cancel()
}
