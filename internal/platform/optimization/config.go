// Package optimization provides simulation and concurrency tuning.
package optimization

import (
	"runtime"
	"time"
)

// Config holds tuned parameters for the simulation loop and the
// surrounding infrastructure.
type Config struct {
	// Simulation cadence
	TickInterval time.Duration

	// Bulk purchase scans stop at this many levels per call.
	MaxAffordableIterations int

	// Offline progress clamps
	OfflineMinSeconds   float64
	OfflineLimitSeconds float64

	// Persistence
	AutosaveInterval time.Duration

	// Channel buffer sizes
	EventChannelBuffer     int
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Rate limiting
	MaxActionsPerSecond int
	MaxClientsPerGame   int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		TickInterval: 100 * time.Millisecond,

		MaxAffordableIterations: 10_000,

		OfflineMinSeconds:   60,         // below this, the absence is ignored
		OfflineLimitSeconds: 8 * 3600,   // offline earnings cap

		AutosaveInterval: 30 * time.Second,

		// Channel buffers - larger = more memory, less blocking
		EventChannelBuffer:     1024, // Handle bursts
		BroadcastChannelBuffer: 256,  // Per client
		ClientSendBuffer:       64,   // Per WebSocket

		// Database connections
		DBMaxOpenConns: numCPU * 4, // 4 connections per CPU
		DBMaxIdleConns: numCPU * 2, // Keep half warm

		// Rate limits
		MaxActionsPerSecond: 100, // Per client
		MaxClientsPerGame:   200, // Per game instance
	}
}

// StressTestConfig returns aggressive settings for stress testing.
func StressTestConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		TickInterval: 50 * time.Millisecond,

		MaxAffordableIterations: 100_000,

		OfflineMinSeconds:   0,
		OfflineLimitSeconds: 24 * 3600,

		AutosaveInterval: 10 * time.Second,

		EventChannelBuffer:     4096,
		BroadcastChannelBuffer: 512,
		ClientSendBuffer:       128,

		DBMaxOpenConns: numCPU * 8,
		DBMaxIdleConns: numCPU * 4,

		MaxActionsPerSecond: 500,
		MaxClientsPerGame:   500,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		TickInterval: 250 * time.Millisecond,

		MaxAffordableIterations: 1_000,

		OfflineMinSeconds:   60,
		OfflineLimitSeconds: 2 * 3600,

		AutosaveInterval: 60 * time.Second,

		EventChannelBuffer:     64,
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		DBMaxOpenConns: 5,
		DBMaxIdleConns: 2,

		MaxActionsPerSecond: 10,
		MaxClientsPerGame:   20,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseTickInterval    bool
	IncreaseBroadcastBuffer bool
	IncreaseDBConnections   bool
	LowerAffordableCeiling  bool
	Notes                   []string
}

// Analyze examines current metrics and returns optimization recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	// Check tick latency
	if tick, ok := metrics["tick"].(map[string]interface{}); ok {
		if maxLat, ok := tick["max_latency_ms"].(float64); ok && maxLat > 100 {
			rec.IncreaseTickInterval = true
			rec.LowerAffordableCeiling = true
			rec.Notes = append(rec.Notes, "Tick latency exceeds 100ms - slow the cadence or lower the bulk purchase ceiling")
		}
	}

	// Check save latency
	if saves, ok := metrics["saves"].(map[string]interface{}); ok {
		if maxLat, ok := saves["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Save write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := saves["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Save write errors detected - check DB connection pool")
		}
	}

	// Check WebSocket backpressure
	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseTickInterval {
		config.TickInterval *= 2
	}
	if rec.LowerAffordableCeiling {
		config.MaxAffordableIterations /= 2
	}
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns) * 1.5)
		config.DBMaxIdleConns = int(float64(config.DBMaxIdleConns) * 1.5)
	}
	return config
}
