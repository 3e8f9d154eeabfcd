// Chroma Core - Colour Animation Engine
//
// This is the main entry point for the Chroma Core application.
// Chroma Core drives colour-cycling animations across MQTT-connected
// lights:
//   - Smooth gradient interpolation between palette colours
//   - Synchronised and staggered multi-light animation modes
//   - Offline-first operation against a local MQTT broker
//
// For architecture details, see: docs/architecture/system-overview.md
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/chroma-core/migrations"

	"github.com/nerrad567/chroma-core/internal/animation"
	"github.com/nerrad567/chroma-core/internal/api"
	"github.com/nerrad567/chroma-core/internal/auth"
	"github.com/nerrad567/chroma-core/internal/infrastructure/config"
	"github.com/nerrad567/chroma-core/internal/infrastructure/database"
	"github.com/nerrad567/chroma-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/chroma-core/internal/infrastructure/logging"
	"github.com/nerrad567/chroma-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/chroma-core/internal/light"
	"github.com/nerrad567/chroma-core/internal/palette"
	"github.com/nerrad567/chroma-core/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Chroma Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise light registry
	lightRegistry := light.NewRegistry(light.NewSQLiteRepository(db.DB))
	lightRegistry.SetLogger(log)
	if refreshErr := lightRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading light registry: %w", refreshErr)
	}
	log.Info("light registry initialised", "lights", lightRegistry.GetLightCount())

	// Initialise palette registry
	paletteRegistry := palette.NewRegistry(palette.NewSQLiteRepository(db.DB))
	paletteRegistry.SetLogger(log)
	if refreshErr := paletteRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading palette registry: %w", refreshErr)
	}
	log.Info("palette registry initialised", "palettes", paletteRegistry.GetPaletteCount())

	// Load runtime settings, seeding config-sourced defaults
	settingsStore := settings.NewStore(db.DB)
	settingsStore.SetLogger(log)
	if loadErr := settingsStore.Load(ctx, animationDefaults(cfg.Animation)); loadErr != nil {
		return fmt.Errorf("loading settings: %w", loadErr)
	}
	log.Info("settings loaded")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Colour applier: availability checks + MQTT command publishing
	applier := light.NewApplier(lightRegistry, mqttClient, log)
	if influxClient != nil {
		applier.SetMetrics(influxClient)
	}

	// WebSocket hub is created here rather than inside the API server so
	// the animation manager can broadcast lifecycle events through it.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Animation manager: colour-cycling loops
	animationManager := animation.NewManager(applier, hub, log)
	if influxClient != nil {
		animationManager.SetMetrics(influxClient)
	}
	defer func() {
		log.Info("stopping animations")
		animationManager.StopAll()
	}()

	// Palette service: palette application and animation orchestration
	paletteService := palette.NewService(paletteRegistry, applier, animationManager, log)

	// Seed the admin account on first run
	userRepo := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	}

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:         cfg.API,
		WS:             cfg.WebSocket,
		Security:       cfg.Security,
		Logger:         log,
		Lights:         lightRegistry,
		Palettes:       paletteRegistry,
		PaletteService: paletteService,
		Settings:       settingsStore,
		Animations:     animationManager,
		Applier:        applier,
		MQTT:           mqttClient,
		DB:             db,
		Users:          userRepo,
		ExternalHub:    hub,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"tls", cfg.API.TLS.Enabled,
	)

	// Watch the config file for changes; animation defaults are refreshed
	// without restarting, API overrides are preserved.
	go func() {
		watchErr := config.Watch(ctx, configPath, log, func(reloaded *config.Config) {
			if applyErr := settingsStore.ApplyConfig(ctx, animationDefaults(reloaded.Animation)); applyErr != nil {
				log.Error("applying reloaded config to settings", "error", applyErr)
			}
		})
		if watchErr != nil {
			log.Warn("config watch unavailable", "error", watchErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server (drains in-flight requests)
	// 2. Animation loops
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Chroma Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CHROMA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CHROMA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// animationDefaults converts configured animation defaults to the runtime
// settings representation.
func animationDefaults(cfg config.AnimationConfig) settings.Settings {
	return settings.Settings{
		Brightness:   cfg.Brightness,
		Speed:        cfg.Speed,
		StepsBetween: cfg.StepsBetween,
		GroupMode:    cfg.GroupMode,
		Transition:   cfg.Transition,
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
