package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saraasara/wakes/internal/config"
	"github.com/saraasara/wakes/internal/core/event"
	coresys "github.com/saraasara/wakes/internal/core/system"
	"github.com/saraasara/wakes/internal/data"
	"github.com/saraasara/wakes/internal/persist"
	"github.com/saraasara/wakes/internal/scripting"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/system"
	"github.com/saraasara/wakes/internal/wake"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var printer = message.NewPrinter(language.English)

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              wakesim  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      water wake simulation & indexing     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mInstance:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	valStr := printer.Sprintf("%v", value)
	dotsLen := 42 - len(label) - len(valStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), valStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/wakesim.toml"
	if p := os.Getenv("WAKES_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fileCfg := *cfg // as read from disk, before a stored resolution overrides it

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	bus := event.NewBus()
	runner := coresys.NewRunner()

	// 3. Optional PostgreSQL for stored resolutions
	var settingsRepo *persist.SettingsRepo
	if cfg.Database.Enabled {
		printSection("Database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		settingsRepo = persist.NewSettingsRepo(db)
		stored, ok, err := settingsRepo.LoadResolution(ctx, cfg.World.Name)
		if err != nil {
			return fmt.Errorf("load stored resolution: %w", err)
		}
		if ok {
			applyStoredResolution(cfg, stored, log)
		}
		fmt.Println()
	}

	// 4. Decay model and wake settings
	printSection("Wakes")
	var model wake.DecayModel = wake.DefaultDecayModel
	if cfg.Wakes.ResolutionTable != "" {
		table, err := data.LoadResolutionTable(cfg.Wakes.ResolutionTable)
		if err != nil {
			return fmt.Errorf("load resolution table: %w", err)
		}
		printStat("resolution profiles", table.Count())
		model = table
	}
	settings := wake.NewSettings(wake.Resolution(cfg.Wakes.Resolution), model)
	printStat("resolution", int(settings.Resolution))
	printStat("decay horizon (ticks)", settings.Decay.Horizon)

	host := session.NewHost(settings, session.Options{
		Log: log,
		Bus: bus,
		Index: wake.IndexOptions{
			BucketCapacity: cfg.Wakes.BucketCapacity,
			MaxDepth:       cfg.Wakes.MaxDepth,
		},
		QueryRange: cfg.Wakes.QueryRange,
	})
	world := worldBounds(cfg.World)
	host.LoadWorld(world)
	defer host.UnloadWorld()
	printStat("layers", cfg.World.MaxY-cfg.World.MinY+1)
	printStat("horizontal extent", int64(cfg.World.HalfExtent*2))

	// 5. Lua producers
	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	luaEngine.SetWorld(world)
	printOK("Lua scripts loaded")
	fmt.Println()

	// 6. Systems
	viewer := system.NewViewerSystem(host, cfg.Viewer, log)
	runner.Register(system.NewSpawnSystem(host, luaEngine))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewWakeSystem(host))
	runner.Register(system.NewStatsSystem(host, log, cfg.Sim.StatsInterval))
	runner.Register(viewer)
	reloader := &configReloader{path: cfgPath, file: &fileCfg, host: host, viewer: viewer, log: log}
	var persistSys *system.SettingsPersistSystem
	if settingsRepo != nil {
		persistSys = system.NewSettingsPersistSystem(bus, settingsRepo, log)
		runner.Register(persistSys)
	}

	// 7. Metrics endpoint
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		var admin http.ServeMux
		admin.Handle("/metrics", promhttp.Handler())
		admin.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		metricsSrv = &http.Server{Addr: cfg.Metrics.BindAddress, Handler: &admin}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// 8. Start simulation loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	reloadCh := make(chan os.Signal, 1)
	signal.Notify(reloadCh, syscall.SIGHUP)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	var frameC <-chan time.Time
	if cfg.Sim.FrameRate > 0 {
		frames := time.NewTicker(cfg.Sim.FrameRate)
		defer frames.Stop()
		frameC = frames.C
	}

	printSection("Ready")
	printReady(fmt.Sprintf("world %s (y %d..%d)", cfg.World.Name, cfg.World.MinY, cfg.World.MaxY))
	printReady(fmt.Sprintf("simulation loop started (tick: %s, frame: %s)", cfg.Sim.TickRate, cfg.Sim.FrameRate))
	if metricsSrv != nil {
		printReady(fmt.Sprintf("metrics on http://%s/metrics", cfg.Metrics.BindAddress))
	}
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Sim.TickRate)
		case <-frameC:
			runner.TickPhase(coresys.PhaseOutput, cfg.Sim.FrameRate)
		case <-reloadCh:
			reloader.reload()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			// drain committed changes before closing the pool
			bus.SwapBuffers()
			bus.DispatchAll()
			if persistSys != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				persistSys.Flush(ctx)
				cancel()
			}
			if metricsSrv != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				metricsSrv.Shutdown(ctx)
				cancel()
			}
			log.Info("simulation stopped")
			return nil
		}
	}
}

func worldBounds(cfg config.WorldConfig) wake.WorldBounds {
	return wake.WorldBounds{
		Name:       cfg.Name,
		MinY:       cfg.MinY,
		MaxY:       cfg.MaxY,
		Horizontal: wake.SquareAround(0, 0, cfg.HalfExtent),
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
