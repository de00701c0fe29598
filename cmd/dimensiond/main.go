package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/dimension/internal/config"
	"github.com/l1jgo/dimension/internal/core/event"
	coresys "github.com/l1jgo/dimension/internal/core/system"
	"github.com/l1jgo/dimension/internal/data"
	"github.com/l1jgo/dimension/internal/dimension"
	"github.com/l1jgo/dimension/internal/persist"
	"github.com/l1jgo/dimension/internal/scripting"
	"github.com/l1jgo/dimension/internal/system"
	"github.com/l1jgo/dimension/internal/world"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:           "dimensiond",
		Short:         "Loads, saves, unloads and leak-audits game worlds",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return run(resolveConfigPath(cfgPath))
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default $DIMENSIOND_CONFIG, then config/server.toml)")
	return cmd
}

func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv("DIMENSIOND_CONFIG"); p != "" {
		return p
	}
	return "config/server.toml"
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            dimensiond  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 40 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run(cfgPath string) error {
	// 1. Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	worldRepo := persist.NewWorldRepo(db)

	// 4. Load world definitions and hook scripts
	printSection("data")

	worldTable, err := data.LoadWorldTable(cfg.Data.WorldList)
	if err != nil {
		return fmt.Errorf("load world table: %w", err)
	}
	printStat("world definitions", worldTable.Count())

	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua hooks loaded")
	fmt.Println()

	// 5. Create the world manager and route its events to the hooks
	bus := event.NewBus()
	manager := dimension.NewManager(cfg.Dimension, worldRepo, event.BusNotifier{Bus: bus}, log)

	event.Subscribe(bus, func(ev event.WorldLoaded) {
		log.Info("world loaded", zap.Int32("world_id", ev.ID), zap.String("name", ev.Name))
	})
	event.Subscribe(bus, func(ev event.WorldUnloaded) {
		luaEngine.OnWorldUnload(ev.ID, ev.Name)
	})
	event.Subscribe(bus, func(ev event.WorldLeakSuspected) {
		luaEngine.OnWorldLeak(ev.Token.String(), ev.Name, ev.Count)
	})

	// 6. Construct and register autoload worlds
	printSection("worlds")
	loaded, err := loadWorlds(ctx, manager, bus, worldTable, worldRepo, luaEngine, log)
	if err != nil {
		return fmt.Errorf("load worlds: %w", err)
	}
	printStat("worlds loaded", loaded)
	fmt.Println()

	// 7. Create systems and register with runner
	runner := coresys.NewRunner()
	autoSave := system.NewAutoSaveSystem(manager, worldRepo, log, cfg.Dimension.AutoSaveInterval, cfg.Dimension.SaveTimeout)
	leakAudit := system.NewLeakAuditSystem(manager, bus, log, cfg.Dimension.AuditInterval)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(autoSave)
	runner.Register(system.NewUnloadSystem(manager))
	runner.Register(leakAudit)

	// 8. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Dimension.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("tick loop started (tick: %s)", cfg.Dimension.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Dimension.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdown(manager, runner, leakAudit, log)
			log.Info("server stopped")
			return nil
		}
	}
}

// loadWorlds builds every autoload world, restores its chunks from storage and
// registers it. A world vetoed by the on_world_load hook is skipped.
func loadWorlds(ctx context.Context, manager *dimension.Manager, bus *event.Bus, table *data.WorldTable, repo *persist.WorldRepo, hooks *scripting.Engine, log *zap.Logger) (int, error) {
	count := 0
	for _, def := range table.All() {
		if !def.Autoload {
			continue
		}
		if !hooks.OnWorldLoad(def.ID, def.Name) {
			log.Info("world load vetoed by hook", zap.Int32("world_id", def.ID), zap.String("name", def.Name))
			continue
		}
		chunks, err := repo.LoadChunks(ctx, def.ID)
		if err != nil {
			return count, err
		}
		w := world.New(def.ID, def.Name)
		w.Restore(chunks)
		if err := manager.Register(def.ID, w); err != nil {
			return count, err
		}
		event.Emit(bus, event.WorldLoaded{ID: def.ID, Name: def.Name})
		count++
	}
	return count, nil
}

// shutdown unloads every world through the regular drain, so each one is
// saved and announced, then runs a last leak audit.
func shutdown(manager *dimension.Manager, runner *coresys.Runner, leakAudit *system.LeakAuditSystem, log *zap.Logger) {
	for _, id := range manager.AllIDs(false) {
		manager.QueueUnload(id)
	}
	runner.TickPhase(coresys.PhaseUnload, 0)
	leakAudit.Audit()
	// deliver the final unload notifications to the hooks
	runner.TickPhase(coresys.PhaseDispatch, 0)
	log.Info("worlds unloaded", zap.Int("tracked", manager.Tracked()))
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
