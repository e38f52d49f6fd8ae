package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hexedgo/server/internal/config"
	"github.com/hexedgo/server/internal/core/event"
	coresys "github.com/hexedgo/server/internal/core/system"
	"github.com/hexedgo/server/internal/hud"
	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/persist"
	"github.com/hexedgo/server/internal/scripting"
	"github.com/hexedgo/server/internal/system"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	ConfigPath string `env:"HEXED_CONFIG" envDefault:"config/hexed.toml"`
	Console    bool   `env:"HEXED_CONSOLE"`
}

// parseOptions reads HEXED_CONFIG and HEXED_CONSOLE, then lets flags override them.
func parseOptions(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	if err := env.Parse(&opts); err != nil {
		return options{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "path to the TOML config")
	fs.BoolVar(&opts.Console, "console", opts.Console, "read operator commands from stdin")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              hexed  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        territory control engine           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run(args []string) error {
	// 1. Options and config
	opts, err := parseOptions(flag.NewFlagSet("hexed", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Static data and layout generators
	printSection("data")
	a, err := loadAssets(cfg.Data)
	if err != nil {
		return err
	}
	printStat("blocks", a.blocks.Count())
	printStat("base schematic tiles", len(a.base.Tiles))
	printStat("static layouts", a.layouts.Count())

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	a.gen = luaEngine
	printStat("layout generators", len(luaEngine.Names()))
	fmt.Println()

	printer, err := hud.New(cfg.Server.Locale)
	if err != nil {
		return fmt.Errorf("hud: %w", err)
	}

	// 4. Optional database
	rec := &recorder{hud: printer, log: log, timeout: 5 * time.Second}
	if cfg.Database.DSN != "" {
		printSection("database")
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
		fmt.Println()

		rec.matches = persist.NewMatchRepo(db)
		rec.captures = persist.NewCaptureLog(db, 0, log)
	} else {
		log.Info("database disabled, match records are not kept")
	}

	// 5. Host and first match
	bus := event.NewBus()
	rec.subscribe(bus)
	host := match.NewHost(newBuilder(cfg.Match, a, bus, log))
	m, err := host.Start(cfg.Match.Generator)
	if err != nil {
		return err
	}

	// 6. Systems
	inbox := system.NewInbox(cfg.Server.InboxSize)
	runner := coresys.NewRunner(log)
	runner.Register(system.NewInputSystem(host, inbox, cfg.Server.MaxEvents, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewClockSystem(host))
	runner.Register(system.NewSchedulerSystem(host))
	runner.Register(system.NewZoneEvaluationSystem(host, log))
	runner.Register(system.NewPlayerSweepSystem(host))
	runner.Register(system.NewLeaderboardSystem(host))
	runner.Register(system.NewRotationSystem(host, cfg.Match.Generator, cfg.Match.RestartDelay, log))
	var persistSys *system.PersistSystem
	if rec.captures != nil {
		persistSys = system.NewPersistSystem(rec.captures, log)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(host))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if opts.Console {
		c := &console{inbox: inbox, hud: printer, out: os.Stdout, generator: cfg.Match.Generator, timeout: 2 * time.Second}
		go c.run(ctx, os.Stdin)
	}

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("match %s with %d zones", m.Name(), m.Ledger().Layout().Len()))
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			if failed := runner.Tick(cfg.Server.TickRate); failed > 0 {
				log.Warn("tick finished with failed systems", zap.Int("failed", failed))
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			stop()
			// Deliver events still queued so their records reach the capture log.
			bus.Flush()
			if persistSys != nil {
				flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := persistSys.FlushNow(flushCtx); err != nil {
					log.Error("final capture log flush", zap.Error(err))
				}
				cancel()
			}
			log.Info("server stopped", zap.Duration("uptime", time.Since(time.Unix(cfg.Server.StartTime, 0)).Round(time.Second)))
			return nil
		}
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
