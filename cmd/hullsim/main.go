// Command hullsim runs the Needle Hull energy pipeline daemon: it computes
// the calibrated configuration for the selected mode, serves it over HTTP,
// and records snapshot history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/needle-hull/internal/api"
	"github.com/talgya/needle-hull/internal/collab"
	"github.com/talgya/needle-hull/internal/config"
	"github.com/talgya/needle-hull/internal/persistence"
	"github.com/talgya/needle-hull/internal/physics"
	"github.com/talgya/needle-hull/internal/snapshot"
)

func main() {
	configPath := flag.String("config", "hullsim.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	slog.Info("Needle Hull Mk-1 energy pipeline daemon")
	slog.Info("pipeline constants",
		"hbarc", physics.HBarC,
		"sectors", physics.DefaultSectorCount,
		"burst_duty", physics.BurstDutyLocal,
		"reference_duty", physics.ReferenceDuty,
	)

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Collaborators ─────────────────────────────────────────────────
	collaborators := collab.Set(
		cfg.Collaborators.MetricURL,
		cfg.Collaborators.DynamicCasimirURL,
		cfg.Collaborators.WarpModuleURL,
	)
	if len(collaborators) == 0 {
		slog.Warn("no collaborators configured, optional diagnostics will be absent")
	} else {
		slog.Info("collaborators configured", "count", len(collaborators))
	}

	// ── Pipeline ──────────────────────────────────────────────────────
	eng := physics.NewEngine(collaborators...)

	st := eng.State()
	st.Mode = physics.Mode(cfg.Mode)
	if !physics.KnownMode(st.Mode) {
		slog.Warn("unknown mode in config, falling back to hover", "mode", cfg.Mode)
		st.Mode = physics.ModeHover
	}
	st.StrobeHz = cfg.StrobeHz
	eng.SetState(st)

	ctx := context.Background()
	st = eng.Recompute(ctx)

	slog.Info("initial configuration",
		"mode", st.Mode,
		"status", st.OverallStatus,
		"tiles", humanize.Comma(int64(st.TileCount)),
		"power_mw", fmt.Sprintf("%.1f", st.PowerAvgMW),
		"exotic_mass_kg", fmt.Sprintf("%.1f", st.ExoticMassKg),
		"zeta", fmt.Sprintf("%.3f", st.Zeta),
		"compliant", st.FordRomanCompliance,
	)

	if _, err := db.SaveSnapshot(snapshot.Build(st)); err != nil {
		slog.Error("initial snapshot save failed", "error", err)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("HULLSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HULLSIM_ADMIN_KEY not set, parameter POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Eng:      eng,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Telemetry loop ────────────────────────────────────────────────
	// Re-audit and record a history row every minute; prune weekly depth.
	// Engine access goes through apiServer so the ticker and the HTTP
	// handlers share one lock.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				cur := apiServer.Recompute(ctx)
				if _, err := db.SaveSnapshot(snapshot.Build(cur)); err != nil {
					slog.Error("telemetry snapshot save failed", "error", err)
				}
				if err := db.PruneSnapshots(10080); err != nil {
					slog.Error("snapshot prune failed", "error", err)
				}
			}
		}
	}()

	fmt.Printf("\nNeedle Hull is live: %s tiles across %d sectors, %s average.\n",
		humanize.Comma(int64(st.TileCount)), st.SectorCount,
		humanize.SI(st.PowerAvgMW*1e6, "W"))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Running... (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	close(done)

	// Final history row on the way out.
	if _, err := db.SaveSnapshot(snapshot.Build(apiServer.CurrentState())); err != nil {
		slog.Error("final snapshot save failed", "error", err)
	}
	fmt.Println("Pipeline stopped. Snapshot history saved.")
}

// setupLogging configures slog: text for terminals, JSON otherwise.
func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
