// Package main provides the eqrm binary: one-shot catalog runs and an HTTP
// service for repeated runs against a hot-reloaded config.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dunkgray/eqrm/internal/api"
	"github.com/dunkgray/eqrm/internal/config"
	"github.com/dunkgray/eqrm/internal/engine"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(out io.Writer) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:           "eqrm",
		Short:         "Synthetic earthquake catalogs and event activity",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.AddCommand(runCmd(out), serveCmd())
	return cmd
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func loadConfig(path string) (*config.Loader, error) {
	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(loader.Config()); err != nil {
		return nil, err
	}
	return loader, nil
}

func runCmd(out io.Writer) *cobra.Command {
	var (
		cfgPath string
		seed    uint64
		opts    engine.RunOptions
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured simulation once and print a JSON summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg := *loader.Config()
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			res, err := engine.Run(cmd.Context(), &cfg, opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "configs/eqrm.yaml", "Path to run config YAML")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override the config seed")
	cmd.Flags().BoolVar(&opts.IncludeCatalog, "catalog", false, "Include the event catalog in the output")
	cmd.Flags().BoolVar(&opts.IncludeRates, "rates", false, "Include per-event rates in the output")
	return cmd
}

func serveCmd() *cobra.Command {
	var cfgPath, addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve runs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfgPath, addr)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "configs/eqrm.yaml", "Path to run config YAML")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	return cmd
}

func serve(cfgPath, addr string) error {
	loader, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	slog.Info("config loaded", "path", cfgPath, "zones", len(cfg.Zones), "faults", len(cfg.Faults), "scenario", cfg.Scenario != nil)

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, cfg)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.RunConfig) {
		eng.SwapConfig(newCfg)
		slog.Info("config hot-reloaded", "zones", len(newCfg.Zones), "faults", len(newCfg.Faults))
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(eng, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Duration(cfg.Engine.RunTimeoutMs)*time.Millisecond + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel()
	eng.Shutdown()
	slog.Info("goodbye")
	return nil
}
