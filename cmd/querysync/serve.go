package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/querysync-dev/querysync/internal/config"
	"github.com/querysync-dev/querysync/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the synchronization server",
		Long: `Start the WebSocket server that hosts one query state per
connected client, using the schema declared in querysync.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Address = addr
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			sch, err := cfg.Schema()
			if err != nil {
				return err
			}
			defaults, err := cfg.DecodedDefaults(sch)
			if err != nil {
				return err
			}
			read, write, debounce := cfg.Durations()

			srv := server.New(sch, &server.Config{
				Address:        cfg.Address,
				AllowedOrigins: cfg.AllowedOrigins,
				ReadTimeout:    read,
				WriteTimeout:   write,
				Debounce:       debounce,
				Defaults:       defaults,
				Logger:         logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success("serving %d params on %s", sch.Len(), cfg.Address)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to querysync.json (default: search from cwd)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// loadConfig resolves the config file: an explicit path wins, otherwise
// the working directory is searched.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if !config.Exists(wd) {
		return nil, fmt.Errorf("no %s found in %s (use --config)", config.ConfigFileName, wd)
	}
	return config.Load(wd)
}
