package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/itme/solidacl/internal/devpod"
	"github.com/itme/solidacl/internal/version"
)

const defaultAddr = "127.0.0.1:3080"

func main() {
	var addr string
	var baseURL string
	var dbPath string
	var seedFile string
	var debug bool

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:     "devpod",
		Short:   "Local development pod server with hierarchical ACLs",
		Version: version.Detailed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debug)

			server, err := devpod.New(&devpod.Config{
				Addr:     addr,
				BaseURL:  baseURL,
				DBPath:   dbPath,
				SeedFile: seedFile,
			})
			if err != nil {
				return err
			}

			defer slog.Info("Bye!")
			return server.Start(cmd.Context())
		},
	}

	rootCmd.Flags().StringVarP(&addr, "bind", "b", defaultAddr, "Address to bind the server")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "External base URL (defaults to http://<bind>)")
	rootCmd.Flags().StringVar(&dbPath, "db", ":memory:", "SQLite database path")
	rootCmd.Flags().StringVar(&seedFile, "seed", "", "YAML fixture to load at startup")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}
