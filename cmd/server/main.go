package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avolkov/sentichat/internal/app"
	"github.com/avolkov/sentichat/internal/config"
	"github.com/avolkov/sentichat/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagDBPath   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sentichat-server",
	Short: "Real-time group chat relay with sentiment annotation",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&flagDBPath, "db", "", "path to the SQLite database file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, _ []string) error {
	bootLogger := log.New("info")

	cfg, configPath, err := config.Load(bootLogger, flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override file and environment values.
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDBPath != "" {
		cfg.DatabasePath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", configPath).Str("addr", cfg.Addr).Msg("starting sentichat server")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
