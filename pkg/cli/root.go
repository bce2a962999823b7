// pkg/cli/root.go
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gdefombelle/pytune-helpers-images/internal/config"
	"github.com/gdefombelle/pytune-helpers-images/internal/logger"
)

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	rootCmd := &cobra.Command{
		Use:   "pytune-images",
		Short: "Extract and normalize photo metadata",
		Long:  `Helpers for photo metadata: EXIF GPS extraction and decimal normalization, reverse geocoding, image compression and object storage access.`,
	}

	cfg := config.New()
	var configFile string
	var logLevel string

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		*cfg = *loaded

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		logger.SetLevel(cfg.LogLevel)
		return nil
	}

	// Add commands
	rootCmd.AddCommand(newInspectCommand(cfg))
	rootCmd.AddCommand(newCompressCommand(cfg))
	rootCmd.AddCommand(newLocateCommand(cfg))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}
