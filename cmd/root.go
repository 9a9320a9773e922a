package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/keroloshany47/retail-etl/config"
	"github.com/keroloshany47/retail-etl/constants"
	"github.com/keroloshany47/retail-etl/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "etl",
	Short:        "retail sales etl: extract, clean, transform, model and chart",
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newQualityCmd())
	rootCmd.AddCommand(newTransformCmd())
	rootCmd.AddCommand(newModelCmd())
	rootCmd.AddCommand(newVisualizeCmd())
	rootCmd.AddCommand(newScheduleCmd())
}

func initializeConfigAndLogger(stage string) (*config.Config, *slog.Logger, error) {
	log := logger.NewLogger()
	if err := godotenv.Load("config.env"); err != nil {
		log.Warn("Could not load config.env, using process environment", "error", err)
	}

	// 1. Base configuration, optional
	var base *os.File
	if f, err := os.Open("config.base.yaml"); err == nil {
		base = f
		defer base.Close()
	} else if !os.IsNotExist(err) {
		log.Error(fmt.Sprintf("Error opening base config file: %v", err))
		return nil, nil, err
	}

	// 2. Environment-specific overlay, if present
	env := os.Getenv("APP_ENV")
	var envConfigFile *os.File
	envConfigFilename := fmt.Sprintf("config.%s.yaml", env)
	if _, err := os.Stat(envConfigFilename); err == nil {
		envConfigFile, err = os.Open(envConfigFilename)
		if err != nil {
			log.Error(fmt.Sprintf("Error opening environment config file: %v", err))
			return nil, nil, err
		}
		defer envConfigFile.Close()
	}

	// 3. Create the config; nil readers fall back to defaults
	cfg, err := config.NewConfig(readerOrNil(base), readerOrNil(envConfigFile), env)
	if err != nil {
		log.Error(fmt.Sprintf("Error reading config: %v", err))
		return nil, nil, err
	}

	return cfg, logger.NewLoggerFromConfig(os.Stdout, cfg.Log, stage, os.Getenv(constants.RunIDEnv)), nil
}

// readerOrNil keeps a nil *os.File from becoming a non-nil io.Reader.
func readerOrNil(f *os.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
