// Command itemforge computes and applies equipment rebalance patches.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/itemforge/internal/config"
	"github.com/l1jgo/itemforge/internal/core/event"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "itemforge",
	Short:         "Equipment rebalance engine",
	Long:          `itemforge scales mod equipment against a template set and replays the resulting patch documents onto the item catalog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (defaults only when empty)")
	rootCmd.AddCommand(applyCmd, computeCmd, analyzeCmd, tokenizeCmd)
}

// app holds what every engine-backed command needs.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	bus  *event.Bus
	diag *diagnostics
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	bus := event.NewBus()
	diag := &diagnostics{}
	diag.subscribe(bus)
	return &app{cfg: cfg, log: log, bus: bus, diag: diag}, nil
}

// finish delivers queued events, prints the diagnostics line and turns a
// latched critical error into the command's error.
func (a *app) finish() error {
	a.bus.Flush()
	a.diag.print(os.Stderr)
	_ = a.log.Sync()
	if a.diag.critical != nil {
		return fmt.Errorf("critical error: %w", a.diag.critical)
	}
	return nil
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
