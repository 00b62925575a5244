package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fieldscope/vztrack/internal/paths"
	"github.com/fieldscope/vztrack/pkg/types"
)

// Global flag values.
var (
	flagConfigDir  string
	flagLocalRoot  string
	flagSharedRoot string
	flagUsername   string
	flagJSON       bool
)

// Resolved once by PersistentPreRunE; all subcommands read these.
var (
	cfg        types.Config
	localRoot  string
	sharedRoot string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "vztrack",
	Short:   "vztrack is an offline-first telecom project tracker",
	Version: version,
	Long: `vztrack tracks telecom projects in a personal local store, packages
pending changes into sync bundles dropped on a shared directory, and merges
bundles from all users into a single master store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return fmt.Errorf("resolving config dir: %w", err)
		}

		cfg, err = loadConfig(configDir)
		if err != nil {
			return err
		}

		localRoot, err = paths.ResolveLocalRoot(flagLocalRoot, cfg.LocalRoot)
		if err != nil {
			return fmt.Errorf("resolving local root: %w", err)
		}
		sharedRoot, err = paths.ResolveSharedRoot(flagSharedRoot, cfg.SharedRoot)
		if err != nil {
			return fmt.Errorf("resolving shared root: %w", err)
		}

		logger, err = newLogger(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLocalRoot, "local-root", "", "directory holding per-user local stores")
	rootCmd.PersistentFlags().StringVar(&flagSharedRoot, "shared-root", "", "shared directory holding the master store and sync inbox")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "acting username (default: $USER)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(kpiCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(depCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(searchCmd)
}

// newLogger builds the zap logger from config: json or console encoding at
// the configured level.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		lvl, err = zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", types.ErrLogLevelUnknown, level)
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	if format != "json" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zcfg.Build()
}

// currentUsername resolves the acting username: --username flag first, then
// the operating system login.
func currentUsername() (string, error) {
	if flagUsername != "" {
		return flagUsername, nil
	}
	if u := os.Getenv("USER"); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("username not set: pass --username")
}
