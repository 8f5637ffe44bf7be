package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/di"
)

var (
	dataPath string
	envFile  string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "fritterctl",
	Short: "Administer a Fritter data directory",
	Long: `fritterctl inspects and maintains the stores a Fritter server runs on.

It opens the graph and freet databases directly, so stop the server
before running commands that write.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Data directory (default: $DATA_PATH or ~/Fritter)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show store logs")

	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(backupCmd)
}

// loadConfig resolves the server configuration, letting --data win over
// the environment.
func loadConfig() (*config.Config, error) {
	args := []string{"-env-file", envFile}
	if dataPath != "" {
		args = append(args, "-data-path", dataPath)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	if !verbose {
		cfg.Logger.Level = "warn"
	}
	return cfg, nil
}

// withContainer opens the stores for a single command and releases them
// when fn returns.
func withContainer(fn func(ctx context.Context, injector do.Injector) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	injector := di.NewCLIContainer(cfg)

	runErr := fn(context.Background(), injector)
	if err := injector.Shutdown(); err != nil && runErr == nil {
		return fmt.Errorf("close stores: %v", err)
	}
	return runErr
}
