package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/contentitem/pkg/contentitem/config"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load()

	rootCmd := NewRootCommand(stackFromEnv)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stackFactory builds the components a command operates on.
type stackFactory func(ctx context.Context, logger *slog.Logger) (*config.Stack, error)

func stackFromEnv(ctx context.Context, logger *slog.Logger) (*config.Stack, error) {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return nil, err
	}
	return cfg.Build(ctx, logger)
}

func NewRootCommand(newStack stackFactory) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "contentctl",
		Short: "Manage content items and their data",
		Long: `contentctl works directly against the registry and storage selected by
DATABASE_URL and STORAGE_URL (see "contentctl env").`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	open := func(cmd *cobra.Command) (*config.Stack, error) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return newStack(cmd.Context(), logger)
	}

	rootCmd.AddCommand(
		newMigrateCommand(open),
		newCreateCommand(open),
		newPutCommand(open),
		newGetCommand(open),
		newShowCommand(open),
		newListCommand(open),
		newDeleteCommand(open),
		newVerifyCommand(open),
		newEnvCommand(),
	)

	return rootCmd
}
