// Package main is the entry point for the tutor CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorbot/tutor/internal/config"
	"github.com/tutorbot/tutor/internal/workspace"
	"github.com/tutorbot/tutor/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultConfigPath = "tutor.yaml"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tutor",
		Short:         "A chat-integrated Magic: The Gathering card lookup assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), workspacesCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("tutor %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start tutor with all authorized workspaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return app.Run(app.RunParams{
				ConfigPath: cfgPath,
				Version:    version,
			})
		},
	}
	cmd.Flags().StringP("config", "c", defaultConfigPath, "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Println("Configuration is valid.")
			return nil
		},
	})
	return cmd
}

func workspacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List authorized workspaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			store, err := workspace.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			workspaces, err := store.ListEnabled(ctx)
			if err != nil {
				return err
			}
			if len(workspaces) == 0 {
				fmt.Println("No authorized workspaces.")
				return nil
			}
			for _, ws := range workspaces {
				fmt.Printf("%-8s %-12s %s\n", ws.Platform, ws.ID, ws.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", defaultConfigPath, "Path to configuration file")
	return cmd
}
