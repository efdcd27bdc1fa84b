// Package main is the entry point for the chefbot CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/chefbot/internal/config"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/security"
	"github.com/flemzord/chefbot/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chefbot",
		Short:         "A recipe assistant with bounded conversation memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.AddCommand(versionCmd(), chatCmd(), serveCmd(), initCmd(), configCmd())
	return root
}

func runParams(cmd *cobra.Command) app.RunParams {
	cfgPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return app.RunParams{
		ConfigPath: cfgPath,
		Version:    version,
		Commit:     commit,
		Date:       date,
		LogLevel:   level,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "chefbot %s (commit: %s, built: %s)\n", version, commit, date)
	mods := core.GetModules()
	if len(mods) == 0 {
		fmt.Fprintln(w, "\nNo compiled modules.")
		return
	}
	fmt.Fprintln(w, "\nCompiled modules:")
	for _, mod := range mods {
		fmt.Fprintf(w, "  %s\n", mod.ID)
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the recipe assistant in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conversation, _ := cmd.Flags().GetString("conversation")
			return app.Chat(cmd.Context(), runParams(cmd), conversation, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("conversation", "", "Conversation ID (defaults to memory.conversation_id)")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the recipe assistant over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runParams(cmd)
			if debug, _ := cmd.Flags().GetBool("debug"); !debug {
				params.LogLevel = slog.LevelInfo
			}
			return app.Serve(params)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration and provision its modules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configArg(cmd, args)
			ids, err := app.Check(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "show [path]",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.LoadConfig(configArg(cmd, args))
			if err != nil {
				return err
			}
			data, err := config.MarshalRedacted(cfg, security.NewRedactor())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return cmd
}

// configArg prefers the positional path over the --config flag.
func configArg(cmd *cobra.Command, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	path, _ := cmd.Flags().GetString("config")
	return path
}
