package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flemzord/chefbot/pkg/app"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			opts := app.StarterOptions{
				Model:     "gpt-4o",
				MaxTokens: 1000,
				Store:     app.StoreSQLite,
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				if err := starterForm(&opts).Run(); err != nil {
					return err
				}
			}

			if err := app.WriteStarterConfig(path, opts); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", path)
			fmt.Fprintln(out, "Export OPENAI_API_KEY, then run: chefbot chat -c "+path)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Accept the defaults without prompting")
	return cmd
}

// starterForm asks for the starter options, writing answers into opts.
func starterForm(opts *app.StarterOptions) *huh.Form {
	maxTokens := strconv.Itoa(opts.MaxTokens)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("OpenAI model").
				Options(
					huh.NewOption("gpt-4o", "gpt-4o"),
					huh.NewOption("gpt-4o-mini", "gpt-4o-mini"),
					huh.NewOption("gpt-4.1", "gpt-4.1"),
				).
				Value(&opts.Model),
			huh.NewInput().
				Title("Memory budget (tokens per conversation)").
				Value(&maxTokens).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 300 {
						return errors.New("enter a number above 300")
					}
					opts.MaxTokens = n
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should conversations be stored?").
				Options(
					huh.NewOption("SQLite file", app.StoreSQLite),
					huh.NewOption("Redis", app.StoreRedis),
					huh.NewOption("In memory (lost on exit)", app.StoreInMemory),
				).
				Value(&opts.Store),
			huh.NewConfirm().
				Title("Enable the HTTP gateway?").
				Value(&opts.Gateway),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Value(&opts.RedisAddr).
				Placeholder("127.0.0.1:6379"),
		).WithHideFunc(func() bool { return opts.Store != app.StoreRedis }),
	)
}
