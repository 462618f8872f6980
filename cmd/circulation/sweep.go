package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/libraryhub/circulation/internal/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark every late unreturned loan as overdue and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(context.Background()) }()

		updated, err := a.Sweeper.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d loan(s) marked overdue\n", color.GreenString("✓"), updated)
		return nil
	},
}
