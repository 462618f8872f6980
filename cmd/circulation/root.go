package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/libraryhub/circulation/internal/pkg/config"
	"github.com/libraryhub/circulation/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger

	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "circulation",
	Short: "Library circulation service",
	Long: `circulation tracks book checkouts, returns and late fines.

Configuration is read from the environment (PORT, STORE, MONGO_URI,
REDIS_ENABLED, FINE_PER_DAY_CENTS, ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if flagNoColor {
			color.NoColor = true
		}

		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return err
		}
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.Development(),
			Service: "circulation",
			Output:  os.Stderr,
		})
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.AddCommand(serveCmd, sweepCmd, reportCmd)
}
