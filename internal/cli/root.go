package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/repodiff/internal/models"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var config models.CompareConfig

	rootCmd := &cobra.Command{
		Use:   "repodiff <repo1> <repo2>",
		Short: "Compare the binary packages of two ALT Linux branches",
		Long: `Repodiff downloads the binary package lists of two ALT Linux branches
from the repository database API and compares them per architecture.

For every architecture found in either branch three reports are written:
  - Comparison1: packages only in repo1
  - Comparison2: packages only in repo2
  - Comparison3: packages whose version in repo1 is newer than in repo2

Supported branches: sisyphus, p10, p9`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Left, config.Right = args[0], args[1]

			if err := loadConfigFile(cmd, &config); err != nil {
				return err
			}
			if err := validateConfig(&config); err != nil {
				return err
			}

			logrus.Debugf("Configuration: %+v", redacted(config))
			_, err := runCompare(cmd.Context(), &config)
			return err
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addCompareFlags(rootCmd, &config)

	return rootCmd
}
