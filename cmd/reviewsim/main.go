package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/reviewsim/internal/utils/logger"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reviewsim",
		Short: "Reward and reputation simulator for code reviewers",
		Long: `reviewsim projects how a reviewer's balance, reward and reputation
evolve over a series of review cycles under a chosen weight system,
growth law and reward model.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			trace, _ := cmd.Flags().GetBool("trace")
			logger.Init(logger.Options{Debug: debug, Trace: trace})
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Sets log level to debug")
	rootCmd.PersistentFlags().Bool("trace", false, "Sets log level to trace")
	rootCmd.PersistentFlags().Bool("remote", false, "Call the simulation service at SIMULATOR_URL instead of running locally")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newScoreCmd(),
		newPresetsCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "reviewsim version %s\n", version)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
