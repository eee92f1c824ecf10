package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/whisper-gateway/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "OpenAI-compatible transcription gateway with backend failover",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml (default: search ./cmd/whisper-gateway and .)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP gateway",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				return serve(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "bridge",
			Short: "Answer NATS worker subjects with an HTTP whisper worker",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				return runBridge(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			},
		},
	)
	return root
}
