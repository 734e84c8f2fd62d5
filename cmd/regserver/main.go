package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, configPath)
		},
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write every participant as CSV to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), configPath, cmd.OutOrStdout())
		},
	}

	root := &cobra.Command{
		Use:           "regserver",
		Short:         "Cycling event registration server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env vars override it)")
	root.AddCommand(serve, export)
	root.SetContext(context.Background())
	return root
}
