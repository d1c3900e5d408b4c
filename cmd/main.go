package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidbz/ideaforge/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(loadConfig func() *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "ideaforge",
		Short:         "Score ideas against a personal decision framework",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newScoreCmd(loadConfig),
		newHistoryCmd(loadConfig),
	)

	return root
}
