package main

import (
	"fmt"

	"github.com/spf13/cobra"

	webhooks "github.com/onetakeda/sapio-webhooks"
)

func addVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// The version command must work without a config file.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(webhooks.GetVersion())
		},
	}
}
