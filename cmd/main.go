package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/onetakeda/sapio-webhooks/config"
)

func main() {
	logrus.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})

	// Use UTC by default :)
	if err := os.Setenv("TZ", ""); err != nil {
		logrus.Fatal("failed to set env - ", err)
	}

	var configFile string

	cmd := &cobra.Command{
		Use:   "sapio-webhooks",
		Short: "Webhook server for Sapio LIMS automation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadConfig(configFile)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigFilePath,
		"Configuration file for the webhook server")

	cmd.AddCommand(addServerCommand())
	cmd.AddCommand(addVersionCommand())

	if err := cmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
