package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/onetakeda/sapio-webhooks/config"
	"github.com/onetakeda/sapio-webhooks/datastore"
	"github.com/onetakeda/sapio-webhooks/datastore/sqlite"
	"github.com/onetakeda/sapio-webhooks/handlers"
	"github.com/onetakeda/sapio-webhooks/pkg/log"
	"github.com/onetakeda/sapio-webhooks/server"
)

func addServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Get()
			if err != nil {
				return err
			}

			lo := log.NewLogger(os.Stdout)
			lo.SetPrefix("webhooks")

			lvl, err := log.ParseLevel(cfg.Logger.Level)
			if err != nil {
				return err
			}
			lo.SetLevel(lvl)

			var repo datastore.InvocationRepository
			if cfg.Database.Dsn != "" {
				sqliteRepo, err := sqlite.New(cfg.Database.Dsn)
				if err != nil {
					return err
				}
				defer func() {
					if err := sqliteRepo.Close(); err != nil {
						lo.WithError(err).Error("failed to close invocation log")
					}
				}()

				repo = sqliteRepo
			}

			if cfg.Client.InsecureSkipVerify {
				lo.Warn("platform certificate verification is disabled")
			}

			srv := server.New(cfg, repo, lo)
			handlers.RegisterEndpoints(srv.Registry())
			srv.BuildRoutes()
			srv.Listen()

			return nil
		},
	}
}
