package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sabithahmd/Wordpress-Azure-Login/server"
	"github.com/sabithahmd/Wordpress-Azure-Login/settings"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the login endpoints",
		Long: `Serve the login endpoints until interrupted:

  GET  /login/entra      start a login and redirect to Microsoft
  GET  /login/entra/url  start a login and return {"url": ...}
  POST /logout           end the signed in session
  GET  /healthz          liveness

The redirect URI registered with Entra ID is handled on any path: a request
carrying a "code" parameter completes the login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, db, err := root.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			logger := newLogger(c.LogLevel)

			loader, err := settings.NewLoader(db.Settings(), settings.WithLogger(logger.Named("settings")))
			if err != nil {
				return err
			}
			srv, err := server.New(c, loader, db.Accounts(), db.Sessions(), server.WithLogger(logger))
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
}
