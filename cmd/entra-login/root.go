package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/sabithahmd/Wordpress-Azure-Login/server"
	"github.com/sabithahmd/Wordpress-Azure-Login/storage/sqlite"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dbPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "entra-login",
		Short: "Sign local accounts in with Microsoft Entra ID",
		Long: `entra-login runs the authorization code flow with PKCE against a
Microsoft Entra ID tenant and signs the user agent in as the local account
registered with the email address Microsoft Graph reports.

Process settings are read from LOGINWIAZ_ environment variables. Login
credentials are kept in the database (see "entra-login settings") or, with
loginwiaz_cred_storage=environment, in LOGINWIAZ_CLIENT_ID,
LOGINWIAZ_CLIENT_SECRET and LOGINWIAZ_TENANT_ID.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Database file (default: LOGINWIAZ_DB_PATH)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSettingsCmd(opts),
		newAccountCmd(opts),
	)
	return cmd
}

// loadConfig reads the process configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (*server.Config, error) {
	c, err := server.LoadConfig(nil)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		c.DBPath = o.dbPath
	}
	return c, nil
}

// openDB opens the configured database.
func (o *rootOptions) openDB(ctx context.Context) (*server.Config, *sqlite.DB, error) {
	c, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(ctx, c.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open %s: %w", c.DBPath, err)
	}
	return c, db, nil
}

func newLogger(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "entra-login",
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}
