package main

import (
	"fmt"
	"time"

	"github.com/sabithahmd/Wordpress-Azure-Login/account"
	"github.com/spf13/cobra"
)

func newAccountCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage local accounts",
	}
	cmd.AddCommand(newAccountAddCmd(root), newAccountShowCmd(root))
	return cmd
}

func newAccountAddCmd(root *rootOptions) *cobra.Command {
	var displayName string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Register a local account which may sign in with Entra ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := root.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			a, err := db.Accounts().Add(cmd.Context(), account.Account{Email: args[0], DisplayName: displayName})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "name", "", "Display name")
	return cmd
}

func newAccountShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Print the account registered with an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := root.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			a, err := db.Accounts().LookupByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id=%s email=%s name=%s created=%s\n",
				a.ID, a.Email, a.DisplayName, a.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
}
