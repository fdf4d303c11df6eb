package main

import (
	"fmt"

	"github.com/sabithahmd/Wordpress-Azure-Login/entra"
	"github.com/sabithahmd/Wordpress-Azure-Login/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write the stored login options",
	}
	cmd.AddCommand(
		newSettingsSetCmd(root),
		newSettingsGetCmd(root),
		newSettingsListCmd(root),
	)
	return cmd
}

func checkKey(key string) error {
	if !settings.IsKnownKey(key) {
		return fmt.Errorf("%q: %w", key, settings.ErrUnknownKey)
	}
	return nil
}

// display hides the client secret unless reveal is set.
func display(key, value string, reveal bool) string {
	if key == settings.KeyClientSecret && !reveal {
		return entra.ClientSecret(value).String()
	}
	return value
}

func newSettingsSetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := checkKey(key); err != nil {
				return err
			}
			_, db, err := root.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Settings().Set(cmd.Context(), key, value)
		},
	}
}

func newSettingsGetCmd(root *rootOptions) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkKey(key); err != nil {
				return err
			}
			_, db, err := root.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			v, ok, err := db.Settings().Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not set", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), display(key, v, reveal))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the client secret instead of redacting it")
	return cmd
}

func newSettingsListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := root.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			for _, key := range settings.Keys {
				v, ok, err := db.Settings().Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				if !ok {
					v = "(unset)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, display(key, v, false))
			}
			return nil
		},
	}
}
