package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sampahku/internal/app"
)

func provisionAdminCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "provision-admin",
		Short: "Create the admin account",
		Long: `Creates the single admin account in the document store.
The password may also be given through ADMIN_PASSWORD to keep it out of shell history.
Fails when an admin account already exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("--password or ADMIN_PASSWORD is required")
			}

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Accounts.ProvisionAdmin(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin account %q created\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (min. 8 characters)")
	return cmd
}
