package commands

import (
	"errors" // Input errors
	"fmt"    // Output formatting

	"storefront/internal/db" // Admin bootstrap

	"github.com/spf13/cobra" // CLI framework
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(adminCreateCmd())
	return cmd
}

// adminCreateCmd creates an admin or promotes an existing user
func adminCreateCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin, or promote the existing user with that email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Same minimum as registration
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			gdb, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			created, promoted, err := db.EnsureAdmin(gdb, name, email, password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case created:
				fmt.Fprintf(out, "Created admin %s\n", email)
			case promoted:
				fmt.Fprintf(out, "Promoted %s to admin (password unchanged)\n", email)
			default:
				fmt.Fprintf(out, "%s is already an admin\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin login")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
