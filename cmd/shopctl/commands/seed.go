package commands

import (
	"fmt" // Output formatting

	"storefront/internal/db" // Seeding

	"github.com/spf13/cobra" // CLI framework
)

func seedCmd() *cobra.Command {
	var (
		adminEmail    string // Admin login
		adminPassword string // Admin password
		adminName     string // Admin display name
		noProducts    bool   // Skip the sample catalog
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the admin user, default categories and sample products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags win over ADMIN_EMAIL / ADMIN_PASSWORD
			if adminEmail == "" {
				adminEmail = cfg.AdminEmail
			}
			if adminPassword == "" {
				adminPassword = cfg.AdminPass
			}

			gdb, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			report, err := db.Seed(gdb, db.SeedOptions{
				AdminName:     adminName,
				AdminEmail:    adminEmail,
				AdminPassword: adminPassword, // Empty skips the admin
				SkipProducts:  noProducts,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case adminPassword == "":
				fmt.Fprintln(out, "Admin: skipped (set ADMIN_PASSWORD or --admin-password)")
			case report.AdminCreated:
				fmt.Fprintf(out, "Admin: created %s\n", adminEmail)
			case report.AdminPromoted:
				fmt.Fprintf(out, "Admin: promoted %s\n", adminEmail)
			default:
				fmt.Fprintf(out, "Admin: %s already exists\n", adminEmail)
			}
			fmt.Fprintf(out, "Categories created: %d\n", report.CategoriesCreated)
			fmt.Fprintf(out, "Products created: %d\n", report.ProductsCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "admin login (default $ADMIN_EMAIL)")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "admin password (default $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "admin display name")
	cmd.Flags().BoolVar(&noProducts, "no-products", false, "only seed the admin and categories")
	return cmd
}
