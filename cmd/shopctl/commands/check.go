package commands

import (
	"context" // Overall deadline
	"errors"  // Exit status
	"time"    // Timeout flag

	"storefront/internal/diag" // Smoke checks

	"github.com/spf13/cobra" // CLI framework
)

func checkCmd() *cobra.Command {
	var (
		baseURL       string        // Server under test
		adminEmail    string        // Optional admin login
		adminPassword string        // Optional admin password
		timeout       time.Duration // Deadline for the whole run
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run smoke checks against a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c := &diag.Checker{
				Client:        diag.NewClient(baseURL),
				AdminEmail:    adminEmail,
				AdminPassword: adminPassword,
			}
			rep := c.Run(ctx)
			rep.Print(cmd.OutOrStdout()) // One line per step
			if !rep.OK() {
				return errors.New("checks failed") // Non-zero exit
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "server to check")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "admin login; enables the dashboard check")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "admin password")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall deadline")
	return cmd
}
