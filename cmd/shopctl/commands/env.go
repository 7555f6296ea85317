package commands

import (
	"fmt" // Output formatting

	"storefront/internal/envfile" // .env generation

	"github.com/spf13/cobra" // CLI framework
)

func envCmd() *cobra.Command {
	var (
		out   string          // Target path
		force bool            // Overwrite an existing file
		opts  envfile.Options // Generated values
	)
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Generate a .env file with a random JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envfile.Generate(opts)
			if err != nil {
				return err
			}
			if err := envfile.Write(out, env, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d variables)\n", out, len(env))
			// Shown once; only the file keeps it
			fmt.Fprintf(cmd.OutOrStdout(), "Admin password: %s\n", env["ADMIN_PASSWORD"])
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".env", "file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&opts.Driver, "driver", "mysql", "database driver: mysql, postgres or sqlite")
	cmd.Flags().StringVar(&opts.CacheDriver, "cache", "redis", "cache driver: redis or memory")
	cmd.Flags().StringVar(&opts.AppPort, "port", "8080", "API listen port")
	cmd.Flags().StringVar(&opts.CORSOrigins, "cors-origins", "http://localhost:3000", "comma separated allowed origins")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@example.com", "seeded admin login")
	return cmd
}
