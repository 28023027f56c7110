package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"textrecords/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}

			version, err := db.Migrate(dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "Database connection string")
	return cmd
}
