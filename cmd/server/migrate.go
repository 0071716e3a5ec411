package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yusufkecer/hospital-backend/internal/db"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the MySQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			database, err := db.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			return db.RunMigrations(cmd.Context(), database, logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations that have not been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			database, err := db.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			pending, err := db.PendingMigrations(cmd.Context(), database)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, v := range pending {
				fmt.Fprintln(cmd.OutOrStdout(), "pending:", v)
			}
			return nil
		},
	})

	return cmd
}
