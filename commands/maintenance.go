package commands

import (
	"fmt"

	"Gin_postgres_redis_rental_kiosk/app"
	"Gin_postgres_redis_rental_kiosk/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.ConnectDB(cfg.Database, logger) // ConnectDB 会执行迁移
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Return overdue rentals once and exit (for cron)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		freed, err := a.Rentals.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "released %d item(s)\n", len(freed))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo catalogue into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := app.SeedDemoItems(cmd.Context(), a.Repo, a.Rentals, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d item(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, sweepCmd, seedCmd)
}
