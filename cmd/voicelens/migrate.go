package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDB(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	database.Close()

	fmt.Println("Migrations applied")
	return nil
}
