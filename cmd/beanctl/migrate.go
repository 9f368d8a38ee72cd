package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"beanline/database"
)

func migrateFailuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-failures",
		Short: "Copy stage-failure records embedded in evaluation comments into the failure column",
		Long: `Scans every evaluation (deleted ones included) whose failure column is
empty and whose comments carry a FAILED_STAGE_ID record, decodes it and
stores it in the structured column. Comments are left as they are.

Running it twice is harmless: rows already migrated are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := settings.GetString("db_path")
			db, err := database.Open(path)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			n, err := database.MigrateLegacyFailures(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: migrated %d evaluation(s)\n", path, n)
			return nil
		},
	}
}
