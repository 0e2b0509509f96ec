package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scaffold/pkg/db"
	"github.com/dmitrymomot/scaffold/pkg/job"
)

func newMigrateCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the records and job queue tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := o.newLogger()

			pool, err := o.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool, o.DB.MigrationsTable, log); err != nil {
				return err
			}
			return job.Migrate(ctx, pool, log)
		},
	}
	cmd.Flags().StringVar(&o.DB.MigrationsTable, "table", o.DB.MigrationsTable, "goose version table")
	return cmd
}
