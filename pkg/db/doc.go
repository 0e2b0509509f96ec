// Package db connects to PostgreSQL and owns the schema of the record
// store.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, cfg.MigrationsTable, log); err != nil {
//	    return err
//	}
//
// The embedded migrations create the records table: one JSONB document
// per row, keyed by collection and id. [MigrateFS] applies an
// application's own migrations with the same goose setup.
package db
