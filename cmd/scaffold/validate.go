package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scaffold/pkg/metrics"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

// notificationsCollection holds the findings of every validation pass.
const notificationsCollection = "notifications"

// validationResult is the outcome of one collection.
type validationResult struct {
	Collection string                  `json:"collection"`
	Error      string                  `json:"error,omitempty"`
	Report     record.ValidationReport `json:"report"`
}

func newValidateCmd(o *rootOptions) *cobra.Command {
	var throttle time.Duration

	cmd := &cobra.Command{
		Use:   "validate [collection...]",
		Short: "Check stored records for missing fields and broken references",
		Long: `validate streams every record of the given collections (all when none are
named) and stores one notification per finding in the notifications
collection. Findings of a previous pass are replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := o.newLogger()

			cfg, err := loadConfig(o.ConfigPath)
			if err != nil {
				return err
			}
			pool, err := o.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			stores, err := cfg.stores(pool, log)
			if err != nil {
				return err
			}
			v := &validation{
				cfg:      cfg,
				stores:   stores,
				sink:     record.NewStoreSink(record.NewPostgres(pool, notificationsCollection)),
				logger:   log,
				throttle: throttle,
			}

			results, err := v.run(ctx, args...)
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tchecked=%d\tnotified=%d\tfixed=%d\t%s\n",
					r.Collection, r.Report.Checked, r.Report.Notified, r.Report.Fixed, r.Error)
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&throttle, "throttle", record.DefaultThrottle, "pause between records, negative disables")
	return cmd
}

// validation runs ValidateAll over configured collections.
type validation struct {
	cfg      *Config
	stores   map[string]record.Store
	sink     record.NotificationSink
	metrics  *metrics.Metrics
	logger   *slog.Logger
	throttle time.Duration
}

// run validates the named collections, or all of them. A failing
// collection does not stop the others; the first error is returned.
func (v *validation) run(ctx context.Context, names ...string) ([]validationResult, error) {
	if len(names) == 0 {
		for _, c := range v.cfg.Collections {
			names = append(names, c.Name)
		}
	}

	var firstErr error
	results := make([]validationResult, 0, len(names))
	for _, name := range names {
		c, err := v.cfg.collection(name)
		if err != nil {
			return results, err
		}

		report, err := record.ValidateAll(ctx, v.stores[name], c.schema(v.stores), v.sink, record.ValidateOptions{
			Logger:   v.logger,
			Throttle: v.throttle,
		})
		res := validationResult{Collection: name, Report: report}
		if err != nil {
			res.Error = err.Error()
			v.logger.ErrorContext(ctx, "validation failed", slog.String("collection", name), slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
		if v.metrics != nil {
			v.metrics.ObserveValidation(name, report)
		}
		v.logger.InfoContext(ctx, "collection validated",
			slog.String("collection", name),
			slog.Int("checked", report.Checked),
			slog.Int("notified", report.Notified),
			slog.Int("fixed", report.Fixed))
		results = append(results, res)
	}
	return results, firstErr
}
