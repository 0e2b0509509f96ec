package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/scaffold/pkg/logger"
)

// DefaultThrottle is the pause between two records in ValidateAll.
const DefaultThrottle = time.Millisecond

// FixFunc repairs a record with missing mandatory fields. It returns the
// record to save, or nil when it cannot repair it.
type FixFunc func(ctx context.Context, r Record, missing []string) (Record, error)

// CheckFunc is a custom integrity check. Each returned message becomes a
// notification.
type CheckFunc func(ctx context.Context, r Record) ([]string, error)

// Schema describes the integrity rules of a collection.
type Schema struct {
	Fix        FixFunc
	Resource   string
	Mandatory  []string
	Checks     []CheckFunc
	References []Reference
}

// ValidateOptions tunes ValidateAll.
type ValidateOptions struct {
	Logger *slog.Logger
	// Throttle is the pause after each record. Zero uses DefaultThrottle,
	// a negative value disables it.
	Throttle time.Duration
}

// ValidationReport summarises one ValidateAll run.
type ValidationReport struct {
	Checked  int `json:"checked"`
	Notified int `json:"notified"`
	Fixed    int `json:"fixed"`
}

// ValidateAll checks every record of store against schema.
//
// Prior notifications for the resource are cleared first. Records are
// streamed and processed one at a time: mandatory fields, then custom checks,
// then references. The next record is not pulled until the current one has
// fully settled and the throttle has elapsed.
func ValidateAll(ctx context.Context, store Store, schema Schema, sink NotificationSink, opts ValidateOptions) (ValidationReport, error) {
	var report ValidationReport

	log := opts.Logger
	if log == nil {
		log = logger.NewNope()
	}
	throttle := opts.Throttle
	if throttle == 0 {
		throttle = DefaultThrottle
	}
	resource := schema.Resource
	if resource == "" {
		resource = store.Collection()
	}

	if err := sink.Clear(ctx, resource); err != nil {
		return report, fmt.Errorf("record: clear notifications: %w", err)
	}

	v := &validator{store: store, schema: schema, sink: sink, resource: resource, report: &report}

	for r, err := range store.Stream(ctx, nil) {
		if err != nil {
			return report, err
		}
		report.Checked++

		if err := v.check(ctx, r); err != nil {
			log.ErrorContext(ctx, "record integrity check failed",
				slog.String("resource", resource),
				slog.String("id", r.ID()),
				slog.Any("error", err))
		}

		if throttle > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(throttle):
			}
		}
	}

	return report, nil
}

type validator struct {
	store    Store
	sink     NotificationSink
	report   *ValidationReport
	resource string
	schema   Schema
}

func (v *validator) check(ctx context.Context, r Record) error {
	r, err := v.mandatory(ctx, r)
	if err != nil {
		return err
	}
	if err := v.custom(ctx, r); err != nil {
		return err
	}
	return v.references(ctx, r)
}

func (v *validator) mandatory(ctx context.Context, r Record) (Record, error) {
	missing := Missing(r, v.schema.Mandatory)
	if len(missing) == 0 {
		return r, nil
	}

	if v.schema.Fix != nil {
		fixed, err := v.schema.Fix(ctx, r, missing)
		if err != nil {
			return r, fmt.Errorf("fix: %w", err)
		}
		if fixed != nil {
			saved, err := v.store.Save(ctx, fixed)
			if err != nil {
				return r, fmt.Errorf("save fixed record: %w", err)
			}
			v.report.Fixed++
			r = saved
			missing = Missing(r, v.schema.Mandatory)
		}
	}

	for _, field := range missing {
		if err := v.notify(ctx, Notification{
			RecordID: r.ID(),
			Field:    field,
			Kind:     KindMissingMandatory,
			Message:  fmt.Sprintf("Mandatory field %q is not set", field),
		}); err != nil {
			return r, err
		}
	}
	return r, nil
}

func (v *validator) custom(ctx context.Context, r Record) error {
	for _, check := range v.schema.Checks {
		msgs, err := check(ctx, r)
		if err != nil {
			return fmt.Errorf("custom check: %w", err)
		}
		for _, msg := range msgs {
			if err := v.notify(ctx, Notification{RecordID: r.ID(), Kind: KindCustom, Message: msg}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) references(ctx context.Context, r Record) error {
	for _, ref := range v.schema.References {
		if ref.Target == nil {
			continue
		}
		for _, id := range referenceIDs(r, ref.Field) {
			target, err := ref.Target.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("reference %s: %w", ref.Field, err)
			}
			if target != nil {
				continue
			}
			if err := v.notify(ctx, Notification{
				RecordID: r.ID(),
				Field:    ref.Field,
				Kind:     KindBrokenReference,
				Message:  fmt.Sprintf("Broken reference %q to %s", id, ref.Target.Collection()),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) notify(ctx context.Context, n Notification) error {
	n.Resource = v.resource
	if err := v.sink.Notify(ctx, n); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	v.report.Notified++
	return nil
}
