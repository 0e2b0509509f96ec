package main

import (
	"context"
	"embed"
	"errors"

	"github.com/dmitrymomot/scaffold/pkg/job"
	"github.com/dmitrymomot/scaffold/pkg/mailer"
)

//go:embed emails
var emails embed.FS

const reportTemplate = "validation_report.md"

// Scheduled validation runs as records.validate and mails its summary
// through mailer.report.
const (
	workerRecords   = "records"
	commandValidate = "validate"
	workerMailer    = "mailer"
	commandReport   = "report"
)

// reportParams are the parameters of a mailer.report job.
type reportParams struct {
	To       string             `json:"to"`
	Results  []validationResult `json:"results"`
	Findings int                `json:"findings"`
}

func newReportParams(to string, results []validationResult) reportParams {
	p := reportParams{To: to, Results: results}
	for _, r := range results {
		p.Findings += r.Report.Notified
	}
	return p
}

func newComposer() *mailer.Composer {
	return mailer.NewComposer(emails, mailer.WithTemplateDir("emails"), mailer.WithFallbackSubject("Integrity report"))
}

// composeReport renders the summary mail for p.
func composeReport(c *mailer.Composer, p reportParams) (*mailer.Message, error) {
	msg, err := c.Compose(reportTemplate, "", p)
	if err != nil {
		return nil, err
	}
	msg.AddTo(p.To, "")
	return msg, nil
}

// scheduledValidation validates every collection and, when reportTo is
// set, enqueues the summary mail. The mail is enqueued even when a
// collection failed so the failure is reported.
func scheduledValidation(v *validation, jobs job.Submitter, reportTo string) func(context.Context) error {
	return func(ctx context.Context) error {
		results, err := v.run(ctx)
		if reportTo == "" {
			return err
		}
		enqErr := jobs.Enqueue(ctx, job.Job{
			Worker:  workerMailer,
			Command: commandReport,
			Params:  newReportParams(reportTo, results),
		})
		return errors.Join(err, enqErr)
	}
}

// sendReport is the mailer.report command.
func sendReport(c *mailer.Composer, client *mailer.Client) func(context.Context, reportParams) error {
	return func(ctx context.Context, p reportParams) error {
		msg, err := composeReport(c, p)
		if err != nil {
			return err
		}
		_, err = client.Send(ctx, msg)
		return err
	}
}
