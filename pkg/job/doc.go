// Package job runs background commands on River, the Postgres-native queue.
//
// A [Job] names a worker and one of its commands, carries JSON parameters
// and optionally a delay and a priority:
//
//	err := enqueuer.Enqueue(ctx, job.Job{
//	    Worker:  "mailer",
//	    Command: "sendWelcome",
//	    Params:  WelcomeParams{UserID: id},
//	    Delay:   time.Minute,
//	})
//
// Workers register commands on the [Manager]; the command receives the
// decoded parameters:
//
//	m, err := job.NewManager(pool,
//	    job.WithCommand("mailer", "sendWelcome", func(ctx context.Context, p WelcomeParams) error {
//	        return mail.Send(ctx, p.UserID)
//	    }),
//	    job.WithSchedule("records", "validate", "0 3 * * *", validateAll),
//	)
//
// Jobs are attempted [DefaultAttempts] times unless [MaxAttempts] says
// otherwise. [Enqueuer] only inserts jobs, so web processes can dispatch
// work to a separate worker process.
package job
