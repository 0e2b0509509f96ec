package job

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/riverqueue/river"
)

// DefaultAttempts is how many times a job runs before it is discarded.
const DefaultAttempts = 3

// Job is a unit of background work addressed to a worker command.
type Job struct {
	Params   any
	Worker   string
	Command  string
	Delay    time.Duration
	Priority int
}

// Name is the registry key of the job's command.
func (j Job) Name() string {
	return commandName(j.Worker, j.Command)
}

func (j Job) validate() error {
	if strings.TrimSpace(j.Worker) == "" || strings.TrimSpace(j.Command) == "" {
		return ErrJobRequired
	}
	return nil
}

func commandName(worker, command string) string {
	return worker + "." + command
}

// commandArgs is the River payload shared by every command.
type commandArgs struct {
	Worker    string          `json:"worker"`
	Command   string          `json:"command"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

func (commandArgs) Kind() string {
	return "scaffold:command"
}

// buildArgs converts a job into River arguments and insert options.
// Options override the job's own delay and priority.
func buildArgs(j Job, opts ...EnqueueOption) (*commandArgs, *river.InsertOpts, error) {
	if err := j.validate(); err != nil {
		return nil, nil, err
	}

	var params json.RawMessage
	if j.Params != nil {
		var err error
		if params, err = json.Marshal(j.Params); err != nil {
			return nil, nil, fmt.Errorf("job: marshal params: %w", err)
		}
	}
	args := &commandArgs{Worker: j.Worker, Command: j.Command, Params: params}

	cfg := &enqueueConfig{maxAttempts: DefaultAttempts, priority: j.Priority}
	if j.Delay > 0 {
		at := time.Now().Add(j.Delay)
		cfg.scheduledAt = &at
	}
	for _, opt := range opts {
		opt(cfg)
	}

	insert := &river.InsertOpts{MaxAttempts: cfg.maxAttempts, Queue: cfg.queue, Tags: cfg.tags}
	if cfg.scheduledAt != nil {
		insert.ScheduledAt = *cfg.scheduledAt
	}
	// River priorities run from 1 (highest) to 4.
	if cfg.priority > 0 {
		insert.Priority = min(cfg.priority, 4)
	}
	if cfg.uniqueFor > 0 {
		insert.UniqueOpts = river.UniqueOpts{ByPeriod: cfg.uniqueFor}
		args.UniqueKey = cfg.uniqueKey
	}
	return args, insert, nil
}
