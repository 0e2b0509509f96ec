package job

import "time"

type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption adjusts how a job is inserted.
type EnqueueOption func(*enqueueConfig)

// InQueue places the job on a named queue. The manager must run that queue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until t, replacing the job's Delay.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// MaxAttempts overrides DefaultAttempts.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor skips the insert when an equal job was inserted within d.
// Jobs are equal when their arguments match, or their UniqueKey when set.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}

// Priority overrides the job's priority. Lower runs first.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		c.priority = p
	}
}

// Tags attaches metadata tags.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}
