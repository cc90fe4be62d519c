// Package jobs holds the periodic CRM batch jobs and the cron scheduler that
// runs them. Each job writes its own log through an injected zap logger.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"crm-core/internal/config"
	"crm-core/internal/service"

	"go.uber.org/zap"
)

// Job names as accepted by the worker's exec command
const (
	HeartbeatJob = "heartbeat"
	ReminderJob  = "reminders"
	ReportJob    = "report"
	RestockJob   = "restock"
)

// Job is one unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// LoggerFactory opens the log sink at path
type LoggerFactory func(path string) (*zap.Logger, error)

// Entry pairs a job with its cron schedule
type Entry struct {
	Schedule string
	Job      Job
}

// clock is replaced in tests
type clock func() time.Time

func systemClock() time.Time { return time.Now() }

// Build creates every job from cfg, each with its own log sink
func Build(cfg config.JobsConfig, queries service.QueryResolver, mutations service.MutationResolver, open LoggerFactory) ([]Entry, error) {
	sinks := map[string]string{
		HeartbeatJob: cfg.HeartbeatLog,
		ReminderJob:  cfg.ReminderLog,
		ReportJob:    cfg.ReportLog,
		RestockJob:   cfg.RestockLog,
	}
	loggers := make(map[string]*zap.Logger, len(sinks))
	for name, path := range sinks {
		l, err := open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s log %q: %w", name, path, err)
		}
		loggers[name] = l.With(zap.String("job", name))
	}

	return []Entry{
		{Schedule: cfg.HeartbeatSchedule, Job: NewHeartbeat(queries, loggers[HeartbeatJob])},
		{Schedule: cfg.RestockSchedule, Job: NewRestock(mutations, cfg.RestockAmount, loggers[RestockJob])},
		{Schedule: cfg.ReportSchedule, Job: NewReport(queries, loggers[ReportJob])},
		{Schedule: cfg.ReminderSchedule, Job: NewReminders(queries, cfg.ReminderWindow, loggers[ReminderJob])},
	}, nil
}

// Find returns the job called name
func Find(entries []Entry, name string) (Job, error) {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Job.Name() == name {
			return e.Job, nil
		}
		names = append(names, e.Job.Name())
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown job %q, expected one of %v", name, names)
}
