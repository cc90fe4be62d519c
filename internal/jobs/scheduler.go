package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs jobs on standard five-field cron schedules. A run that is
// still going when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewScheduler creates a scheduler whose job runs are bounded by timeout and
// whose metrics go to reg
func NewScheduler(logger *zap.Logger, timeout time.Duration, reg prometheus.Registerer) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: timeout,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Batch job runs by job and result.",
		}, []string{"job", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "jobs",
			Name:      "run_duration_seconds",
			Help:      "Batch job run time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
	reg.MustRegister(s.runs, s.duration)
	return s
}

// Add schedules job. The schedule is validated immediately.
func (s *Scheduler) Add(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.RunNow(context.Background(), job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}
	s.logger.Info("Job scheduled", zap.String("job", job.Name()), zap.String("schedule", schedule))
	return nil
}

// RunNow runs job once in the caller's goroutine and records the outcome
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)

	s.duration.WithLabelValues(job.Name()).Observe(elapsed.Seconds())
	if err != nil {
		s.runs.WithLabelValues(job.Name(), "error").Inc()
		s.logger.Error("Job failed", zap.String("job", job.Name()), zap.Duration("duration", elapsed), zap.Error(err))
		return err
	}

	s.runs.WithLabelValues(job.Name(), "ok").Inc()
	s.logger.Info("Job completed", zap.String("job", job.Name()), zap.Duration("duration", elapsed))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to the cron.Logger interface
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
