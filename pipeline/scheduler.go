package pipeline

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
)

// cronLogger routes cron's own messages through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// Scheduler runs a job on a standard five-field cron spec.
type Scheduler struct {
	Spec   string
	Job    func(ctx context.Context) error
	Logger *slog.Logger
}

// Start schedules the job and blocks until ctx is done. A run still in
// progress when the next tick fires is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := cronLogger{logger: s.Logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(
			cron.SkipIfStillRunning(logger),
			cron.Recover(logger),
		),
	)

	_, err := c.AddFunc(s.Spec, func() {
		s.Logger.Info("Scheduled run starting", "cron", s.Spec)
		if err := s.Job(ctx); err != nil {
			s.Logger.Error("Scheduled run failed", "error", err)
			return
		}
		s.Logger.Info("Scheduled run finished")
	})
	if err != nil {
		return eris.Wrapf(err, "invalid cron spec %q", s.Spec)
	}

	c.Start()
	s.Logger.Info("Scheduler started", "cron", s.Spec)

	<-ctx.Done()
	<-c.Stop().Done()
	s.Logger.Info("Scheduler stopped")
	return nil
}
