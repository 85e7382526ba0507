package backfill

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sweeper periodically re-enqueues names still awaiting backfill, so
// lookups dropped by provider outages eventually run again.
type sweeper struct {
	log      logrus.FieldLogger
	queue    *QueueManager
	schedule cron.Schedule
	nextRun  time.Time
}

func newSweeper(log logrus.FieldLogger, queue *QueueManager, scheduleSpec string) (*sweeper, error) {
	schedule, err := cron.ParseStandard(scheduleSpec)
	if err != nil {
		return nil, err
	}

	return &sweeper{
		log:      log.WithField("component", "backfill-sweep"),
		queue:    queue,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
	}, nil
}

// Run blocks until the context is canceled, firing on the cron schedule
func (s *sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Before(s.nextRun) {
				continue
			}
			s.nextRun = s.schedule.Next(now)
			s.sweep(ctx)
		}
	}
}

func (s *sweeper) sweep(ctx context.Context) {
	names, err := s.queue.Pending(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to list pending backfill names")
		return
	}
	if len(names) == 0 {
		return
	}

	if err := s.queue.Enqueue(ctx, names); err != nil {
		s.log.WithError(err).WithField("count", len(names)).Warn("Backfill sweep enqueue failed")
		return
	}

	s.log.WithField("count", len(names)).Info("Backfill sweep re-enqueued pending names")
}
