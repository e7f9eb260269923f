package server

import (
	"context"
	"time"

	"swingbot/internal/logger"
)

func istNow() time.Time { return time.Now().In(time.FixedZone("IST", 19800)) }

// Scheduler fires a job once per day at a fixed IST wall-clock time.
type Scheduler struct {
	hour, minute int
	job          func(ctx context.Context)

	lastRunDay string
}

func NewScheduler(hour, minute int, job func(ctx context.Context)) *Scheduler {
	return &Scheduler{hour: hour, minute: minute, job: job}
}

// Run blocks until the context is cancelled, checking the clock once a
// minute and firing at most once per calendar day.
func (s *Scheduler) Run(ctx context.Context) {
	tick := time.NewTicker(60 * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Daily schedule armed", "time_ist", timeLabel(s.hour, s.minute))
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if s.due(istNow()) {
				logger.Info(ctx, "Scheduled scan triggered")
				s.job(ctx)
			}
		}
	}
}

// due reports whether the job should fire now, at most once per day.
func (s *Scheduler) due(now time.Time) bool {
	day := now.Format("2006-01-02")
	if s.lastRunDay == day {
		return false
	}
	if now.Hour() != s.hour || now.Minute() != s.minute {
		return false
	}
	s.lastRunDay = day
	return true
}

func timeLabel(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}
