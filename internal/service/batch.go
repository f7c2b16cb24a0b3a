package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/recurring-service/internal/metrics"
	"github.com/Dan9191/recurring-service/internal/models"
	"github.com/Dan9191/recurring-service/internal/recurring"
	"github.com/Dan9191/recurring-service/internal/repository"
)

type fireOutcome int

const (
	outcomeFired fireOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// ExecuteDue fires every schedule that is due now, at most once per schedule
// per run. A schedule that fails is recorded in the report and the run
// carries on with the rest. An error is returned only when the schedules
// cannot be loaded at all.
func (s *Service) ExecuteDue(ctx context.Context) (models.BatchReport, error) {
	started := time.Now()
	defer func() {
		metrics.BatchDuration.Observe(time.Since(started).Seconds())
	}()
	now := s.now()
	report := models.BatchReport{StartedAt: now}

	schedules, err := s.repo.ListActiveSchedules(ctx)
	if err != nil {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("failed to load schedules: %w", err)
	}
	due := recurring.PendingExecutions(schedules, now)
	report.Evaluated = len(schedules)
	report.Due = len(due)
	metrics.PendingSchedules.Set(float64(len(due)))

	outcomes := make([]fireOutcome, len(due))
	errs := make([]error, len(due))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.workers, len(due)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i], errs[i] = s.fire(ctx, due[i], now)
			}
		}()
	}
feed:
	for i := range due {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for j := i; j < len(due); j++ {
				outcomes[j], errs[j] = outcomeFailed, ctx.Err()
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	touched := make(map[string]struct{})
	for i, sch := range due {
		switch outcomes[i] {
		case outcomeFired:
			report.Fired++
			touched[sch.OwnerID] = struct{}{}
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failures = append(report.Failures, models.FireFailure{
				ScheduleID: sch.ID,
				OwnerID:    sch.OwnerID,
				Error:      errs[i].Error(),
			})
		}
	}
	for ownerID := range touched {
		s.invalidate(ctx, ownerID)
	}
	report.FinishedAt = s.now()

	s.log.WithFields(logrus.Fields{
		"evaluated": report.Evaluated,
		"due":       report.Due,
		"fired":     report.Fired,
		"skipped":   report.Skipped,
		"failed":    len(report.Failures),
	}).Info("Batch run finished")

	if len(report.Failures) > 0 && s.notifier != nil {
		if err := s.notifier.SendBatchReport(report); err != nil {
			s.log.Errorf("Failed to deliver batch report: %v", err)
		}
	}
	return report, nil
}

func (s *Service) fire(ctx context.Context, sch models.RecurringSchedule, now time.Time) (fireOutcome, error) {
	log := s.log.WithFields(logrus.Fields{
		"schedule_id": sch.ID,
		"owner_id":    sch.OwnerID,
	})

	next, ok, err := recurring.NextOccurrence(sch)
	if err != nil {
		metrics.InvalidPeriodicity.Inc()
		metrics.FireFailures.WithLabelValues("invalid_periodicity").Inc()
		log.Warnf("Skipping schedule with corrupt periodicity: %v", err)
		return outcomeFailed, err
	}
	if !ok {
		metrics.FireFailures.WithLabelValues("unscheduled").Inc()
		return outcomeFailed, fmt.Errorf("schedule %s has no next occurrence", sch.ID)
	}

	entry, err := s.repo.FireSchedule(ctx, sch, next, now)
	if errors.Is(err, repository.ErrScheduleAlreadyAdvanced) {
		log.Info("Schedule already fired by another run")
		return outcomeSkipped, nil
	}
	if err != nil {
		metrics.FireFailures.WithLabelValues("storage").Inc()
		log.Errorf("Failed to fire schedule: %v", err)
		return outcomeFailed, err
	}

	metrics.SchedulesFired.WithLabelValues(string(sch.MovementType)).Inc()
	log.WithFields(logrus.Fields{
		"ledger_entry_id": entry.ID,
		"next_occurrence": next.Format(time.RFC3339),
	}).Info("Schedule fired")
	return outcomeFired, nil
}
