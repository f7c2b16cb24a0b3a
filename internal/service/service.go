package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/recurring-service/internal/cache"
	"github.com/Dan9191/recurring-service/internal/config"
	"github.com/Dan9191/recurring-service/internal/metrics"
	"github.com/Dan9191/recurring-service/internal/models"
	"github.com/Dan9191/recurring-service/internal/recurring"
)

// MaxHorizonMonths bounds projection requests
const MaxHorizonMonths = 120

// Repository is the persistence the service depends on
type Repository interface {
	CreateSchedule(ctx context.Context, s *models.RecurringSchedule) error
	GetSchedule(ctx context.Context, ownerID, id string) (*models.RecurringSchedule, error)
	ListSchedulesByOwner(ctx context.Context, ownerID string) ([]models.RecurringSchedule, error)
	ListActiveSchedules(ctx context.Context) ([]models.RecurringSchedule, error)
	UpdateSchedule(ctx context.Context, s *models.RecurringSchedule) error
	DeleteSchedule(ctx context.Context, ownerID, id string) error
	FireSchedule(ctx context.Context, s models.RecurringSchedule, next, firedAt time.Time) (*models.LedgerEntry, error)
	ListLedgerEntries(ctx context.Context, ownerID, scheduleID string) ([]models.LedgerEntry, error)
}

// Notifier receives reports of batch runs that had failures
type Notifier interface {
	SendBatchReport(report models.BatchReport) error
}

// ValidationError carries every problem found in a schedule configuration
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid schedule: " + strings.Join(e.Problems, "; ")
}

// Service handles business logic
type Service struct {
	repo     Repository
	cache    cache.Cache
	notifier Notifier
	log      *logrus.Logger
	cacheTTL time.Duration
	workers  int
	now      func() time.Time
}

// NewService initializes a new service. notifier may be nil.
func NewService(repo Repository, c cache.Cache, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	workers := cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		repo:     repo,
		cache:    c,
		notifier: notifier,
		log:      log,
		cacheTTL: cfg.CacheTTL,
		workers:  workers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate returns every problem found in input; empty means valid
func (s *Service) Validate(input models.ScheduleInput) []string {
	return validateInput(input, s.now())
}

func validateInput(input models.ScheduleInput, now time.Time) []string {
	problems := recurring.ValidateScheduleConfiguration(recurring.Candidate{
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Periodicity:   input.Periodicity,
		Amount:        input.Amount,
		MaxExecutions: input.MaxExecutions,
	}, now)
	if len(strings.TrimSpace(input.Description)) < 3 {
		problems = append(problems, "description must be at least 3 characters")
	}
	if !input.MovementType.Valid() {
		problems = append(problems, fmt.Sprintf("unsupported movement type %q", input.MovementType))
	}
	if input.Regularity != "" && !input.Regularity.Valid() {
		problems = append(problems, fmt.Sprintf("unsupported regularity %q", input.Regularity))
	}
	return problems
}

// CreateSchedule validates input and stores a new active schedule for the owner
func (s *Service) CreateSchedule(ctx context.Context, ownerID string, input models.ScheduleInput) (*models.RecurringSchedule, error) {
	if problems := validateInput(input, s.now()); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	p, _ := recurring.ParsePeriodicity(input.Periodicity)

	start := input.StartDate.UTC()
	schedule := &models.RecurringSchedule{
		OwnerID:        ownerID,
		CategoryID:     input.CategoryID,
		MovementType:   input.MovementType,
		Regularity:     regularityOrDefault(input.Regularity),
		Description:    strings.TrimSpace(input.Description),
		Amount:         input.Amount,
		Periodicity:    string(p),
		NextOccurrence: &start,
		EndDate:        utcPtr(input.EndDate),
		Active:         true,
		MaxExecutions:  input.MaxExecutions,
	}
	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.log.Infof("Schedule created for owner %s: %s (%s, %s)", ownerID, schedule.ID, schedule.Description, p.Label())
	return schedule, nil
}

// UpdateSchedule replaces the editable fields of a schedule. A start date that
// is left empty or equal to the stored next occurrence is not re-checked
// against the clock. A moved start date must fall after the last execution so
// it cannot collide with an occurrence already in the ledger.
func (s *Service) UpdateSchedule(ctx context.Context, ownerID, id string, input models.ScheduleInput) (*models.RecurringSchedule, error) {
	schedule, err := s.repo.GetSchedule(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	checkFrom := s.now()
	if input.StartDate.IsZero() && schedule.NextOccurrence != nil {
		input.StartDate = *schedule.NextOccurrence
	}
	moved := schedule.NextOccurrence == nil || !input.StartDate.Equal(*schedule.NextOccurrence)
	if !moved {
		checkFrom = input.StartDate
	}
	problems := validateInput(input, checkFrom)
	if moved && !input.StartDate.IsZero() && schedule.LastExecutedAt != nil && !input.StartDate.After(*schedule.LastExecutedAt) {
		problems = append(problems, fmt.Sprintf("start date must be after the last execution at %s",
			schedule.LastExecutedAt.UTC().Format(time.RFC3339)))
	}
	if input.MaxExecutions != nil && *input.MaxExecutions < schedule.ExecutionCount {
		problems = append(problems, fmt.Sprintf("max executions must not be below the %d executions already made", schedule.ExecutionCount))
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	p, _ := recurring.ParsePeriodicity(input.Periodicity)

	start := input.StartDate.UTC()
	schedule.CategoryID = input.CategoryID
	schedule.MovementType = input.MovementType
	schedule.Regularity = regularityOrDefault(input.Regularity)
	schedule.Description = strings.TrimSpace(input.Description)
	schedule.Amount = input.Amount
	schedule.Periodicity = string(p)
	schedule.NextOccurrence = &start
	schedule.EndDate = utcPtr(input.EndDate)
	schedule.MaxExecutions = input.MaxExecutions
	if err := s.repo.UpdateSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.log.Infof("Schedule updated for owner %s: %s", ownerID, schedule.ID)
	return schedule, nil
}

// SetActive toggles whether a schedule may fire
func (s *Service) SetActive(ctx context.Context, ownerID, id string, active bool) (*models.RecurringSchedule, error) {
	schedule, err := s.repo.GetSchedule(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if active && schedule.NextOccurrence == nil {
		return nil, &ValidationError{Problems: []string{"an active schedule needs a next occurrence"}}
	}
	if schedule.Active == active {
		return schedule, nil
	}

	schedule.Active = active
	if err := s.repo.UpdateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	s.log.Infof("Schedule %s for owner %s set active=%t", schedule.ID, ownerID, active)
	return schedule, nil
}

// DeleteSchedule removes a schedule
func (s *Service) DeleteSchedule(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteSchedule(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	s.log.Infof("Schedule deleted for owner %s: %s", ownerID, id)
	return nil
}

// GetSchedule returns one schedule of the owner
func (s *Service) GetSchedule(ctx context.Context, ownerID, id string) (*models.RecurringSchedule, error) {
	return s.repo.GetSchedule(ctx, ownerID, id)
}

// ListSchedules returns every schedule of the owner
func (s *Service) ListSchedules(ctx context.Context, ownerID string) ([]models.RecurringSchedule, error) {
	return s.repo.ListSchedulesByOwner(ctx, ownerID)
}

// ListLedgerEntries returns the entries a schedule has produced
func (s *Service) ListLedgerEntries(ctx context.Context, ownerID, id string) ([]models.LedgerEntry, error) {
	if _, err := s.repo.GetSchedule(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.repo.ListLedgerEntries(ctx, ownerID, id)
}

// PendingExecutions returns the owner's schedules that are due now
func (s *Service) PendingExecutions(ctx context.Context, ownerID string) ([]models.RecurringSchedule, error) {
	schedules, err := s.repo.ListSchedulesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return recurring.PendingExecutions(schedules, s.now()), nil
}

// Projection returns the projected impact of the owner's schedules over months
func (s *Service) Projection(ctx context.Context, ownerID string, months int) (models.ProjectionResult, error) {
	if months < 1 || months > MaxHorizonMonths {
		return models.ProjectionResult{}, &ValidationError{
			Problems: []string{fmt.Sprintf("horizon must be between 1 and %d months", MaxHorizonMonths)},
		}
	}

	key := s.cacheKey(ctx, ownerID, fmt.Sprintf("projection:%d", months))
	var result models.ProjectionResult
	if s.cached(ctx, key, &result) {
		return result, nil
	}

	schedules, err := s.repo.ListSchedulesByOwner(ctx, ownerID)
	if err != nil {
		return models.ProjectionResult{}, err
	}
	result = recurring.CalculateScheduledImpact(schedules, months, s.now())
	s.reportSkipped(ownerID, result.Skipped)
	s.store(ctx, key, result)
	return result, nil
}

// Summary returns portfolio statistics for the owner
func (s *Service) Summary(ctx context.Context, ownerID string) (models.PortfolioSummary, error) {
	key := s.cacheKey(ctx, ownerID, "summary")
	var summary models.PortfolioSummary
	if s.cached(ctx, key, &summary) {
		return summary, nil
	}

	schedules, err := s.repo.ListSchedulesByOwner(ctx, ownerID)
	if err != nil {
		return models.PortfolioSummary{}, err
	}
	summary = recurring.GenerateScheduleSummary(schedules)
	s.reportSkipped(ownerID, summary.Skipped)
	s.store(ctx, key, summary)
	return summary, nil
}

// Conflicts audits the owner's schedules
func (s *Service) Conflicts(ctx context.Context, ownerID string) ([]models.ConflictReport, error) {
	schedules, err := s.repo.ListSchedulesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return recurring.DetectScheduleConflicts(schedules, s.now()), nil
}

func (s *Service) reportSkipped(ownerID string, ids []string) {
	if len(ids) == 0 {
		return
	}
	metrics.InvalidPeriodicity.Add(float64(len(ids)))
	s.log.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"schedules": ids,
	}).Warn("Skipped schedules with unrecognized configuration")
}

func regularityOrDefault(r models.Regularity) models.Regularity {
	if r == "" {
		return models.RegularityStatic
	}
	return r
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
