package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dan9191/recurring-service/internal/models"
)

var (
	ErrScheduleNotFound        = errors.New("schedule not found")
	ErrScheduleAlreadyAdvanced = errors.New("schedule already advanced past this occurrence")
	ErrScheduleModified        = errors.New("schedule was modified concurrently")
)

const scheduleColumns = `id, owner_id, category_id, movement_type, regularity, description, amount,
	periodicity, next_occurrence, end_date, active, execution_count, max_executions,
	last_executed_at, created_at, updated_at`

// Repository provides database operations
type Repository struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: normalizeDriver(driver), now: time.Now}
}

// Migrate creates the schema if it does not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range migrations(r.driver) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// CreateSchedule stores a new schedule, assigning its id and timestamps
func (r *Repository) CreateSchedule(ctx context.Context, s *models.RecurringSchedule) error {
	now := normalizeTime(r.now())
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO recurring_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(ctx, r.bind(query),
		s.ID, s.OwnerID, nullString(s.CategoryID), string(s.MovementType), string(s.Regularity),
		s.Description, s.Amount, s.Periodicity, nullTime(s.NextOccurrence), nullTime(s.EndDate),
		s.Active, s.ExecutionCount, nullInt(s.MaxExecutions), nullTime(s.LastExecutedAt),
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves one schedule of an owner
func (r *Repository) GetSchedule(ctx context.Context, ownerID, id string) (*models.RecurringSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM recurring_schedules
		WHERE owner_id = $1 AND id = $2`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, r.bind(query), ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return s, nil
}

// ListSchedulesByOwner returns every schedule of an owner in creation order
func (r *Repository) ListSchedulesByOwner(ctx context.Context, ownerID string) ([]models.RecurringSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM recurring_schedules
		WHERE owner_id = $1
		ORDER BY created_at, id`
	return r.listSchedules(ctx, query, ownerID)
}

// ListActiveSchedules returns the active schedules of all owners
func (r *Repository) ListActiveSchedules(ctx context.Context) ([]models.RecurringSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM recurring_schedules
		WHERE active = $1
		ORDER BY next_occurrence, id`
	return r.listSchedules(ctx, query, true)
}

func (r *Repository) listSchedules(ctx context.Context, query string, args ...any) ([]models.RecurringSchedule, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]models.RecurringSchedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// UpdateSchedule persists the editable fields of a schedule. The write only
// applies while the stored execution count still matches s; a schedule fired
// since s was read yields ErrScheduleModified.
func (r *Repository) UpdateSchedule(ctx context.Context, s *models.RecurringSchedule) error {
	updatedAt := normalizeTime(r.now())
	query := `
		UPDATE recurring_schedules
		SET category_id = $1, movement_type = $2, regularity = $3, description = $4, amount = $5,
			periodicity = $6, next_occurrence = $7, end_date = $8, active = $9, max_executions = $10,
			updated_at = $11
		WHERE owner_id = $12 AND id = $13 AND execution_count = $14`
	res, err := r.db.ExecContext(ctx, r.bind(query),
		nullString(s.CategoryID), string(s.MovementType), string(s.Regularity), s.Description, s.Amount,
		s.Periodicity, nullTime(s.NextOccurrence), nullTime(s.EndDate), s.Active, nullInt(s.MaxExecutions),
		updatedAt, s.OwnerID, s.ID, s.ExecutionCount)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if err := expectOneRow(res, ErrScheduleModified); err != nil {
		if !errors.Is(err, ErrScheduleModified) {
			return err
		}
		return r.missingOr(ctx, s.OwnerID, s.ID, err)
	}
	s.UpdatedAt = updatedAt
	return nil
}

// missingOr returns ErrScheduleNotFound when the schedule does not exist and
// err otherwise.
func (r *Repository) missingOr(ctx context.Context, ownerID, id string, err error) error {
	var one int
	query := `SELECT 1 FROM recurring_schedules WHERE owner_id = $1 AND id = $2`
	switch scanErr := r.db.QueryRowContext(ctx, r.bind(query), ownerID, id).Scan(&one); {
	case errors.Is(scanErr, sql.ErrNoRows):
		return ErrScheduleNotFound
	case scanErr != nil:
		return fmt.Errorf("failed to check schedule: %w", scanErr)
	}
	return err
}

// DeleteSchedule removes a schedule of an owner
func (r *Repository) DeleteSchedule(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM recurring_schedules WHERE owner_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, r.bind(query), ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return expectOneRow(res, ErrScheduleNotFound)
}

// FireSchedule records one occurrence of s as a ledger entry and advances the
// schedule to next. The advance only applies while the stored schedule still
// points at s.NextOccurrence; otherwise another run already fired this
// occurrence and ErrScheduleAlreadyAdvanced is returned.
func (r *Repository) FireSchedule(ctx context.Context, s models.RecurringSchedule, next, firedAt time.Time) (*models.LedgerEntry, error) {
	if s.NextOccurrence == nil {
		return nil, fmt.Errorf("failed to fire schedule %s: no next occurrence", s.ID)
	}
	firedAt = normalizeTime(firedAt)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	advance := `
		UPDATE recurring_schedules
		SET execution_count = execution_count + 1, last_executed_at = $1, next_occurrence = $2, updated_at = $3
		WHERE id = $4 AND next_occurrence = $5 AND execution_count = $6`
	res, err := tx.ExecContext(ctx, r.bind(advance),
		firedAt, normalizeTime(next), firedAt, s.ID, normalizeTime(*s.NextOccurrence), s.ExecutionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to advance schedule: %w", err)
	}
	if err := expectOneRow(res, ErrScheduleAlreadyAdvanced); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:           uuid.NewString(),
		ScheduleID:   s.ID,
		OwnerID:      s.OwnerID,
		MovementType: s.MovementType,
		Amount:       s.Amount,
		Description:  s.Description,
		OccurredAt:   normalizeTime(*s.NextOccurrence),
		CreatedAt:    firedAt,
	}
	insert := `
		INSERT INTO ledger_entries (id, schedule_id, owner_id, movement_type, amount, description, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.ExecContext(ctx, r.bind(insert),
		entry.ID, entry.ScheduleID, entry.OwnerID, string(entry.MovementType), entry.Amount,
		entry.Description, entry.OccurredAt, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fire: %w", err)
	}
	return entry, nil
}

// ListLedgerEntries returns the entries materialized from one schedule, oldest first
func (r *Repository) ListLedgerEntries(ctx context.Context, ownerID, scheduleID string) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, schedule_id, owner_id, movement_type, amount, description, occurred_at, created_at
		FROM ledger_entries
		WHERE owner_id = $1 AND schedule_id = $2
		ORDER BY occurred_at`
	rows, err := r.db.QueryContext(ctx, r.bind(query), ownerID, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		var e models.LedgerEntry
		var movementType string
		if err := rows.Scan(&e.ID, &e.ScheduleID, &e.OwnerID, &movementType, &e.Amount,
			&e.Description, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.MovementType = models.MovementType(movementType)
		e.OccurredAt = e.OccurredAt.UTC()
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

func (r *Repository) bind(query string) string {
	return rebind(r.driver, query)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*models.RecurringSchedule, error) {
	var (
		s                                     models.RecurringSchedule
		movementType, regularity              string
		categoryID                            sql.NullString
		nextOccurrence, endDate, lastExecuted sql.NullTime
		maxExecutions                         sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.OwnerID, &categoryID, &movementType, &regularity, &s.Description, &s.Amount,
		&s.Periodicity, &nextOccurrence, &endDate, &s.Active, &s.ExecutionCount, &maxExecutions,
		&lastExecuted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.MovementType = models.MovementType(movementType)
	s.Regularity = models.Regularity(regularity)
	if categoryID.Valid {
		s.CategoryID = &categoryID.String
	}
	if maxExecutions.Valid {
		n := int(maxExecutions.Int64)
		s.MaxExecutions = &n
	}
	s.NextOccurrence = timeFromNull(nextOccurrence)
	s.EndDate = timeFromNull(endDate)
	s.LastExecutedAt = timeFromNull(lastExecuted)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// normalizeTime stores every timestamp in UTC at the precision both drivers keep.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: normalizeTime(*t), Valid: true}
}

func timeFromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
