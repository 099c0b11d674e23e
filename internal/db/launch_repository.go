package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
)

// Launch repository errors.
var (
	ErrLaunchRecordNotFound = errors.New("launch record not found")
	ErrInvalidLaunchRecord  = errors.New("invalid launch record")
)

// LaunchRepository handles launch record persistence.
type LaunchRepository struct {
	db *DB
}

// NewLaunchRepository creates a new LaunchRepository.
func NewLaunchRepository(db *DB) *LaunchRepository {
	return &LaunchRepository{db: db}
}

// Create inserts a new launch record.
func (r *LaunchRepository) Create(ctx context.Context, record *models.LaunchRecord) error {
	if record.Profile == "" || record.Status == "" {
		return ErrInvalidLaunchRecord
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO launch_records (
			id, profile, item_type, item_label, status, message, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Profile,
		string(record.ItemType),
		record.ItemLabel,
		string(record.Status),
		record.Message,
		record.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert launch record: %w", err)
	}

	return nil
}

// Get retrieves a launch record by ID.
func (r *LaunchRepository) Get(ctx context.Context, id string) (*models.LaunchRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, profile, item_type, item_label, status, message, recorded_at
		FROM launch_records WHERE id = ?
	`, id)

	record, err := scanLaunchRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLaunchRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListRecent returns the most recent launch records, newest first.
func (r *LaunchRepository) ListRecent(ctx context.Context, limit int) ([]*models.LaunchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, profile, item_type, item_label, status, message, recorded_at
		FROM launch_records ORDER BY recorded_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query launch records: %w", err)
	}
	defer rows.Close()

	var records []*models.LaunchRecord
	for rows.Next() {
		record, err := scanLaunchRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating launch records: %w", err)
	}

	return records, nil
}

// SummarizeByProfile returns aggregated usage for one profile. Launches
// are counted from marker rows (status "run"); items from the rest.
func (r *LaunchRepository) SummarizeByProfile(ctx context.Context, profile string) (*models.ProfileUsage, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'run') AS launch_count,
			COUNT(*) FILTER (WHERE status != 'run') AS item_count,
			MAX(recorded_at) AS last_used
		FROM launch_records WHERE profile = ?
	`, profile)

	var usage models.ProfileUsage
	var lastUsed sql.NullString
	if err := row.Scan(&usage.LaunchCount, &usage.ItemCount, &lastUsed); err != nil {
		return nil, fmt.Errorf("failed to summarize profile %s: %w", profile, err)
	}

	usage.Profile = profile
	if lastUsed.Valid {
		if t, err := time.Parse(time.RFC3339, lastUsed.String); err == nil {
			usage.LastUsedAt = &t
		}
	}
	return &usage, nil
}

// TopProfiles returns profiles ordered by launch count, highest first.
func (r *LaunchRepository) TopProfiles(ctx context.Context, limit int) ([]*models.ProfileUsage, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			profile,
			COUNT(*) FILTER (WHERE status = 'run') AS launch_count,
			COUNT(*) FILTER (WHERE status != 'run') AS item_count,
			MAX(recorded_at) AS last_used
		FROM launch_records
		GROUP BY profile
		ORDER BY launch_count DESC, profile
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top profiles: %w", err)
	}
	defer rows.Close()

	var usages []*models.ProfileUsage
	for rows.Next() {
		var usage models.ProfileUsage
		var lastUsed sql.NullString
		if err := rows.Scan(&usage.Profile, &usage.LaunchCount, &usage.ItemCount, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan profile usage: %w", err)
		}
		if lastUsed.Valid {
			if t, err := time.Parse(time.RFC3339, lastUsed.String); err == nil {
				usage.LastUsedAt = &t
			}
		}
		usages = append(usages, &usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile usage: %w", err)
	}

	return usages, nil
}

// RecordRun inserts the per-run marker row used by launch counting.
func (r *LaunchRepository) RecordRun(ctx context.Context, profile string) error {
	return r.Create(ctx, &models.LaunchRecord{
		Profile: profile,
		Status:  "run",
		Message: fmt.Sprintf("Launching profile: %s", profile),
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLaunchRecord(row rowScanner) (*models.LaunchRecord, error) {
	var record models.LaunchRecord
	var itemType, status, recordedAt string

	if err := row.Scan(
		&record.ID,
		&record.Profile,
		&itemType,
		&record.ItemLabel,
		&status,
		&record.Message,
		&recordedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan launch record: %w", err)
	}

	record.ItemType = models.ItemType(itemType)
	record.Status = models.OutcomeStatus(status)
	if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
		record.RecordedAt = t
	}

	return &record, nil
}
