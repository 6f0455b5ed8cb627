package stats

import (
	"context"

	statsdomain "github.com/LoreWasTaken/caresync/internal/domain/stats"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Records(ctx context.Context, userID string, filter statsdomain.RangeFilter) ([]statsdomain.RecordRow, error) {
	query := r.db.WithContext(ctx).
		Table("adherence_records").
		Select("medication_id, status, scheduled_time, taken_at").
		Where("user_id = ?", userID)

	if filter.MedicationID != "" {
		query = query.Where("medication_id = ?", filter.MedicationID)
	}
	if !filter.From.IsZero() {
		query = query.Where("scheduled_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("scheduled_time <= ?", filter.To)
	}

	var rows []statsdomain.RecordRow
	if err := query.Order("scheduled_time asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
