package adherence

import (
	"context"
	"errors"

	adherencedomain "github.com/LoreWasTaken/caresync/internal/domain/adherence"
	medicationdomain "github.com/LoreWasTaken/caresync/internal/domain/medication"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(adherencedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, record *adherencedomain.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*adherencedomain.Record, error) {
	var record adherencedomain.Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, adherencedomain.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PostgresRepository) Update(ctx context.Context, record *adherencedomain.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter adherencedomain.ListFilter) ([]adherencedomain.Record, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&adherencedomain.Record{}).
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

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []adherencedomain.Record
	err := query.
		Order("scheduled_time desc").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *PostgresRepository) MedicationOwned(ctx context.Context, medicationID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&medicationdomain.Medication{}).
		Where("id = ? AND user_id = ? AND is_active = ?", medicationID, userID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DecrementStock is a single guarded UPDATE: the decrement and the
// never-below-zero clamp happen in one statement, serialized by the row
// lock the database takes for the write. Stock already at zero is left
// untouched rather than treated as an error.
func (r *PostgresRepository) DecrementStock(ctx context.Context, medicationID string) error {
	return r.db.WithContext(ctx).
		Model(&medicationdomain.Medication{}).
		Where("id = ? AND remaining_quantity > 0", medicationID).
		Update("remaining_quantity", gorm.Expr("remaining_quantity - 1")).
		Error
}
