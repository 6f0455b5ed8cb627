package medication

import (
	"context"
	"errors"

	medicationdomain "github.com/LoreWasTaken/caresync/internal/domain/medication"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *medicationdomain.Medication) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, userID string) (*medicationdomain.Medication, error) {
	var m medicationdomain.Medication
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, medicationdomain.ErrMedicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter medicationdomain.ListFilter) ([]medicationdomain.Medication, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&medicationdomain.Medication{}).
		Where("user_id = ?", userID)

	switch filter.Status {
	case medicationdomain.StatusActive:
		query = query.Where("is_active = ?", true)
	case medicationdomain.StatusInactive:
		query = query.Where("is_active = ?", false)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var meds []medicationdomain.Medication
	err := query.
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&meds).Error
	if err != nil {
		return nil, 0, err
	}
	return meds, total, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID string) ([]medicationdomain.Medication, error) {
	var meds []medicationdomain.Medication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at asc").
		Find(&meds).Error
	if err != nil {
		return nil, err
	}
	return meds, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *medicationdomain.Medication) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&medicationdomain.Medication{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return medicationdomain.ErrMedicationNotFound
	}
	return nil
}
