package caregiver

import (
	"context"
	"errors"
	"time"

	caregiverdomain "github.com/LoreWasTaken/caresync/internal/domain/caregiver"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(caregiverdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, relationship *caregiverdomain.Relationship) error {
	return r.db.WithContext(ctx).Create(relationship).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*caregiverdomain.Relationship, error) {
	var relationship caregiverdomain.Relationship
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&relationship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, caregiverdomain.ErrRelationshipNotFound
		}
		return nil, err
	}
	return &relationship, nil
}

// GetByIDForUpdate locks the relationship row so the gate check and the
// guarded state change see one snapshot.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*caregiverdomain.Relationship, error) {
	var relationship caregiverdomain.Relationship
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&relationship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, caregiverdomain.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &relationship, nil
}

func (r *PostgresRepository) ActiveVerifiedExists(ctx context.Context, caregiverID, patientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&caregiverdomain.Relationship{}).
		Where("caregiver_id = ? AND patient_id = ? AND is_active = ? AND is_verified = ?", caregiverID, patientID, true, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ActiveExists(ctx context.Context, caregiverID, patientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&caregiverdomain.Relationship{}).
		Where("caregiver_id = ? AND patient_id = ? AND is_active = ?", caregiverID, patientID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) SetVerified(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "is_verified", true)
}

func (r *PostgresRepository) SetInactive(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "is_active", false)
}

func (r *PostgresRepository) setFlag(ctx context.Context, id, column string, value bool) error {
	result := r.db.WithContext(ctx).
		Model(&caregiverdomain.Relationship{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return caregiverdomain.ErrRelationshipNotFound
	}
	return nil
}

func (r *PostgresRepository) ListPatients(ctx context.Context, caregiverID string) ([]caregiverdomain.PatientSummary, error) {
	type row struct {
		RelationshipID   string    `gorm:"column:relationship_id"`
		PatientID        string    `gorm:"column:patient_id"`
		Name             string    `gorm:"column:name"`
		Email            string    `gorm:"column:email"`
		RelationshipType string    `gorm:"column:relationship_type"`
		IsVerified       bool      `gorm:"column:is_verified"`
		CreatedAt        time.Time `gorm:"column:created_at"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("caregiver_patients").
		Select("caregiver_patients.id as relationship_id, caregiver_patients.patient_id, users.name, users.email, caregiver_patients.relationship_type, caregiver_patients.is_verified, caregiver_patients.created_at").
		Joins("join users on users.id = caregiver_patients.patient_id").
		Where("caregiver_patients.caregiver_id = ? AND caregiver_patients.is_active = ?", caregiverID, true).
		Order("caregiver_patients.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]caregiverdomain.PatientSummary, 0, len(rows))
	for _, item := range rows {
		result = append(result, caregiverdomain.PatientSummary{
			RelationshipID:   item.RelationshipID,
			PatientID:        item.PatientID,
			Name:             item.Name,
			Email:            item.Email,
			RelationshipType: item.RelationshipType,
			IsVerified:       item.IsVerified,
			Since:            item.CreatedAt,
		})
	}
	return result, nil
}

func (r *PostgresRepository) ListCaregivers(ctx context.Context, patientID string) ([]caregiverdomain.CaregiverSummary, error) {
	type row struct {
		RelationshipID   string    `gorm:"column:relationship_id"`
		CaregiverID      string    `gorm:"column:caregiver_id"`
		Name             string    `gorm:"column:name"`
		Email            string    `gorm:"column:email"`
		RelationshipType string    `gorm:"column:relationship_type"`
		IsVerified       bool      `gorm:"column:is_verified"`
		CreatedAt        time.Time `gorm:"column:created_at"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("caregiver_patients").
		Select("caregiver_patients.id as relationship_id, caregiver_patients.caregiver_id, users.name, users.email, caregiver_patients.relationship_type, caregiver_patients.is_verified, caregiver_patients.created_at").
		Joins("join users on users.id = caregiver_patients.caregiver_id").
		Where("caregiver_patients.patient_id = ? AND caregiver_patients.is_active = ?", patientID, true).
		Order("caregiver_patients.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]caregiverdomain.CaregiverSummary, 0, len(rows))
	for _, item := range rows {
		result = append(result, caregiverdomain.CaregiverSummary{
			RelationshipID:   item.RelationshipID,
			CaregiverID:      item.CaregiverID,
			Name:             item.Name,
			Email:            item.Email,
			RelationshipType: item.RelationshipType,
			IsVerified:       item.IsVerified,
			Since:            item.CreatedAt,
		})
	}
	return result, nil
}
