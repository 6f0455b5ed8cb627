package caregiver

import (
	"strings"
	"time"
)

// Relationship is the caregiver-to-patient access grant. It is created as a
// pending invite (verified=false, active=true). Accepting marks it verified;
// declining or removing deactivates it for good. A deactivated row is never
// revived; a fresh invite creates a new row.
type Relationship struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	CaregiverID      string    `gorm:"type:uuid;not null;index:idx_relationship_pair" json:"caregiver_id"`
	PatientID        string    `gorm:"type:uuid;not null;index:idx_relationship_pair" json:"patient_id"`
	RelationshipType string    `gorm:"type:varchar(64)" json:"relationship_type"`
	Permissions      string    `gorm:"type:text" json:"permissions"`
	IsVerified       bool      `gorm:"not null;default:false" json:"is_verified"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Relationship) TableName() string {
	return "caregiver_patients"
}

// PermissionList splits the stored comma-separated capability set. The set is
// carried through invite and returned to clients but access is currently
// all-or-nothing once a relationship is verified.
func (r Relationship) PermissionList() []string {
	if strings.TrimSpace(r.Permissions) == "" {
		return []string{}
	}
	parts := strings.Split(r.Permissions, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// PatientSummary is a relationship joined with the patient's profile, as
// returned to caregivers.
type PatientSummary struct {
	RelationshipID   string    `json:"relationship_id"`
	PatientID        string    `json:"patient_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RelationshipType string    `json:"relationship_type"`
	IsVerified       bool      `json:"is_verified"`
	Since            time.Time `json:"since"`
}

// CaregiverSummary is the patient-side view of a relationship.
type CaregiverSummary struct {
	RelationshipID   string    `json:"relationship_id"`
	CaregiverID      string    `json:"caregiver_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RelationshipType string    `json:"relationship_type"`
	IsVerified       bool      `json:"is_verified"`
	Since            time.Time `json:"since"`
}
