package user

import "time"

const (
	RolePatient            = "patient"
	RoleCaregiver          = "caregiver"
	RoleAdmin              = "admin"
	RoleHealthcareProvider = "healthcareprovider"
)

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"type:varchar(32);not null;default:patient" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleCaregiver, RoleAdmin, RoleHealthcareProvider:
		return true
	}
	return false
}
