package medication

import "time"

type Medication struct {
	ID                string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name              string     `gorm:"not null" json:"name"`
	Dosage            float64    `gorm:"not null" json:"dosage"`
	DosageUnit        string     `gorm:"type:varchar(16);not null;default:mg" json:"dosage_unit"`
	Frequency         string     `gorm:"type:varchar(64)" json:"frequency"`
	TimesPerDay       int        `gorm:"not null;default:1" json:"times_per_day"`
	TotalQuantity     int        `gorm:"not null;default:0" json:"total_quantity"`
	RemainingQuantity int        `gorm:"not null;default:0" json:"remaining_quantity"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Instructions      string     `json:"instructions,omitempty"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// DosesPerDay never reports less than one dose a day, matching how the
// schedule and refill math treat an unset frequency.
func (m Medication) DosesPerDay() int {
	if m.TimesPerDay < 1 {
		return 1
	}
	return m.TimesPerDay
}

type StatusFilter string

const (
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
	StatusAll      StatusFilter = "all"
)

type ListFilter struct {
	Status StatusFilter
	Search string
	Page   int
	Limit  int
}
