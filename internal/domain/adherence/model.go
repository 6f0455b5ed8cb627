package adherence

import "time"

const (
	StatusTaken   = "taken"
	StatusMissed  = "missed"
	StatusSkipped = "skipped"
)

// MaxBulkRecords caps one bulk sync payload.
const MaxBulkRecords = 100

// Record is one reported intake event reconciled against the schedule.
type Record struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	MedicationID  string    `gorm:"type:uuid;not null;index" json:"medication_id"`
	Status        string    `gorm:"type:varchar(16);not null" json:"status"`
	ScheduledTime time.Time `json:"scheduled_time"`
	TakenAt       time.Time `json:"taken_at"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string {
	return "adherence_records"
}

func ValidStatus(status string) bool {
	switch status {
	case StatusTaken, StatusMissed, StatusSkipped:
		return true
	}
	return false
}

type RecordInput struct {
	MedicationID  string
	Status        string
	ScheduledTime time.Time
	TakenAt       time.Time
	Notes         string
}

type UpdateInput struct {
	Status  *string
	TakenAt *time.Time
	Notes   *string
}

type ListFilter struct {
	MedicationID string
	From         time.Time
	To           time.Time
	Page         int
	Limit        int
}
