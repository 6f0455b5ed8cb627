package stats

import "time"

// RecordRow is the slice of an adherence record the aggregators need.
type RecordRow struct {
	MedicationID  string
	Status        string
	ScheduledTime time.Time
	TakenAt       time.Time
}

type RangeFilter struct {
	From         time.Time
	To           time.Time
	MedicationID string
}

type Summary struct {
	Total   int `json:"total"`
	Taken   int `json:"taken"`
	Missed  int `json:"missed"`
	Skipped int `json:"skipped"`
	Rate    int `json:"rate"`
}

// TrendBucket is one calendar day's aggregated adherence counts.
type TrendBucket struct {
	Date   string `json:"date"`
	Taken  int    `json:"taken"`
	Missed int    `json:"missed"`
	Total  int    `json:"total"`
	Rate   int    `json:"rate"`
}

type MedicationSummary struct {
	MedicationID string `json:"medication_id"`
	Total        int    `json:"total"`
	Taken        int    `json:"taken"`
	Rate         int    `json:"rate"`
}
