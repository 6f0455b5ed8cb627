package prescription

import "time"

// ParsedMedication is one record returned by the external PDF prescription
// parser. Field names follow the parser's wire format.
type ParsedMedication struct {
	DrugName           string     `json:"drug_name"`
	DoseMg             float64    `json:"dose_mg"`
	DosesMg            []float64  `json:"doses_mg"`
	TimesPerDay        int        `json:"times_per_day"`
	IntervalHours      int        `json:"interval_hours"`
	QuantityPrescribed int        `json:"quantity_prescribed"`
	UnitsInBox         int        `json:"units_in_box"`
	ValidUntil         *time.Time `json:"valid_until"`
	RawTitle           string     `json:"raw_title"`
	RawNotes           string     `json:"raw_notes"`
	Form               string     `json:"form"`
}

// MedicationDraft is the canonical medication-create payload a parsed record
// normalizes into.
type MedicationDraft struct {
	Name          string     `json:"name"`
	Dosage        float64    `json:"dosage"`
	DosageUnit    string     `json:"dosage_unit"`
	Frequency     string     `json:"frequency"`
	TimesPerDay   int        `json:"times_per_day"`
	TotalQuantity int        `json:"total_quantity"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}
