package medication

import (
	"math"
	"sort"
	"time"
)

const (
	DefaultDayStartHour = 8

	// doseWindow is how long after the scheduled time a dose still counts
	// as on time.
	doseWindow = 30 * time.Minute
)

// ScheduleEntry is a derived dose slot. Entries are recomputed on demand and
// never persisted.
type ScheduleEntry struct {
	MedicationID    string    `json:"medication_id"`
	MedicationName  string    `json:"medication_name"`
	Dosage          float64   `json:"dosage"`
	DosageUnit      string    `json:"dosage_unit"`
	Date            string    `json:"date"`
	OccurrenceIndex int       `json:"occurrence_index"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	WindowEnd       time.Time `json:"window_end"`
}

// GenerateSchedule expands active medications into dose slots for every
// calendar day from rangeStart through rangeEnd inclusive. For a medication
// taken k times a day the doses are spaced 24/k hours apart starting at
// dayStartHour, with the minutes zeroed. A computed hour of 24 or more rolls
// into the next calendar day rather than being clamped, so late doses never
// collide with the following day's first slot.
//
// Output is ordered by date, then medication input order, then occurrence,
// and is deterministic for identical inputs.
func GenerateSchedule(meds []Medication, rangeStart, rangeEnd time.Time, dayStartHour int) []ScheduleEntry {
	if dayStartHour <= 0 {
		dayStartHour = DefaultDayStartHour
	}

	start := truncateToDay(rangeStart)
	end := truncateToDay(rangeEnd)
	entries := make([]ScheduleEntry, 0)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for _, m := range meds {
			k := m.DosesPerDay()
			intervalHours := 24.0 / float64(k)
			for i := 0; i < k; i++ {
				hour := int(math.Floor(float64(dayStartHour) + float64(i)*intervalHours))
				// time.Date normalizes hour >= 24 into the next day.
				scheduled := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
				entries = append(entries, ScheduleEntry{
					MedicationID:    m.ID,
					MedicationName:  m.Name,
					Dosage:          m.Dosage,
					DosageUnit:      m.DosageUnit,
					Date:            day.Format("2006-01-02"),
					OccurrenceIndex: i,
					ScheduledTime:   scheduled,
					WindowEnd:       scheduled.Add(doseWindow),
				})
			}
		}
	}

	return entries
}

// UpcomingDose is a rough estimate of a medication's next dose.
type UpcomingDose struct {
	MedicationID   string    `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         float64   `json:"dosage"`
	DosageUnit     string    `json:"dosage_unit"`
	EstimatedTime  time.Time `json:"estimated_time"`
}

// NextDoses returns at most one upcoming dose per medication, estimated as
// now plus one dosing interval and filtered to the given window.
//
// This is deliberately a coarse heuristic: the estimate is relative to the
// moment of the call and does NOT line up with the calendar slots produced
// by GenerateSchedule. Callers wanting exact times must use the generator.
func NextDoses(meds []Medication, now time.Time, windowHours int) []UpcomingDose {
	cutoff := now.Add(time.Duration(windowHours) * time.Hour)
	doses := make([]UpcomingDose, 0, len(meds))

	for _, m := range meds {
		interval := time.Duration(24.0 / float64(m.DosesPerDay()) * float64(time.Hour))
		next := now.Add(interval)
		if next.After(cutoff) {
			continue
		}
		doses = append(doses, UpcomingDose{
			MedicationID:   m.ID,
			MedicationName: m.Name,
			Dosage:         m.Dosage,
			DosageUnit:     m.DosageUnit,
			EstimatedTime:  next,
		})
	}

	sort.Slice(doses, func(i, j int) bool {
		return doses[i].EstimatedTime.Before(doses[j].EstimatedTime)
	})
	return doses
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
