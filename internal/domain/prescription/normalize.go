package prescription

import (
	"fmt"
	"strings"
	"time"
)

const defaultTotalQuantity = 30

// Normalize maps a parsed prescription record onto a canonical medication
// draft, filling every hole the parser may leave.
func Normalize(parsed ParsedMedication, today time.Time) MedicationDraft {
	name := strings.TrimSpace(parsed.DrugName)
	if name == "" {
		name = strings.TrimSpace(parsed.RawTitle)
	}

	dosage := parsed.DoseMg
	if dosage == 0 && len(parsed.DosesMg) > 0 {
		dosage = parsed.DosesMg[0]
	}

	timesPerDay := parsed.TimesPerDay
	if timesPerDay < 1 {
		timesPerDay = 1
	}

	total := parsed.QuantityPrescribed
	if total == 0 {
		total = parsed.UnitsInBox
	}
	if total == 0 {
		total = defaultTotalQuantity
	}

	return MedicationDraft{
		Name:          name,
		Dosage:        dosage,
		DosageUnit:    inferUnit(parsed),
		Frequency:     frequencyLabel(parsed.TimesPerDay, parsed.IntervalHours),
		TimesPerDay:   timesPerDay,
		TotalQuantity: total,
		StartDate:     time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		EndDate:       parsed.ValidUntil,
	}
}

// inferUnit scans the free-text fields for a unit token; mg is the default.
func inferUnit(parsed ParsedMedication) string {
	text := strings.ToLower(parsed.RawTitle + " " + parsed.Form + " " + parsed.RawNotes)
	for _, unit := range []string{"ml", "mcg", "ui"} {
		if containsToken(text, unit) {
			if unit == "ui" {
				return "UI"
			}
			return unit
		}
	}
	if containsToken(text, "g") && !containsToken(text, "mg") {
		return "g"
	}
	return "mg"
}

func frequencyLabel(timesPerDay, intervalHours int) string {
	switch {
	case timesPerDay > 0 && intervalHours > 0:
		return fmt.Sprintf("%dx / day (every %dh)", timesPerDay, intervalHours)
	case timesPerDay > 0:
		return fmt.Sprintf("%dx / day", timesPerDay)
	case intervalHours > 0:
		return fmt.Sprintf("every %dh", intervalHours)
	}
	return "1x daily"
}

// containsToken matches a unit as its own word so "mg" in "12 mg" hits but
// the "g" inside "mg" does not.
func containsToken(text, token string) bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, field := range fields {
		field = strings.TrimLeft(field, "0123456789")
		if field == token {
			return true
		}
	}
	return false
}
