package prescription

import (
	"testing"
	"time"
)

var testToday = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func TestNormalizeFull(t *testing.T) {
	until := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	draft := Normalize(ParsedMedication{
		DrugName:           "Metformin",
		DoseMg:             500,
		TimesPerDay:        3,
		IntervalHours:      8,
		QuantityPrescribed: 90,
		ValidUntil:         &until,
	}, testToday)

	if draft.Name != "Metformin" {
		t.Fatalf("expected name Metformin, got %q", draft.Name)
	}
	if draft.Dosage != 500 || draft.DosageUnit != "mg" {
		t.Fatalf("expected 500 mg, got %v %s", draft.Dosage, draft.DosageUnit)
	}
	if draft.Frequency != "3x / day (every 8h)" {
		t.Fatalf("unexpected frequency label: %q", draft.Frequency)
	}
	if draft.TimesPerDay != 3 {
		t.Fatalf("expected 3 times per day, got %d", draft.TimesPerDay)
	}
	if draft.TotalQuantity != 90 {
		t.Fatalf("expected quantity 90, got %d", draft.TotalQuantity)
	}
	if !draft.StartDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected start date today at midnight, got %v", draft.StartDate)
	}
	if draft.EndDate == nil || !draft.EndDate.Equal(until) {
		t.Fatalf("expected end date carried over, got %v", draft.EndDate)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	draft := Normalize(ParsedMedication{RawTitle: "Aspirina 100"}, testToday)

	if draft.Name != "Aspirina 100" {
		t.Fatalf("expected raw title fallback, got %q", draft.Name)
	}
	if draft.TimesPerDay != 1 {
		t.Fatalf("expected default 1 time per day, got %d", draft.TimesPerDay)
	}
	if draft.Frequency != "1x daily" {
		t.Fatalf("expected default frequency label, got %q", draft.Frequency)
	}
	if draft.TotalQuantity != 30 {
		t.Fatalf("expected default quantity 30, got %d", draft.TotalQuantity)
	}
	if draft.DosageUnit != "mg" {
		t.Fatalf("expected default unit mg, got %q", draft.DosageUnit)
	}
}

func TestNormalizeFrequencyLabels(t *testing.T) {
	cases := []struct {
		times, interval int
		want            string
	}{
		{3, 8, "3x / day (every 8h)"},
		{2, 0, "2x / day"},
		{0, 12, "every 12h"},
		{0, 0, "1x daily"},
	}
	for _, tc := range cases {
		draft := Normalize(ParsedMedication{DrugName: "X", TimesPerDay: tc.times, IntervalHours: tc.interval}, testToday)
		if draft.Frequency != tc.want {
			t.Fatalf("times=%d interval=%d: expected %q, got %q", tc.times, tc.interval, tc.want, draft.Frequency)
		}
	}
}

func TestNormalizeDoseFallback(t *testing.T) {
	draft := Normalize(ParsedMedication{DrugName: "X", DosesMg: []float64{250, 500}}, testToday)
	if draft.Dosage != 250 {
		t.Fatalf("expected first listed dose, got %v", draft.Dosage)
	}
}

func TestNormalizeQuantityFallsBackToBox(t *testing.T) {
	draft := Normalize(ParsedMedication{DrugName: "X", UnitsInBox: 28}, testToday)
	if draft.TotalQuantity != 28 {
		t.Fatalf("expected box size 28, got %d", draft.TotalQuantity)
	}
}

func TestInferUnit(t *testing.T) {
	cases := []struct {
		title string
		notes string
		want  string
	}{
		{"Ibuprofeno 600mg", "", "mg"},
		{"Jarabe 5 ml", "", "ml"},
		{"Levotiroxina 50 mcg", "", "mcg"},
		{"Insulina 10 UI", "", "UI"},
		{"Macrogol 10 g sobres", "", "g"},
		{"Paracetamol", "sin indicaciones", "mg"},
	}
	for _, tc := range cases {
		draft := Normalize(ParsedMedication{DrugName: "X", RawTitle: tc.title, RawNotes: tc.notes}, testToday)
		if draft.DosageUnit != tc.want {
			t.Fatalf("%q: expected unit %q, got %q", tc.title, tc.want, draft.DosageUnit)
		}
	}
}
