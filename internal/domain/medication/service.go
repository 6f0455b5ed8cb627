package medication

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	UserID        string
	Name          string
	Dosage        float64
	DosageUnit    string
	Frequency     string
	TimesPerDay   int
	TotalQuantity int
	StartDate     time.Time
	EndDate       *time.Time
	Instructions  string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Medication, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	if input.Dosage < 0 {
		fields["dosage"] = "dosage must not be negative"
	}
	if input.TimesPerDay < 0 {
		fields["frequency.times_per_day"] = "times per day must not be negative"
	}
	if input.TotalQuantity < 0 {
		fields["total_quantity"] = "total quantity must not be negative"
	}
	if input.EndDate != nil && !input.StartDate.IsZero() && input.EndDate.Before(input.StartDate) {
		fields["end_date"] = "end date must not be before start date"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	unit := strings.TrimSpace(input.DosageUnit)
	if unit == "" {
		unit = "mg"
	}
	timesPerDay := input.TimesPerDay
	if timesPerDay == 0 {
		timesPerDay = 1
	}
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	m := Medication{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		Name:          name,
		Dosage:        input.Dosage,
		DosageUnit:    unit,
		Frequency:     strings.TrimSpace(input.Frequency),
		TimesPerDay:   timesPerDay,
		TotalQuantity: input.TotalQuantity,
		// A fresh prescription starts with a full box.
		RemainingQuantity: input.TotalQuantity,
		StartDate:         startDate,
		EndDate:           input.EndDate,
		Instructions:      strings.TrimSpace(input.Instructions),
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Medication, error) {
	return s.repo.GetOwned(ctx, id, userID)
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Medication, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	switch filter.Status {
	case StatusActive, StatusInactive, StatusAll:
	default:
		filter.Status = StatusActive
	}
	filter.Search = strings.TrimSpace(filter.Search)

	return s.repo.List(ctx, userID, filter)
}

type UpdateInput struct {
	Name              *string
	Dosage            *float64
	DosageUnit        *string
	Frequency         *string
	TimesPerDay       *int
	TotalQuantity     *int
	RemainingQuantity *int
	EndDate           *time.Time
	Instructions      *string
}

func (s *Service) Update(ctx context.Context, id, userID string, input UpdateInput) (*Medication, error) {
	m, err := s.repo.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			fields["name"] = "name is required"
		} else {
			m.Name = name
		}
	}
	if input.Dosage != nil {
		if *input.Dosage < 0 {
			fields["dosage"] = "dosage must not be negative"
		} else {
			m.Dosage = *input.Dosage
		}
	}
	if input.DosageUnit != nil && strings.TrimSpace(*input.DosageUnit) != "" {
		m.DosageUnit = strings.TrimSpace(*input.DosageUnit)
	}
	if input.Frequency != nil {
		m.Frequency = strings.TrimSpace(*input.Frequency)
	}
	if input.TimesPerDay != nil {
		if *input.TimesPerDay < 1 {
			fields["frequency.times_per_day"] = "times per day must be at least 1"
		} else {
			m.TimesPerDay = *input.TimesPerDay
		}
	}
	if input.TotalQuantity != nil {
		if *input.TotalQuantity < 0 {
			fields["total_quantity"] = "total quantity must not be negative"
		} else {
			m.TotalQuantity = *input.TotalQuantity
		}
	}
	if input.RemainingQuantity != nil {
		if *input.RemainingQuantity < 0 {
			fields["remaining_quantity"] = "remaining quantity must not be negative"
		} else {
			m.RemainingQuantity = *input.RemainingQuantity
		}
	}
	if input.EndDate != nil {
		m.EndDate = input.EndDate
	}
	if input.Instructions != nil {
		m.Instructions = strings.TrimSpace(*input.Instructions)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Deactivate soft-deletes: the row stays so past adherence records keep a
// valid medication to point at.
func (s *Service) Deactivate(ctx context.Context, id, userID string) error {
	return s.repo.Deactivate(ctx, id, userID)
}

func (s *Service) ListActive(ctx context.Context, userID string) ([]Medication, error) {
	return s.repo.ListActive(ctx, userID)
}

// ListRefillNeeded filters the user's active medications through the single
// refill threshold.
func (s *Service) ListRefillNeeded(ctx context.Context, userID string) ([]Medication, error) {
	meds, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]Medication, 0, len(meds))
	for _, m := range meds {
		if NeedsRefill(m) {
			result = append(result, m)
		}
	}
	return result, nil
}

// Schedule renders the calendar dose schedule for the user's active
// medications over [start, start+days).
func (s *Service) Schedule(ctx context.Context, userID string, start time.Time, days int) ([]ScheduleEntry, error) {
	if days < 1 {
		days = 7
	}
	meds, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, days-1)
	return GenerateSchedule(meds, start, end, DefaultDayStartHour), nil
}

// UpcomingDoses returns the coarse next-dose estimate per medication.
func (s *Service) UpcomingDoses(ctx context.Context, userID string, now time.Time, windowHours int) ([]UpcomingDose, error) {
	if windowHours < 1 {
		windowHours = 24
	}
	meds, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NextDoses(meds, now, windowHours), nil
}
