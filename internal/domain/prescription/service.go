package prescription

import (
	"context"
	"io"
	"time"

	"github.com/LoreWasTaken/caresync/internal/domain/medication"
)

type Parser interface {
	Parse(ctx context.Context, filename string, document io.Reader) ([]ParsedMedication, error)
}

type MedicationCreator interface {
	Create(ctx context.Context, input medication.CreateInput) (*medication.Medication, error)
}

type Service struct {
	parser      Parser
	medications MedicationCreator
	now         func() time.Time
}

func NewService(parser Parser, medications MedicationCreator) *Service {
	return &Service{parser: parser, medications: medications, now: time.Now}
}

// Import runs a prescription PDF through the external parser, normalizes
// every parsed record and creates a medication for each. An empty parse is
// not an error; the caller gets back an empty list.
func (s *Service) Import(ctx context.Context, userID, filename string, document io.Reader) ([]medication.Medication, error) {
	if s.parser == nil {
		return nil, ErrParserNotConfigured
	}
	parsed, err := s.parser.Parse(ctx, filename, document)
	if err != nil {
		return nil, err
	}

	created := make([]medication.Medication, 0, len(parsed))
	for _, record := range parsed {
		draft := Normalize(record, s.now().UTC())
		if draft.Name == "" {
			continue
		}
		m, err := s.medications.Create(ctx, medication.CreateInput{
			UserID:        userID,
			Name:          draft.Name,
			Dosage:        draft.Dosage,
			DosageUnit:    draft.DosageUnit,
			Frequency:     draft.Frequency,
			TimesPerDay:   draft.TimesPerDay,
			TotalQuantity: draft.TotalQuantity,
			StartDate:     draft.StartDate,
			EndDate:       draft.EndDate,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *m)
	}
	return created, nil
}
