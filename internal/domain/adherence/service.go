package adherence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordIntake appends one intake event and, for a taken dose, burns one
// unit of stock. The insert and the decrement commit together or not at all,
// so two devices reporting the same dose can race without losing a decrement
// or driving stock negative.
func (s *Service) RecordIntake(ctx context.Context, userID string, input RecordInput) (*Record, error) {
	record, err := s.buildRecord(userID, input)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		owned, err := tx.MedicationOwned(ctx, record.MedicationID, userID)
		if err != nil {
			return err
		}
		if !owned {
			return ErrMedicationNotFound
		}
		if err := tx.Create(ctx, record); err != nil {
			return err
		}
		if record.Status == StatusTaken {
			return tx.DecrementStock(ctx, record.MedicationID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// BulkRecord applies a whole offline-sync batch atomically. The batch is
// validated in full before the first write; on any store failure everything
// rolls back, so stock counts cannot be half-updated by a failed sync.
func (s *Service) BulkRecord(ctx context.Context, userID string, inputs []RecordInput) ([]Record, error) {
	if len(inputs) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"records": "records are required"}}
	}
	if len(inputs) > MaxBulkRecords {
		return nil, &ValidationError{Fields: map[string]string{"records": fmt.Sprintf("batch exceeds %d records", MaxBulkRecords)}}
	}

	type indexedRecord struct {
		idx    int
		record *Record
	}

	fields := map[string]string{}
	records := make([]indexedRecord, 0, len(inputs))
	for i, input := range inputs {
		record, err := s.buildRecord(userID, input)
		if err != nil {
			if verr, ok := err.(*ValidationError); ok {
				for key, message := range verr.Fields {
					fields[fmt.Sprintf("records.%d.%s", i, key)] = message
				}
				continue
			}
			return nil, err
		}
		records = append(records, indexedRecord{idx: i, record: record})
	}

	for _, entry := range records {
		owned, err := s.repo.MedicationOwned(ctx, entry.record.MedicationID, userID)
		if err != nil {
			return nil, err
		}
		if !owned {
			fields[fmt.Sprintf("records.%d.medication_id", entry.idx)] = "medication not found"
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		for _, entry := range records {
			if err := tx.Create(ctx, entry.record); err != nil {
				return err
			}
			if entry.record.Status == StatusTaken {
				if err := tx.DecrementStock(ctx, entry.record.MedicationID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, len(records))
	for _, entry := range records {
		result = append(result, *entry.record)
	}
	return result, nil
}

// UpdateRecord edits a record's status, time or notes. Only the patient who
// owns the record may edit it; a caregiver's read grant never extends to
// rewriting adherence history. Non-owners get the same not-found as an
// absent record.
func (s *Service) UpdateRecord(ctx context.Context, id, requesterID string, input UpdateInput) (*Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != requesterID {
		return nil, ErrRecordNotFound
	}

	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !ValidStatus(status) {
			return nil, &ValidationError{Fields: map[string]string{"status": "status must be taken, missed or skipped"}}
		}
		record.Status = status
	}
	if input.TakenAt != nil {
		record.TakenAt = *input.TakenAt
	}
	if input.Notes != nil {
		record.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) ListRecords(ctx context.Context, userID string, filter ListFilter) ([]Record, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.repo.List(ctx, userID, filter)
}

func (s *Service) buildRecord(userID string, input RecordInput) (*Record, error) {
	fields := map[string]string{}

	if strings.TrimSpace(input.MedicationID) == "" {
		fields["medication_id"] = "medication id is required"
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = StatusTaken
	}
	if !ValidStatus(status) {
		fields["status"] = "status must be taken, missed or skipped"
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.now().UTC()
	scheduled := input.ScheduledTime
	if scheduled.IsZero() {
		scheduled = now
	}
	takenAt := input.TakenAt
	if takenAt.IsZero() {
		takenAt = now
	}

	return &Record{
		ID:            uuid.NewString(),
		UserID:        userID,
		MedicationID:  strings.TrimSpace(input.MedicationID),
		Status:        status,
		ScheduledTime: scheduled,
		TakenAt:       takenAt,
		Notes:         strings.TrimSpace(input.Notes),
	}, nil
}
