package adherence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeAdherenceRepo struct {
	mu      sync.Mutex
	records map[string]*Record
	stock   map[string]int
	owned   map[string]string

	failCreateAfter int
	creates         int
}

func newFakeAdherenceRepo() *fakeAdherenceRepo {
	return &fakeAdherenceRepo{
		records:         make(map[string]*Record),
		stock:           make(map[string]int),
		owned:           make(map[string]string),
		failCreateAfter: -1,
	}
}

func (f *fakeAdherenceRepo) addMedication(id, userID string, stock int) {
	f.owned[id] = userID
	f.stock[id] = stock
}

func (f *fakeAdherenceRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapRecords := make(map[string]*Record, len(f.records))
	for k, v := range f.records {
		copied := *v
		snapRecords[k] = &copied
	}
	snapStock := make(map[string]int, len(f.stock))
	for k, v := range f.stock {
		snapStock[k] = v
	}

	if err := fn((*txRepo)(f)); err != nil {
		f.records = snapRecords
		f.stock = snapStock
		return err
	}
	return nil
}

// txRepo is the in-transaction view; the outer mutex is already held.
type txRepo fakeAdherenceRepo

func (t *txRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(t)
}

func (t *txRepo) Create(ctx context.Context, record *Record) error {
	t.creates++
	if t.failCreateAfter >= 0 && t.creates > t.failCreateAfter {
		return fmt.Errorf("store failure")
	}
	copied := *record
	t.records[record.ID] = &copied
	return nil
}

func (t *txRepo) GetByID(ctx context.Context, id string) (*Record, error) {
	r, ok := t.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (t *txRepo) Update(ctx context.Context, record *Record) error {
	copied := *record
	t.records[record.ID] = &copied
	return nil
}

func (t *txRepo) List(ctx context.Context, userID string, filter ListFilter) ([]Record, int64, error) {
	result := make([]Record, 0)
	for _, r := range t.records {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

func (t *txRepo) MedicationOwned(ctx context.Context, medicationID, userID string) (bool, error) {
	return t.owned[medicationID] == userID, nil
}

func (t *txRepo) DecrementStock(ctx context.Context, medicationID string) error {
	if t.stock[medicationID] > 0 {
		t.stock[medicationID]--
	}
	return nil
}

func (f *fakeAdherenceRepo) Create(ctx context.Context, record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*txRepo)(f).Create(ctx, record)
}

func (f *fakeAdherenceRepo) GetByID(ctx context.Context, id string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*txRepo)(f).GetByID(ctx, id)
}

func (f *fakeAdherenceRepo) Update(ctx context.Context, record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*txRepo)(f).Update(ctx, record)
}

func (f *fakeAdherenceRepo) List(ctx context.Context, userID string, filter ListFilter) ([]Record, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*txRepo)(f).List(ctx, userID, filter)
}

func (f *fakeAdherenceRepo) MedicationOwned(ctx context.Context, medicationID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*txRepo)(f).MedicationOwned(ctx, medicationID, userID)
}

func (f *fakeAdherenceRepo) DecrementStock(ctx context.Context, medicationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*txRepo)(f).DecrementStock(ctx, medicationID)
}

func TestRecordIntakeDefaults(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	svc := NewService(repo)
	fixed := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	record, err := svc.RecordIntake(context.Background(), "u-1", RecordInput{MedicationID: "m-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record.Status != StatusTaken {
		t.Fatalf("expected default status taken, got %s", record.Status)
	}
	if !record.TakenAt.Equal(fixed) || !record.ScheduledTime.Equal(fixed) {
		t.Fatalf("expected times defaulted to now, got %+v", record)
	}
	if repo.stock["m-1"] != 9 {
		t.Fatalf("expected stock decremented to 9, got %d", repo.stock["m-1"])
	}
}

func TestRecordIntakeMissedKeepsStock(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	svc := NewService(repo)

	_, err := svc.RecordIntake(context.Background(), "u-1", RecordInput{MedicationID: "m-1", Status: StatusMissed})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.stock["m-1"] != 10 {
		t.Fatalf("missed dose must not burn stock, got %d", repo.stock["m-1"])
	}
}

func TestRecordIntakeForeignMedication(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-2", 10)
	svc := NewService(repo)

	_, err := svc.RecordIntake(context.Background(), "u-1", RecordInput{MedicationID: "m-1"})
	if !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("expected ErrMedicationNotFound, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("rejected intake must not persist")
	}
}

func TestRecordIntakeInvalidStatus(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	svc := NewService(repo)

	_, err := svc.RecordIntake(context.Background(), "u-1", RecordInput{MedicationID: "m-1", Status: "swallowed"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["status"]; !ok {
		t.Fatalf("expected status field error, got %v", vErr.Fields)
	}
}

func TestConcurrentIntakesClampStockAtZero(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 3)
	svc := NewService(repo)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.RecordIntake(context.Background(), "u-1", RecordInput{MedicationID: "m-1"})
		}()
	}
	wg.Wait()

	if got := repo.stock["m-1"]; got != 0 {
		t.Fatalf("expected stock clamped at 0, got %d", got)
	}
	if len(repo.records) != workers {
		t.Fatalf("expected all %d records written, got %d", workers, len(repo.records))
	}
}

func TestBulkRecordAtomic(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	svc := NewService(repo)

	records, err := svc.BulkRecord(context.Background(), "u-1", []RecordInput{
		{MedicationID: "m-1", Status: StatusTaken},
		{MedicationID: "m-1", Status: StatusMissed},
		{MedicationID: "m-1", Status: StatusTaken},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if repo.stock["m-1"] != 8 {
		t.Fatalf("expected two decrements, got stock %d", repo.stock["m-1"])
	}
}

func TestBulkRecordRollsBackOnFailure(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	repo.failCreateAfter = 2
	svc := NewService(repo)

	_, err := svc.BulkRecord(context.Background(), "u-1", []RecordInput{
		{MedicationID: "m-1"},
		{MedicationID: "m-1"},
		{MedicationID: "m-1"},
	})
	if err == nil {
		t.Fatalf("expected store failure to surface")
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected rollback, got %d records", len(repo.records))
	}
	if repo.stock["m-1"] != 10 {
		t.Fatalf("expected stock restored, got %d", repo.stock["m-1"])
	}
}

func TestBulkRecordValidatesWholeBatch(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	repo.addMedication("m-other", "u-2", 10)
	svc := NewService(repo)

	_, err := svc.BulkRecord(context.Background(), "u-1", []RecordInput{
		{MedicationID: "m-1"},
		{MedicationID: "", Status: "bogus"},
		{MedicationID: "m-other"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["records.1.medication_id"]; !ok {
		t.Fatalf("expected records.1.medication_id error, got %v", vErr.Fields)
	}
	if _, ok := vErr.Fields["records.1.status"]; !ok {
		t.Fatalf("expected records.1.status error, got %v", vErr.Fields)
	}
	if len(repo.records) != 0 {
		t.Fatalf("a bad batch must write nothing")
	}
}

func TestBulkRecordReportsOriginalIndexes(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.addMedication("m-1", "u-1", 10)
	repo.addMedication("m-other", "u-2", 10)
	svc := NewService(repo)

	_, err := svc.BulkRecord(context.Background(), "u-1", []RecordInput{
		{MedicationID: ""},
		{MedicationID: "m-1"},
		{MedicationID: "m-other"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["records.0.medication_id"]; !ok {
		t.Fatalf("expected records.0.medication_id error, got %v", vErr.Fields)
	}
	if _, ok := vErr.Fields["records.2.medication_id"]; !ok {
		t.Fatalf("unowned medication must be blamed at its own index, got %v", vErr.Fields)
	}
	for key := range vErr.Fields {
		if strings.HasPrefix(key, "records.1.") {
			t.Fatalf("valid record must carry no error, got %v", vErr.Fields)
		}
	}
	if len(repo.records) != 0 {
		t.Fatalf("a bad batch must write nothing")
	}
}

func TestBulkRecordLimits(t *testing.T) {
	svc := NewService(newFakeAdherenceRepo())

	_, err := svc.BulkRecord(context.Background(), "u-1", nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for empty batch, got %v", err)
	}

	oversized := make([]RecordInput, MaxBulkRecords+1)
	for i := range oversized {
		oversized[i] = RecordInput{MedicationID: "m-1"}
	}
	_, err = svc.BulkRecord(context.Background(), "u-1", oversized)
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for oversized batch, got %v", err)
	}
}

func TestUpdateRecordOwnerOnly(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.records["r-1"] = &Record{ID: "r-1", UserID: "u-1", MedicationID: "m-1", Status: StatusMissed}
	svc := NewService(repo)

	status := StatusTaken
	record, err := svc.UpdateRecord(context.Background(), "r-1", "u-1", UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record.Status != StatusTaken {
		t.Fatalf("expected status updated, got %s", record.Status)
	}

	_, err = svc.UpdateRecord(context.Background(), "r-1", "u-2", UpdateInput{Status: &status})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("non-owner must get not found, got %v", err)
	}
}

func TestUpdateRecordInvalidStatus(t *testing.T) {
	repo := newFakeAdherenceRepo()
	repo.records["r-1"] = &Record{ID: "r-1", UserID: "u-1", Status: StatusTaken}
	svc := NewService(repo)

	status := "unknown"
	_, err := svc.UpdateRecord(context.Background(), "r-1", "u-1", UpdateInput{Status: &status})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
