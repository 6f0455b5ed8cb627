package prescription

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/LoreWasTaken/caresync/internal/domain/medication"
)

type fakeParser struct {
	records []ParsedMedication
	err     error
}

func (f *fakeParser) Parse(ctx context.Context, filename string, document io.Reader) ([]ParsedMedication, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeCreator struct {
	created []medication.CreateInput
}

func (f *fakeCreator) Create(ctx context.Context, input medication.CreateInput) (*medication.Medication, error) {
	f.created = append(f.created, input)
	return &medication.Medication{
		ID:          "m-" + input.Name,
		UserID:      input.UserID,
		Name:        input.Name,
		Dosage:      input.Dosage,
		TimesPerDay: input.TimesPerDay,
	}, nil
}

func TestImportCreatesEachParsedRecord(t *testing.T) {
	parser := &fakeParser{records: []ParsedMedication{
		{DrugName: "Metformin", DoseMg: 500, TimesPerDay: 3, IntervalHours: 8, QuantityPrescribed: 90},
		{DrugName: "Lisinopril", DoseMg: 10},
	}}
	creator := &fakeCreator{}
	svc := NewService(parser, creator)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }

	created, err := svc.Import(context.Background(), "u-1", "rx.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 medications, got %d", len(created))
	}
	first := creator.created[0]
	if first.UserID != "u-1" || first.Name != "Metformin" || first.TimesPerDay != 3 {
		t.Fatalf("unexpected first create: %+v", first)
	}
	if first.Frequency != "3x / day (every 8h)" {
		t.Fatalf("unexpected frequency: %q", first.Frequency)
	}
}

func TestImportSkipsNamelessRecords(t *testing.T) {
	parser := &fakeParser{records: []ParsedMedication{
		{DrugName: "", RawTitle: "   "},
		{DrugName: "Aspirin", DoseMg: 100},
	}}
	creator := &fakeCreator{}
	svc := NewService(parser, creator)

	created, err := svc.Import(context.Background(), "u-1", "rx.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(created) != 1 || created[0].Name != "Aspirin" {
		t.Fatalf("expected only the named record, got %+v", created)
	}
}

func TestImportEmptyParse(t *testing.T) {
	svc := NewService(&fakeParser{}, &fakeCreator{})

	created, err := svc.Import(context.Background(), "u-1", "rx.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected empty result, got %d", len(created))
	}
}

func TestImportWithoutParser(t *testing.T) {
	svc := NewService(nil, &fakeCreator{})

	_, err := svc.Import(context.Background(), "u-1", "rx.pdf", strings.NewReader("%PDF"))
	if !errors.Is(err, ErrParserNotConfigured) {
		t.Fatalf("expected ErrParserNotConfigured, got %v", err)
	}
}

func TestImportPropagatesParserFailure(t *testing.T) {
	parser := &fakeParser{err: ErrParserUnavailable}
	creator := &fakeCreator{}
	svc := NewService(parser, creator)

	_, err := svc.Import(context.Background(), "u-1", "rx.pdf", strings.NewReader("%PDF"))
	if !errors.Is(err, ErrParserUnavailable) {
		t.Fatalf("expected ErrParserUnavailable, got %v", err)
	}
	if len(creator.created) != 0 {
		t.Fatalf("a failed parse must create nothing")
	}
}
