package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/LoreWasTaken/caresync/internal/domain/adherence"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Rate is the integer adherence percentage: round(taken/total*100), and 0
// for an empty set.
func Rate(records []RecordRow) int {
	taken := 0
	for _, record := range records {
		if record.Status == adherence.StatusTaken {
			taken++
		}
	}
	return percent(taken, len(records))
}

func (s *Service) Summary(ctx context.Context, userID string, filter RangeFilter) (Summary, error) {
	records, err := s.repo.Records(ctx, userID, filter)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case adherence.StatusTaken:
			summary.Taken++
		case adherence.StatusMissed:
			summary.Missed++
		case adherence.StatusSkipped:
			summary.Skipped++
		}
	}
	summary.Rate = percent(summary.Taken, summary.Total)
	return summary, nil
}

// Trends buckets records by calendar day over the trailing window, ascending
// by date. Days without events are omitted; callers needing a dense series
// fill the gaps themselves.
func (s *Service) Trends(ctx context.Context, userID string, windowDays int) ([]TrendBucket, error) {
	if windowDays < 1 {
		windowDays = 7
	}

	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	from := to.AddDate(0, 0, -(windowDays - 1)).Truncate(24 * time.Hour)

	records, err := s.repo.Records(ctx, userID, RangeFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*TrendBucket)
	for _, record := range records {
		date := bucketDate(record)
		bucket, ok := buckets[date]
		if !ok {
			bucket = &TrendBucket{Date: date}
			buckets[date] = bucket
		}
		bucket.Total++
		switch record.Status {
		case adherence.StatusTaken:
			bucket.Taken++
		case adherence.StatusMissed:
			bucket.Missed++
		}
	}

	result := make([]TrendBucket, 0, len(buckets))
	for _, bucket := range buckets {
		bucket.Rate = percent(bucket.Taken, bucket.Total)
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

func (s *Service) MedicationSummary(ctx context.Context, userID, medicationID string, filter RangeFilter) (MedicationSummary, error) {
	filter.MedicationID = medicationID
	records, err := s.repo.Records(ctx, userID, filter)
	if err != nil {
		return MedicationSummary{}, err
	}

	summary := MedicationSummary{MedicationID: medicationID, Total: len(records)}
	for _, record := range records {
		if record.Status == adherence.StatusTaken {
			summary.Taken++
		}
	}
	summary.Rate = percent(summary.Taken, summary.Total)
	return summary, nil
}

// bucketDate groups by the scheduled date, falling back to the taken time
// for ad hoc records without a schedule slot.
func bucketDate(record RecordRow) string {
	when := record.ScheduledTime
	if when.IsZero() {
		when = record.TakenAt
	}
	return when.UTC().Format("2006-01-02")
}

func percent(taken, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(taken) / float64(total) * 100))
}
