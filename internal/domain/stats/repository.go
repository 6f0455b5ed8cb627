package stats

import "context"

// Repository is a read-only projection over adherence records.
type Repository interface {
	Records(ctx context.Context, userID string, filter RangeFilter) ([]RecordRow, error)
}
