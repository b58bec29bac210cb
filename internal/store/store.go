package store

import (
	"context"
	"errors"
	"time"

	"github.com/forgelabs/scanforge/internal/model"
)

// ErrNotFound is returned when a scan record is not found.
var ErrNotFound = errors.New("scan not found")

// ScanStats holds aggregate execution statistics.
type ScanStats struct {
	Total         int            `json:"total"`
	CountByStatus map[string]int `json:"count_by_status"`
	CountByMode   map[string]int `json:"count_by_mode"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
}

// Store defines the persistence operations for scan records. The coordinator
// itself is stateless; records exist only for retrieval and history.
type Store interface {
	CreateScan(ctx context.Context, s *model.Scan) error
	GetScan(ctx context.Context, id string) (*model.Scan, error)
	ListScans(ctx context.Context, limit, offset int) ([]*model.Scan, int, error)
	FinishScan(ctx context.Context, out model.Outcome, finishedAt time.Time) error
	GetScanStats(ctx context.Context) (*ScanStats, error)
	Close() error
}
