package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/forgelabs/scanforge/internal/model"
	"github.com/forgelabs/scanforge/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func pendingScan(mode string) *model.Scan {
	return &model.Scan{
		ID:        model.NewID(),
		Mode:      mode,
		Status:    model.StatusPending,
		TimeoutMS: 30000,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateAndGetScan(t *testing.T) {
	s := newTestStore(t)

	sc := pendingScan(model.ModeInline)
	if err := s.CreateScan(context.Background(), sc); err != nil {
		t.Fatalf("CreateScan: %v", err)
	}

	got, err := s.GetScan(context.Background(), sc.ID)
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if got.ID != sc.ID {
		t.Errorf("ID = %q, want %q", got.ID, sc.ID)
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.TimeoutMS != 30000 {
		t.Errorf("TimeoutMS = %d, want 30000", got.TimeoutMS)
	}
}

func TestGetScanNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetScan(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFinishScanCompleted(t *testing.T) {
	s := newTestStore(t)

	sc := pendingScan(model.ModeIsolated)
	if err := s.CreateScan(context.Background(), sc); err != nil {
		t.Fatalf("CreateScan: %v", err)
	}

	out := model.Completed(sc.ID, json.RawMessage(`{"findings":[]}`))
	out.DurationMS = 42
	if err := s.FinishScan(context.Background(), out, time.Now().UTC()); err != nil {
		t.Fatalf("FinishScan: %v", err)
	}

	got, err := s.GetScan(context.Background(), sc.ID)
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if string(got.Result) != `{"findings":[]}` {
		t.Errorf("Result = %s", got.Result)
	}
	if got.DurationMS == nil || *got.DurationMS != 42 {
		t.Errorf("DurationMS = %v, want 42", got.DurationMS)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt is nil")
	}
}

func TestFinishScanTimedOut(t *testing.T) {
	s := newTestStore(t)

	sc := pendingScan(model.ModeIsolated)
	if err := s.CreateScan(context.Background(), sc); err != nil {
		t.Fatalf("CreateScan: %v", err)
	}

	if err := s.FinishScan(context.Background(), model.TimedOut(sc.ID, 500*time.Millisecond), time.Now().UTC()); err != nil {
		t.Fatalf("FinishScan: %v", err)
	}

	got, err := s.GetScan(context.Background(), sc.ID)
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if got.Status != model.StatusTimedOut {
		t.Errorf("Status = %q, want timed_out", got.Status)
	}
	if got.Code != model.CodeTimeout {
		t.Errorf("Code = %q, want %q", got.Code, model.CodeTimeout)
	}
}

func TestFinishScanNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.FinishScan(context.Background(), model.Faulted("missing", "boom"), time.Now().UTC())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListScansPagination(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.CreateScan(context.Background(), pendingScan(model.ModeInline)); err != nil {
			t.Fatalf("CreateScan: %v", err)
		}
	}

	scans, total, err := s.ListScans(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(scans) != 3 {
		t.Errorf("len(scans) = %d, want 3", len(scans))
	}

	rest, _, err := s.ListScans(context.Background(), 3, 3)
	if err != nil {
		t.Fatalf("ListScans offset: %v", err)
	}
	if len(rest) != 2 {
		t.Errorf("len(rest) = %d, want 2", len(rest))
	}
}

func TestGetScanStats(t *testing.T) {
	s := newTestStore(t)

	inline := pendingScan(model.ModeInline)
	isolated := pendingScan(model.ModeIsolated)
	for _, sc := range []*model.Scan{inline, isolated} {
		if err := s.CreateScan(context.Background(), sc); err != nil {
			t.Fatalf("CreateScan: %v", err)
		}
	}

	out := model.Completed(inline.ID, json.RawMessage(`{}`))
	out.DurationMS = 100
	if err := s.FinishScan(context.Background(), out, time.Now().UTC()); err != nil {
		t.Fatalf("FinishScan: %v", err)
	}

	stats, err := s.GetScanStats(context.Background())
	if err != nil {
		t.Fatalf("GetScanStats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.CountByStatus[model.StatusCompleted] != 1 {
		t.Errorf("completed count = %d, want 1", stats.CountByStatus[model.StatusCompleted])
	}
	if stats.CountByMode[model.ModeIsolated] != 1 {
		t.Errorf("isolated count = %d, want 1", stats.CountByMode[model.ModeIsolated])
	}
	if stats.AvgDurationMS != 100 {
		t.Errorf("AvgDurationMS = %v, want 100", stats.AvgDurationMS)
	}
}
