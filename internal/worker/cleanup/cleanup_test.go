package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/kakeibo/internal/metrics"
)

type mockSessionExpirer struct {
	mu      sync.Mutex
	calls   int
	deleted int64
	err     error
}

func (m *mockSessionExpirer) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.deleted, m.err
}

func (m *mockSessionExpirer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recordingCollector struct {
	metrics.Nop
	mu      sync.Mutex
	cleaned []int64
}

func (r *recordingCollector) RecordSessionsCleaned(count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleaned = append(r.cleaned, count)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestCleanupJob_Run_DeletesAndRecords(t *testing.T) {
	var buf bytes.Buffer
	sessions := &mockSessionExpirer{deleted: 7}
	collector := &recordingCollector{}
	job := NewCleanupJob(sessions, collector, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sessions.callCount() != 1 {
		t.Errorf("DeleteExpired calls = %d, want 1", sessions.callCount())
	}
	if len(collector.cleaned) != 1 || collector.cleaned[0] != 7 {
		t.Errorf("RecordSessionsCleaned = %v, want [7]", collector.cleaned)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["deleted_count"] != float64(7) {
		t.Errorf("deleted_count = %v, want 7", entry["deleted_count"])
	}
}

func TestCleanupJob_Run_NothingToDelete(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionExpirer{}, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestCleanupJob_Run_Error(t *testing.T) {
	var buf bytes.Buffer
	collector := &recordingCollector{}
	job := NewCleanupJob(&mockSessionExpirer{err: errors.New("connection refused")}, collector, newTestLogger(&buf))

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error = %v, should wrap cause", err)
	}
	if len(collector.cleaned) != 0 {
		t.Error("metrics must not be recorded on failure")
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("expected error log, got %s", buf.String())
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	sessions := &mockSessionExpirer{}
	job := NewCleanupJob(sessions, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sessions.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("DeleteExpired calls = %d, want >= 2", sessions.callCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
