package cli

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/config"
	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/log"
	"nivasa/internal/services"
)

func TestNewTrackerOverMemoryBackend(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DataBackend: "memory", StatsCacheSize: 4, StatsCacheTTL: time.Minute}

	res := InitBackend(ctx, log.Discard(), cfg)
	t.Cleanup(func() { res.Cleanup() })
	if res.Publisher != nil {
		t.Fatal("publisher configured without AMQP_URL")
	}

	stats := NewStatsCache(cfg)
	svc := NewTracker(res, log.Discard(), services.WithStatsCache(stats))
	user := uuid.New()
	if _, err := svc.CreateNote(ctx, user, core.Note{Title: "call plumber"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	st, err := svc.DashboardStats(ctx, user)
	if err != nil || st.ActiveNotes != 1 {
		t.Fatalf("stats = %+v, %v", st, err)
	}
	if _, ok := stats.Get(user); !ok {
		t.Fatal("stats not cached")
	}
}

func TestNewStatsCacheHonoursSize(t *testing.T) {
	c := NewStatsCache(&config.Config{StatsCacheSize: 2, StatsCacheTTL: time.Minute})
	for i := 0; i < 3; i++ {
		c.Set(uuid.New(), dashboard.Stats{ExpenseCount: i})
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug")
	if !logger.Enabled(context.Background(), -4) {
		t.Fatal("debug level not enabled")
	}
	SetupLogger("info")
}

func TestOpenBackendRejectsUnknownType(t *testing.T) {
	_, err := OpenBackend(context.Background(), log.Discard(), &config.Config{DataBackend: "sheets"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
