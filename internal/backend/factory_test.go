package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"nivasa/internal/config"
	sheetsmem "nivasa/internal/sheets/memory"
	"nivasa/internal/storage"
	"nivasa/internal/store/memory"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		defer res.Cleanup()
		if _, ok := res.Store.(*memory.Store); !ok {
			t.Fatalf("store = %T", res.Store)
		}
		if _, ok := res.Exporter.(*sheetsmem.Sink); !ok {
			t.Fatalf("exporter = %T", res.Exporter)
		}
		if res.Publisher != nil {
			t.Fatal("publisher without AMQP_URL")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "nivasa.db")})
		if err != nil {
			t.Fatalf("CreateBackend: %v", err)
		}
		if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
			t.Fatalf("store = %T", res.Store)
		}
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
	})

	t.Run("sqlite without path", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: "sheets"}); err == nil || !strings.Contains(err.Error(), "invalid backend type") {
			t.Fatalf("expected invalid type, got %v", err)
		}
	})

	t.Run("sheets without credentials", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, GoogleSpreadsheetID: "x"}); err == nil {
			t.Fatal("expected credentials error")
		}
	})
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config accepted")
	}
	cfg := &config.Config{
		DataBackend:               "sqlite",
		SQLiteDBPath:              "/tmp/x.db",
		GoogleSpreadsheetID:       "sheet",
		GoogleExportSheetName:     "Expenses",
		GoogleApplicationCredFile: "/etc/sa.json",
	}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if bc.Type != SQLiteBackend || bc.GoogleServiceAccountFile != "/etc/sa.json" || bc.GoogleSheetName != "Expenses" {
		t.Fatalf("backend config = %+v", bc)
	}
	cfg.DataBackend = "postgres"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("unknown backend accepted")
	}
}
