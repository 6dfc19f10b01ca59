package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sigco/internal/infra/persistence"
	"sigco/pkg/domain"
)

func TestLoadInitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Counters.VisitID != domain.VisitIDFloor {
		t.Fatalf("expected floor counters, got %+v", doc.Counters)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected document persisted on first access: %v", err)
	}
	if !strings.Contains(string(data), `"invoiceId": 5000`) {
		t.Fatalf("unexpected initial document: %s", data)
	}
}

func TestSaveReplacesAndCleansTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc.Residents = append(doc.Residents, domain.Resident{DNI: "1A", FirstName: "Ana"})
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Residents) != 1 || reloaded.Residents[0].FirstName != "Ana" {
		t.Fatalf("unexpected residents %+v", reloaded.Residents)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the primary file, got %d entries", len(entries))
	}
}

func TestCrashBeforeRenameKeepsPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	backend, err := NewBackend(path)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	store := persistence.NewDocumentStore(backend)
	ctx := context.Background()
	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc.Residents = append(doc.Residents, domain.Resident{DNI: "old"})
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	crash := errors.New("simulated crash")
	var stale string
	backend.beforeRename = func(tmpPath string) error {
		data, err := os.ReadFile(tmpPath)
		if err != nil {
			t.Fatalf("read temp: %v", err)
		}
		// leave a copy behind as a crashed process would
		stale = filepath.Join(dir, ".db.json.tmp-crashed")
		if err := os.WriteFile(stale, data, 0o600); err != nil {
			t.Fatalf("write stale temp: %v", err)
		}
		return crash
	}
	doc.Residents = append(doc.Residents, domain.Resident{DNI: "new"})
	if err := store.Save(ctx, doc); !errors.Is(err, crash) {
		t.Fatalf("expected simulated crash, got %v", err)
	}

	restarted, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reloaded, err := restarted.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Residents) != 1 || reloaded.Residents[0].DNI != "old" {
		t.Fatalf("expected previous document intact, got %+v", reloaded.Residents)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("expected stale temp to remain for inspection: %v", err)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"residents":[{"dni":"1A"}]}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Visits == nil || doc.Counters.InvoiceID != domain.InvoiceIDFloor {
		t.Fatalf("expected normalized document, got %+v", doc.Counters)
	}
}

func TestLoadSurfacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"residents":`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
