package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sigco/internal/infra/persistence"
	"sigco/pkg/domain"
)

func TestReadBeforeWriteReportsNoDocument(t *testing.T) {
	b := NewBackend()
	if _, err := b.Read(context.Background()); !errors.Is(err, persistence.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestLoadInitializesOnce(t *testing.T) {
	b := NewBackend()
	store := persistence.NewDocumentStore(b)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Load(ctx); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()
	if b.Writes() != 1 {
		t.Fatalf("expected a single initialization write, got %d", b.Writes())
	}
}

func TestFailedReplaceKeepsPreviousBytes(t *testing.T) {
	b := NewBackend()
	store := persistence.NewDocumentStore(b)
	ctx := context.Background()
	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b.SetFailReplace(errors.New("disk full"))
	doc.Managers = append(doc.Managers, domain.Manager{ManagerID: 1, Name: "Luis"})
	if err := store.Save(ctx, doc); err == nil {
		t.Fatalf("expected save failure")
	}
	b.SetFailReplace(nil)
	reloaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Managers) != 0 {
		t.Fatalf("failed save must not be visible, got %+v", reloaded.Managers)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()
	if err := b.Replace(ctx, []byte("{}")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	data, _ := b.Read(ctx)
	data[0] = 'x'
	again, _ := b.Read(ctx)
	if string(again) != "{}" {
		t.Fatalf("stored bytes were aliased: %s", again)
	}
}
