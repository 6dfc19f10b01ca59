package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"sigco/pkg/domain"
)

func TestRunCommitsBodyResult(t *testing.T) {
	h := newHarness(t)
	id, err := Run(context.Background(), h.engine, "alloc", func(doc *domain.Document) (int, error) {
		return domain.NextID(doc, domain.CounterManager), nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if got := h.doc(t).Counters.ManagerID; got != 1 {
		t.Fatalf("expected committed counter 1, got %d", got)
	}
}

func TestFailedBodyDiscardsMutations(t *testing.T) {
	h := newHarness(t)
	h.mustResident(t, testDNI)
	writes := h.backend.Writes()
	_, err := Run(context.Background(), h.engine, "fail", func(doc *domain.Document) (int, error) {
		domain.NextID(doc, domain.CounterVisit)
		doc.Residents = nil
		return 0, domain.Conflictf(domain.EntityVisit, "nope")
	})
	requireKind(t, err, domain.KindConflict)
	if h.backend.Writes() != writes {
		t.Fatalf("failed body must not write")
	}
	doc := h.doc(t)
	if doc.Counters.VisitID != domain.VisitIDFloor || len(doc.Residents) != 1 {
		t.Fatalf("mutations leaked: %+v", doc.Counters)
	}
	// The queue keeps serving after a failure.
	if _, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "Marta"}); err != nil {
		t.Fatalf("engine poisoned after failure: %v", err)
	}
}

func TestPanickingBodyIsInternal(t *testing.T) {
	h := newHarness(t)
	_, err := Run(context.Background(), h.engine, "boom", func(doc *domain.Document) (int, error) {
		panic("kaboom")
	})
	requireKind(t, err, domain.KindInternal)
	if _, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "Marta"}); err != nil {
		t.Fatalf("engine stopped after panic: %v", err)
	}
}

func TestRunAfterCloseFails(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.engine.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	_, err := Run(context.Background(), h.engine, "late", func(*domain.Document) (int, error) { return 1, nil })
	if !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("expected ErrEngineClosed, got %v", err)
	}
}

func TestConcurrentSubmissionsAreSerialized(t *testing.T) {
	h := newHarness(t)
	const n = 40
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := Run(context.Background(), h.engine, "alloc", func(doc *domain.Document) (int, error) {
				return domain.NextID(doc, domain.CounterVisit), nil
			})
			if err != nil {
				t.Errorf("run: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)
	seen := map[int]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("id %d issued twice", id)
		}
		seen[id] = true
	}
	if got := h.doc(t).Counters.VisitID; got != domain.VisitIDFloor+n {
		t.Fatalf("expected counter %d, got %d", domain.VisitIDFloor+n, got)
	}
}

func TestCanceledContextStillCommits(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.svc.CreateManager(ctx, domain.Manager{Name: "Marta"}); err != nil {
		t.Fatalf("create with canceled context: %v", err)
	}
	if len(h.doc(t).Managers) != 1 {
		t.Fatalf("expected manager committed")
	}
}

func TestSaveFailureIsInternalAndKeepsDocument(t *testing.T) {
	h := newHarness(t)
	h.mustResident(t, testDNI)
	h.backend.SetFailReplace(errors.New("disk full"))
	_, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "Marta"})
	requireKind(t, err, domain.KindInternal)
	h.backend.SetFailReplace(nil)
	if doc := h.doc(t); len(doc.Managers) != 0 || len(doc.Residents) != 1 {
		t.Fatalf("failed save changed the document")
	}
}

func TestBlockingRuleRejectsCommit(t *testing.T) {
	h := newHarness(t)
	h.mustResident(t, testDNI)
	m := h.mustManager(t, "Marta")
	v := h.mustVisit(t, testDNI, m.ManagerID, "2024-01-05", "10")
	_, err := Run(context.Background(), h.engine, "corrupt", func(doc *domain.Document) (int, error) {
		visit, _ := doc.Visit(v.VisitID)
		ghost := 9999
		visit.InvoiceID = &ghost
		visit.Status = domain.VisitPaid
		return 0, nil
	})
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	requireKind(t, err, domain.KindInternal)
	after := h.doc(t)
	if got, _ := after.Visit(v.VisitID); got.InvoiceID != nil {
		t.Fatalf("violating commit persisted")
	}
}

func TestPreexistingViolationDoesNotBlockUnrelatedWrites(t *testing.T) {
	h := newHarness(t)
	doc := domain.NewDocument()
	doc.Enrollments = append(doc.Enrollments, domain.Enrollment{EnrollmentID: 1, ResidentDNI: "ghost", CourseID: 77})
	h.seedDocument(t, doc)
	if _, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "Marta"}); err != nil {
		t.Fatalf("unrelated write blocked by stored inconsistency: %v", err)
	}
}

func TestEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newHarness(t, WithRegisterer(reg))
	if _, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "Marta"}); err != nil {
		t.Fatalf("create manager: %v", err)
	}
	_, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "marta"})
	requireKind(t, err, domain.KindConflict)

	m := h.engine.metrics
	if got := testutil.ToFloat64(m.transactions.WithLabelValues(TxCreateManager, outcomeCommitted)); got != 1 {
		t.Fatalf("expected 1 committed, got %v", got)
	}
	if got := testutil.ToFloat64(m.transactions.WithLabelValues(TxCreateManager, string(domain.KindConflict))); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.queued); got != 0 {
		t.Fatalf("expected empty queue, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}

	// A second engine on the same registry reuses the collectors.
	other := NewEngine(h.store, WithRegisterer(reg))
	defer other.Close()
	if other.metrics.transactions != m.transactions {
		t.Fatalf("expected shared counter vec")
	}
}

func TestEngineLogsRejections(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := newHarness(t, WithLogger(zap.New(core)))
	if _, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: "Marta"}); err != nil {
		t.Fatalf("create manager: %v", err)
	}
	_, _ = h.svc.DeleteManager(context.Background(), 42)

	if logs.FilterMessage("transaction committed").Len() != 1 {
		t.Fatalf("expected one committed entry, got %v", logs.All())
	}
	rejected := logs.FilterMessage("transaction rejected").All()
	if len(rejected) != 1 {
		t.Fatalf("expected one rejected entry, got %v", logs.All())
	}
	fields := rejected[0].ContextMap()
	if fields["tx"] != TxDeleteManager || fields["kind"] != string(domain.KindNotFound) {
		t.Fatalf("unexpected fields %v", fields)
	}
	if id, _ := fields["tx_id"].(string); len(id) != 36 {
		t.Fatalf("expected uuid tx_id, got %v", fields["tx_id"])
	}
}
