package core

import (
	"context"
	"testing"

	"sigco/internal/infra/persistence"
	"sigco/internal/infra/persistence/memory"
	"sigco/pkg/domain"
)

const (
	testDNI      = "12345678A"
	otherDNI     = "87654321B"
	testCourseID = 1
)

type harness struct {
	svc     *Service
	engine  *Engine
	backend *memory.Backend
	store   *persistence.DocumentStore
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	backend := memory.NewBackend()
	store := persistence.NewDocumentStore(backend)
	engine := NewEngine(store, opts...)
	t.Cleanup(func() { _ = engine.Close() })
	return &harness{svc: NewService(engine), engine: engine, backend: backend, store: store}
}

func (h *harness) doc(t *testing.T) domain.Document {
	t.Helper()
	doc, err := h.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// seedDocument writes doc directly to the backend, bypassing the engine.
func (h *harness) seedDocument(t *testing.T, doc domain.Document) {
	t.Helper()
	if err := h.store.Save(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func resident(dni, first string) domain.Resident {
	return domain.Resident{
		DNI:        dni,
		FirstName:  first,
		LastName:   "Garcia",
		Address:    "Calle Mayor 1",
		PostalCode: "28001",
		City:       "Madrid",
		Phone:      "+34 600111222",
	}
}

func (h *harness) mustResident(t *testing.T, dni string) {
	t.Helper()
	if _, err := h.svc.CreateResident(context.Background(), resident(dni, "Ana")); err != nil {
		t.Fatalf("create resident %s: %v", dni, err)
	}
}

func (h *harness) mustManager(t *testing.T, name string) domain.Manager {
	t.Helper()
	m, err := h.svc.CreateManager(context.Background(), domain.Manager{Name: name})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	return m
}

func (h *harness) mustVisit(t *testing.T, dni string, managerID int, date, amount string) domain.Visit {
	t.Helper()
	v, err := h.svc.CreateVisit(context.Background(), VisitRequest{
		ResidentDNI: dni,
		ManagerID:   managerID,
		VisitDate:   date,
		Description: "Routine check",
		Amount:      domain.MustMoney(amount),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	return v
}

func (h *harness) mustCourse(t *testing.T, max int) domain.Course {
	t.Helper()
	c, err := h.svc.CreateCourse(context.Background(), domain.Course{
		Name:         "Pottery",
		Price:        domain.MustMoney("40"),
		MaxResidents: max,
		StartDate:    "2024-01-10",
		EndDate:      "2024-03-10",
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func (h *harness) mustAuditor(t *testing.T) domain.Auditor {
	t.Helper()
	a, err := h.svc.CreateAuditor(context.Background(), domain.Auditor{
		FirstName:   "Luis",
		LastName:    "Perez",
		CompanyCIF:  "B12345678",
		CompanyName: "Audit SL",
	})
	if err != nil {
		t.Fatalf("create auditor: %v", err)
	}
	return a
}

func requireKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := domain.KindOf(err); got != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, got, err)
	}
}
