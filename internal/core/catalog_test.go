package core

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"sigco/pkg/domain"
)

func TestTransactionNamesCoverCatalog(t *testing.T) {
	names := TransactionNames()
	if len(names) != len(catalog) {
		t.Fatalf("expected %d names, got %d", len(catalog), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
	for _, want := range []string{TxCreateInvoiceAndSettleVisits, TxEnrollResidentInCourse, TxAssignVisitsToAudit, TxAssignMaterialsToAudit, TxFinalizeAudit} {
		if _, ok := catalog[want]; !ok {
			t.Fatalf("catalog misses %s", want)
		}
	}
}

func TestSubmitRejectsUnknownAndMalformed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Submit(ctx, "DropDatabase", nil)
	requireKind(t, err, domain.KindInvalidInput)
	_, err = h.svc.Submit(ctx, TxCreateResident, json.RawMessage(`{"dni":`))
	requireKind(t, err, domain.KindInvalidInput)
	_, err = h.svc.Submit(ctx, TxUpdateVisit, json.RawMessage(`{"description":"hello there"}`))
	requireKind(t, err, domain.KindInvalidInput)
	_, err = h.svc.Submit(ctx, TxDeleteVisit, json.RawMessage(`{"visitId":"x"}`))
	requireKind(t, err, domain.KindInvalidInput)
	if h.backend.Writes() != 0 {
		t.Fatalf("rejected submissions must not commit")
	}
}

func TestSubmitDispatchesByName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	submit := func(name, args string) any {
		t.Helper()
		out, err := h.svc.Submit(ctx, name, json.RawMessage(args))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		return out
	}

	submit(TxCreateResident, `{"dni":"12345678A","firstName":"Ana","lastName":"Garcia","address":"Calle Mayor 1","postalCode":"28001","city":"Madrid","phone":"600111222"}`)
	m := submit(TxCreateManager, `{"name":"Marta"}`).(domain.Manager)
	v := submit(TxCreateVisit, `{"residentDni":"12345678A","managerId":1,"visitDate":"2024-01-05","description":"Routine check","amount":"45.5"}`).(domain.Visit)
	if m.ManagerID != 1 || !v.Amount.Equal(domain.MustMoney("45.50")) {
		t.Fatalf("unexpected results %+v %+v", m, v)
	}
	updated := submit(TxUpdateVisit, `{"visitId":1001,"description":"Evening check"}`).(domain.Visit)
	if updated.Description != "Evening check" {
		t.Fatalf("update not applied: %+v", updated)
	}
	inv := submit(TxCreateInvoiceAndSettleVisits, `{"residentDni":"12345678A","creationDate":"2024-02-01"}`).(domain.Invoice)
	if inv.InvoiceID != 5001 {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	_, err := h.svc.Submit(ctx, TxDeleteManager, json.RawMessage(`{"managerId":1}`))
	requireKind(t, err, domain.KindConflict)

	submit(TxCreateManager, `{"name":"Luis"}`)
	del, err := json.Marshal(submit(TxDeleteManager, `{"managerId":2}`))
	if err != nil {
		t.Fatalf("marshal delete result: %v", err)
	}
	if string(del) != `{"ok":true}` {
		t.Fatalf("unexpected delete result %s", del)
	}
}
