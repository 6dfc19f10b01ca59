package core

import (
	"context"
	"fmt"
	"strconv"

	"sigco/pkg/domain"
)

// NewInvoiceTotalsRule returns the rule checking that each invoice total is the
// rounded sum of its visits and that those visits belong to the invoiced
// resident and point back at the invoice.
func NewInvoiceTotalsRule() domain.Rule {
	return invoiceTotalsRule{}
}

type invoiceTotalsRule struct{}

func (invoiceTotalsRule) Name() string { return "invoice_totals" }

func (r invoiceTotalsRule) Evaluate(_ context.Context, doc *domain.Document) (domain.Result, error) {
	res := domain.Result{}
	for _, inv := range doc.Invoices {
		id := strconv.Itoa(inv.InvoiceID)
		add := func(msg string) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  msg,
				Entity:   domain.EntityInvoice,
				EntityID: id,
			})
		}
		visits := make([]domain.Visit, 0, len(inv.VisitIDs))
		for _, vid := range inv.VisitIDs {
			v, ok := doc.Visit(vid)
			if !ok {
				add(fmt.Sprintf("invoice %d lists missing visit %d", inv.InvoiceID, vid))
				continue
			}
			if v.InvoiceID == nil || *v.InvoiceID != inv.InvoiceID {
				add(fmt.Sprintf("visit %d is listed by invoice %d but not settled by it", vid, inv.InvoiceID))
			}
			if v.ResidentDNI != inv.ResidentDNI {
				add(fmt.Sprintf("visit %d belongs to resident %s, not %s", vid, v.ResidentDNI, inv.ResidentDNI))
			}
			visits = append(visits, *v)
		}
		if total := domain.TotalAmount(visits); !total.Equal(inv.TotalAmount) {
			add(fmt.Sprintf("invoice %d total %s differs from visit sum %s", inv.InvoiceID, inv.TotalAmount, total))
		}
	}
	return res, nil
}
