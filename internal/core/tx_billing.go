package core

import "sigco/pkg/domain"

// InvoiceRequest names the resident to bill and the invoice date.
type InvoiceRequest struct {
	ResidentDNI  string `json:"residentDni"`
	CreationDate string `json:"creationDate"`
}

// createInvoiceAndSettleVisits bills every unpaid visit of the resident in one
// invoice. The unpaid set is read from the document loaded for this
// transaction, so two concurrent requests cannot bill the same visit twice.
func createInvoiceAndSettleVisits(doc *domain.Document, in InvoiceRequest) (domain.Invoice, error) {
	if _, ok := doc.Resident(in.ResidentDNI); !ok {
		return domain.Invoice{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", in.ResidentDNI)
	}
	unpaid := domain.UnpaidVisits(doc, in.ResidentDNI)
	if len(unpaid) == 0 {
		return domain.Invoice{}, domain.Conflictf(domain.EntityInvoice, "no unpaid visits for resident %s", in.ResidentDNI)
	}
	for _, v := range unpaid {
		if v.InvoiceID != nil {
			return domain.Invoice{}, domain.Conflictf(domain.EntityVisit, "visit %d was already invoiced", v.VisitID)
		}
	}

	visitIDs := make([]int, 0, len(unpaid))
	for _, v := range unpaid {
		visitIDs = append(visitIDs, v.VisitID)
	}
	invoice := domain.Invoice{
		InvoiceID:    domain.NextID(doc, domain.CounterInvoice),
		ResidentDNI:  in.ResidentDNI,
		CreationDate: in.CreationDate,
		VisitIDs:     visitIDs,
		TotalAmount:  domain.TotalAmount(unpaid),
	}
	doc.Invoices = append(doc.Invoices, invoice)

	for _, id := range visitIDs {
		v, ok := doc.Visit(id)
		if !ok {
			continue
		}
		invoiceID := invoice.InvoiceID
		v.InvoiceID = &invoiceID
		v.Status = domain.StatusOf(*v)
	}

	for _, id := range visitIDs {
		v, ok := doc.Visit(id)
		if !ok || v.InvoiceID == nil || *v.InvoiceID != invoice.InvoiceID {
			return domain.Invoice{}, domain.Internalf(domain.EntityInvoice, "visit %d was not settled by invoice %d", id, invoice.InvoiceID)
		}
	}
	return cloneInvoice(invoice), nil
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	inv.VisitIDs = append([]int(nil), inv.VisitIDs...)
	return inv
}
