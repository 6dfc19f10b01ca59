package core

import (
	"strings"

	"sigco/pkg/domain"
)

// VisitRequest registers a new unpaid visit.
type VisitRequest struct {
	ResidentDNI string       `json:"residentDni"`
	ManagerID   int          `json:"managerId"`
	VisitDate   string       `json:"visitDate"`
	Description string       `json:"description"`
	Amount      domain.Money `json:"amount"`
}

// VisitPatch lists the visit fields an update may change. A paid visit only
// accepts Description.
type VisitPatch struct {
	ResidentDNI *string       `json:"residentDni"`
	ManagerID   *int          `json:"managerId"`
	VisitDate   *string       `json:"visitDate"`
	Description *string       `json:"description"`
	Amount      *domain.Money `json:"amount"`
}

// changesBilling reports whether p would alter a billing field of v. Fields
// resent with their stored value do not count.
func (p VisitPatch) changesBilling(v domain.Visit) bool {
	switch {
	case p.ResidentDNI != nil && strings.TrimSpace(*p.ResidentDNI) != v.ResidentDNI:
		return true
	case p.ManagerID != nil && *p.ManagerID != v.ManagerID:
		return true
	case p.VisitDate != nil && *p.VisitDate != v.VisitDate:
		return true
	case p.Amount != nil && !p.Amount.Rounded().Equal(v.Amount):
		return true
	}
	return false
}

func createVisit(doc *domain.Document, in VisitRequest) (domain.Visit, error) {
	if _, ok := doc.Resident(in.ResidentDNI); !ok {
		return domain.Visit{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", in.ResidentDNI)
	}
	if _, ok := doc.Manager(in.ManagerID); !ok {
		return domain.Visit{}, domain.NotFoundf(domain.EntityManager, "manager %d not found", in.ManagerID)
	}
	visit := domain.Visit{
		VisitID:     domain.NextID(doc, domain.CounterVisit),
		ResidentDNI: in.ResidentDNI,
		ManagerID:   in.ManagerID,
		VisitDate:   in.VisitDate,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount.Rounded(),
		Status:      domain.VisitUnpaid,
	}
	doc.Visits = append(doc.Visits, visit)
	return visit, nil
}

// updateVisit patches a visit. Billing fields of a paid visit are frozen by
// its invoice; an unpaid visit keeps no invoice reference.
func updateVisit(doc *domain.Document, id int, p VisitPatch) (domain.Visit, error) {
	v, ok := doc.Visit(id)
	if !ok {
		return domain.Visit{}, domain.NotFoundf(domain.EntityVisit, "visit %d not found", id)
	}
	if v.Paid() {
		if p.changesBilling(*v) {
			return domain.Visit{}, domain.Conflictf(domain.EntityVisit, "visit %d is paid; only the description can change", id)
		}
		patchString(&v.Description, p.Description)
		return cloneVisit(*v), nil
	}

	if p.ResidentDNI != nil {
		if _, ok := doc.Resident(*p.ResidentDNI); !ok {
			return domain.Visit{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", *p.ResidentDNI)
		}
	}
	if p.ManagerID != nil {
		if _, ok := doc.Manager(*p.ManagerID); !ok {
			return domain.Visit{}, domain.NotFoundf(domain.EntityManager, "manager %d not found", *p.ManagerID)
		}
	}
	if p.VisitDate != nil {
		for _, auditID := range domain.VisitAudits(doc, id) {
			a, _ := doc.Audit(auditID)
			if *p.VisitDate > a.CreationDate {
				return domain.Visit{}, domain.Conflictf(domain.EntityVisit, "visit %d is assigned to audit %d created %s", id, auditID, a.CreationDate)
			}
		}
	}

	if p.ResidentDNI != nil {
		v.ResidentDNI = *p.ResidentDNI
	}
	if p.ManagerID != nil {
		v.ManagerID = *p.ManagerID
	}
	if p.VisitDate != nil {
		v.VisitDate = *p.VisitDate
	}
	if p.Amount != nil {
		v.Amount = p.Amount.Rounded()
	}
	patchString(&v.Description, p.Description)
	v.InvoiceID = nil
	v.Status = domain.StatusOf(*v)
	return cloneVisit(*v), nil
}

func deleteVisit(doc *domain.Document, id int) (Deleted, error) {
	v, ok := doc.Visit(id)
	if !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityVisit, "visit %d not found", id)
	}
	if v.Paid() {
		return Deleted{}, domain.Conflictf(domain.EntityVisit, "visit %d is paid by invoice %d", id, *v.InvoiceID)
	}
	if audits := domain.VisitAudits(doc, id); len(audits) > 0 {
		return Deleted{}, domain.Conflictf(domain.EntityVisit, "visit %d is assigned to audit %d", id, audits[0])
	}
	doc.Visits = removeWhere(doc.Visits, func(v domain.Visit) bool { return v.VisitID == id })
	return Deleted{OK: true}, nil
}

func cloneVisit(v domain.Visit) domain.Visit {
	if v.InvoiceID != nil {
		id := *v.InvoiceID
		v.InvoiceID = &id
	}
	return v
}
