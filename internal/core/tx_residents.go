package core

import (
	"strings"

	"sigco/pkg/domain"
)

// Deleted is the result of every delete transaction.
type Deleted struct {
	OK bool `json:"ok"`
}

// ResidentPatch lists the resident fields an update may change. The DNI is
// the key and is never patched.
type ResidentPatch struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Address    *string `json:"address"`
	PostalCode *string `json:"postalCode"`
	City       *string `json:"city"`
	Phone      *string `json:"phone"`
}

func patchString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func createResident(doc *domain.Document, in domain.Resident) (domain.Resident, error) {
	if _, exists := doc.Resident(in.DNI); exists {
		return domain.Resident{}, domain.Conflictf(domain.EntityResident, "resident %s already exists", in.DNI)
	}
	doc.Residents = append(doc.Residents, in)
	return in, nil
}

func updateResident(doc *domain.Document, dni string, p ResidentPatch) (domain.Resident, error) {
	r, ok := doc.Resident(dni)
	if !ok {
		return domain.Resident{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", dni)
	}
	patchString(&r.FirstName, p.FirstName)
	patchString(&r.LastName, p.LastName)
	patchString(&r.Address, p.Address)
	patchString(&r.PostalCode, p.PostalCode)
	patchString(&r.City, p.City)
	patchString(&r.Phone, p.Phone)
	return *r, nil
}

func deleteResident(doc *domain.Document, dni string) (Deleted, error) {
	if _, ok := doc.Resident(dni); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", dni)
	}
	for _, v := range doc.Visits {
		if v.ResidentDNI == dni {
			return Deleted{}, domain.Conflictf(domain.EntityResident, "resident %s has visit %d", dni, v.VisitID)
		}
	}
	for _, inv := range doc.Invoices {
		if inv.ResidentDNI == dni {
			return Deleted{}, domain.Conflictf(domain.EntityResident, "resident %s has invoice %d", dni, inv.InvoiceID)
		}
	}
	for _, e := range doc.Enrollments {
		if e.ResidentDNI == dni {
			return Deleted{}, domain.Conflictf(domain.EntityResident, "resident %s is enrolled in course %d", dni, e.CourseID)
		}
	}
	doc.Residents = removeWhere(doc.Residents, func(r domain.Resident) bool { return r.DNI == dni })
	return Deleted{OK: true}, nil
}

// ManagerPatch lists the manager fields an update may change.
type ManagerPatch struct {
	Name *string `json:"name"`
}

func managerNameTaken(doc *domain.Document, name string, except int) bool {
	for _, m := range doc.Managers {
		if m.ManagerID != except && domain.SameName(m.Name, name) {
			return true
		}
	}
	return false
}

func createManager(doc *domain.Document, in domain.Manager) (domain.Manager, error) {
	in.Name = strings.TrimSpace(in.Name)
	if managerNameTaken(doc, in.Name, 0) {
		return domain.Manager{}, domain.Conflictf(domain.EntityManager, "manager %q already exists", in.Name)
	}
	in.ManagerID = domain.NextID(doc, domain.CounterManager)
	doc.Managers = append(doc.Managers, in)
	return in, nil
}

func updateManager(doc *domain.Document, id int, p ManagerPatch) (domain.Manager, error) {
	m, ok := doc.Manager(id)
	if !ok {
		return domain.Manager{}, domain.NotFoundf(domain.EntityManager, "manager %d not found", id)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if managerNameTaken(doc, name, id) {
			return domain.Manager{}, domain.Conflictf(domain.EntityManager, "manager %q already exists", name)
		}
		m.Name = name
	}
	return *m, nil
}

func deleteManager(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Manager(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityManager, "manager %d not found", id)
	}
	for _, v := range doc.Visits {
		if v.ManagerID == id {
			return Deleted{}, domain.Conflictf(domain.EntityManager, "manager %d registered visit %d", id, v.VisitID)
		}
	}
	doc.Managers = removeWhere(doc.Managers, func(m domain.Manager) bool { return m.ManagerID == id })
	return Deleted{OK: true}, nil
}
