package core

import "sigco/pkg/domain"

// AuditRequest opens an audit for an auditor.
type AuditRequest struct {
	AuditorID    int    `json:"auditorId"`
	CreationDate string `json:"creationDate"`
}

// AssignVisitsRequest adds visits to an open audit.
type AssignVisitsRequest struct {
	AuditID  int   `json:"auditId"`
	VisitIDs []int `json:"visitIds"`
}

// MaterialQuantity is one material line of an assignment.
type MaterialQuantity struct {
	MaterialID int `json:"materialId"`
	Quantity   int `json:"quantity"`
}

// AssignMaterialsRequest adds material quantities to an open audit.
type AssignMaterialsRequest struct {
	AuditID   int                `json:"auditId"`
	Materials []MaterialQuantity `json:"materials"`
}

// FinalizeAuditRequest closes an audit.
type FinalizeAuditRequest struct {
	AuditID int    `json:"auditId"`
	EndDate string `json:"endDate"`
}

func createAudit(doc *domain.Document, in AuditRequest) (domain.Audit, error) {
	if _, ok := doc.Auditor(in.AuditorID); !ok {
		return domain.Audit{}, domain.NotFoundf(domain.EntityAuditor, "auditor %d not found", in.AuditorID)
	}
	audit := domain.Audit{
		AuditID:      domain.NextID(doc, domain.CounterAudit),
		AuditorID:    in.AuditorID,
		CreationDate: in.CreationDate,
		VisitIDs:     []int{},
		Materials:    map[int]int{},
	}
	doc.Audits = append(doc.Audits, audit)
	return cloneAudit(audit), nil
}

func openAudit(doc *domain.Document, id int) (*domain.Audit, error) {
	a, ok := doc.Audit(id)
	if !ok {
		return nil, domain.NotFoundf(domain.EntityAudit, "audit %d not found", id)
	}
	if a.Finalized() {
		return nil, domain.Conflictf(domain.EntityAudit, "audit %d is finalized", id)
	}
	return a, nil
}

// assignVisitsToAudit merges visits into an open audit. Already assigned ids
// are skipped; every id is validated before anything changes.
func assignVisitsToAudit(doc *domain.Document, in AssignVisitsRequest) (domain.Audit, error) {
	a, err := openAudit(doc, in.AuditID)
	if err != nil {
		return domain.Audit{}, err
	}
	for _, vid := range in.VisitIDs {
		v, ok := doc.Visit(vid)
		if !ok {
			return domain.Audit{}, domain.NotFoundf(domain.EntityVisit, "visit %d not found", vid)
		}
		if !domain.VisitAuditable(*v, *a) {
			return domain.Audit{}, domain.Conflictf(domain.EntityVisit, "visit %d dated %s is after audit creation %s", vid, v.VisitDate, a.CreationDate)
		}
	}
	for _, vid := range in.VisitIDs {
		if !a.HasVisit(vid) {
			a.VisitIDs = append(a.VisitIDs, vid)
		}
	}
	return cloneAudit(*a), nil
}

// assignMaterialsToAudit accumulates quantities per material.
func assignMaterialsToAudit(doc *domain.Document, in AssignMaterialsRequest) (domain.Audit, error) {
	a, err := openAudit(doc, in.AuditID)
	if err != nil {
		return domain.Audit{}, err
	}
	for _, line := range in.Materials {
		if _, ok := doc.Material(line.MaterialID); !ok {
			return domain.Audit{}, domain.NotFoundf(domain.EntityMaterial, "material %d not found", line.MaterialID)
		}
		if line.Quantity <= 0 {
			return domain.Audit{}, domain.InvalidInputf("quantity for material %d must be > 0", line.MaterialID)
		}
	}
	if a.Materials == nil {
		a.Materials = map[int]int{}
	}
	for _, line := range in.Materials {
		a.Materials[line.MaterialID] += line.Quantity
	}
	return cloneAudit(*a), nil
}

// finalizeAudit closes the audit and freezes the auditor's salary at 20% of the
// assigned visits' total.
func finalizeAudit(doc *domain.Document, in FinalizeAuditRequest) (domain.Audit, error) {
	a, err := openAudit(doc, in.AuditID)
	if err != nil {
		return domain.Audit{}, err
	}
	if in.EndDate <= a.CreationDate {
		return domain.Audit{}, domain.Conflictf(domain.EntityAudit, "end date %s must be after creation date %s", in.EndDate, a.CreationDate)
	}
	if len(a.VisitIDs) == 0 {
		return domain.Audit{}, domain.Conflictf(domain.EntityAudit, "audit %d has no visits assigned", a.AuditID)
	}
	end := in.EndDate
	salary := domain.AuditorSalary(domain.AuditVisitsTotal(doc, *a))
	a.EndDate = &end
	a.SalarySnapshot = &salary
	return cloneAudit(*a), nil
}

// Auditor and material catalog.

// AuditorPatch lists the auditor fields an update may change.
type AuditorPatch struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	CompanyCIF     *string `json:"companyCif"`
	CompanyName    *string `json:"companyName"`
	CompanyAddress *string `json:"companyAddress"`
	CompanyPhone   *string `json:"companyPhone"`
}

func createAuditor(doc *domain.Document, in domain.Auditor) (domain.Auditor, error) {
	in.AuditorID = domain.NextID(doc, domain.CounterAuditor)
	doc.Auditors = append(doc.Auditors, in)
	return in, nil
}

func updateAuditor(doc *domain.Document, id int, p AuditorPatch) (domain.Auditor, error) {
	a, ok := doc.Auditor(id)
	if !ok {
		return domain.Auditor{}, domain.NotFoundf(domain.EntityAuditor, "auditor %d not found", id)
	}
	patchString(&a.FirstName, p.FirstName)
	patchString(&a.LastName, p.LastName)
	patchString(&a.CompanyCIF, p.CompanyCIF)
	patchString(&a.CompanyName, p.CompanyName)
	patchString(&a.CompanyAddress, p.CompanyAddress)
	patchString(&a.CompanyPhone, p.CompanyPhone)
	return *a, nil
}

func deleteAuditor(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Auditor(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityAuditor, "auditor %d not found", id)
	}
	for _, a := range doc.Audits {
		if a.AuditorID == id {
			return Deleted{}, domain.Conflictf(domain.EntityAuditor, "auditor %d is referenced by audit %d", id, a.AuditID)
		}
	}
	doc.Auditors = removeWhere(doc.Auditors, func(a domain.Auditor) bool { return a.AuditorID == id })
	return Deleted{OK: true}, nil
}

// MaterialPatch lists the material fields an update may change.
type MaterialPatch struct {
	Name  *string       `json:"name"`
	Price *domain.Money `json:"price"`
}

func createMaterial(doc *domain.Document, in domain.Material) (domain.Material, error) {
	in.MaterialID = domain.NextID(doc, domain.CounterMaterial)
	in.Price = in.Price.Rounded()
	doc.Materials = append(doc.Materials, in)
	return in, nil
}

func updateMaterial(doc *domain.Document, id int, p MaterialPatch) (domain.Material, error) {
	m, ok := doc.Material(id)
	if !ok {
		return domain.Material{}, domain.NotFoundf(domain.EntityMaterial, "material %d not found", id)
	}
	patchString(&m.Name, p.Name)
	if p.Price != nil {
		m.Price = p.Price.Rounded()
	}
	return *m, nil
}

func deleteMaterial(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Material(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityMaterial, "material %d not found", id)
	}
	for _, a := range doc.Audits {
		if _, used := a.Materials[id]; used {
			return Deleted{}, domain.Conflictf(domain.EntityMaterial, "material %d is used by audit %d", id, a.AuditID)
		}
	}
	doc.Materials = removeWhere(doc.Materials, func(m domain.Material) bool { return m.MaterialID == id })
	return Deleted{OK: true}, nil
}

// cloneAudit detaches the returned audit from the document's slices and maps.
func cloneAudit(a domain.Audit) domain.Audit {
	a.VisitIDs = append([]int{}, a.VisitIDs...)
	materials := make(map[int]int, len(a.Materials))
	for k, v := range a.Materials {
		materials[k] = v
	}
	a.Materials = materials
	if a.EndDate != nil {
		end := *a.EndDate
		a.EndDate = &end
	}
	if a.SalarySnapshot != nil {
		s := *a.SalarySnapshot
		a.SalarySnapshot = &s
	}
	return a
}
