package core

import (
	"context"
	"fmt"
	"strconv"

	"sigco/pkg/domain"
)

// NewAuditAssignmentsRule returns the rule checking audit lifecycle data:
// assigned visits predate the audit, material quantities are positive and a
// finalized audit carries its salary snapshot and a later end date.
func NewAuditAssignmentsRule() domain.Rule {
	return auditAssignmentsRule{}
}

type auditAssignmentsRule struct{}

func (auditAssignmentsRule) Name() string { return "audit_assignments" }

func (r auditAssignmentsRule) Evaluate(_ context.Context, doc *domain.Document) (domain.Result, error) {
	res := domain.Result{}
	for _, a := range doc.Audits {
		id := strconv.Itoa(a.AuditID)
		add := func(msg string) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  msg,
				Entity:   domain.EntityAudit,
				EntityID: id,
			})
		}
		for _, vid := range a.VisitIDs {
			if v, ok := doc.Visit(vid); ok && !domain.VisitAuditable(*v, a) {
				add(fmt.Sprintf("audit %d covers visit %d dated %s after its creation %s", a.AuditID, vid, v.VisitDate, a.CreationDate))
			}
		}
		for mid, qty := range a.Materials {
			if qty <= 0 {
				add(fmt.Sprintf("audit %d holds non-positive quantity %d of material %d", a.AuditID, qty, mid))
			}
		}
		if !a.Finalized() {
			if a.SalarySnapshot != nil {
				add(fmt.Sprintf("open audit %d carries a salary snapshot", a.AuditID))
			}
			continue
		}
		if a.SalarySnapshot == nil {
			add(fmt.Sprintf("finalized audit %d has no salary snapshot", a.AuditID))
		}
		if *a.EndDate <= a.CreationDate {
			add(fmt.Sprintf("audit %d ends %s, not after its creation %s", a.AuditID, *a.EndDate, a.CreationDate))
		}
	}
	return res, nil
}
