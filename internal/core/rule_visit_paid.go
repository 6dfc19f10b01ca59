package core

import (
	"context"
	"fmt"
	"strconv"

	"sigco/pkg/domain"
)

// NewVisitPaidConsistencyRule returns the rule keeping a visit's status in step
// with its invoice reference, and the reference pointing at a real invoice.
func NewVisitPaidConsistencyRule() domain.Rule {
	return visitPaidConsistencyRule{}
}

type visitPaidConsistencyRule struct{}

func (visitPaidConsistencyRule) Name() string { return "visit_paid_consistency" }

func (r visitPaidConsistencyRule) Evaluate(_ context.Context, doc *domain.Document) (domain.Result, error) {
	res := domain.Result{}
	for _, v := range doc.Visits {
		if v.Status != domain.StatusOf(v) {
			res.Violations = append(res.Violations, r.violation(v.VisitID,
				fmt.Sprintf("visit %d has status %s but invoice reference says %s", v.VisitID, v.Status, domain.StatusOf(v))))
		}
		if v.InvoiceID == nil {
			continue
		}
		inv, ok := doc.Invoice(*v.InvoiceID)
		if !ok {
			res.Violations = append(res.Violations, r.violation(v.VisitID,
				fmt.Sprintf("visit %d references missing invoice %d", v.VisitID, *v.InvoiceID)))
			continue
		}
		if !containsID(inv.VisitIDs, v.VisitID) {
			res.Violations = append(res.Violations, r.violation(v.VisitID,
				fmt.Sprintf("visit %d is not listed by invoice %d", v.VisitID, inv.InvoiceID)))
		}
	}
	return res, nil
}

func (r visitPaidConsistencyRule) violation(visitID int, msg string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   domain.EntityVisit,
		EntityID: strconv.Itoa(visitID),
	}
}

func containsID(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
