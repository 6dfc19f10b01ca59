package domain

import "strings"

// Derived facts are recomputed from authoritative fields on every call and
// never stored, with the single exception of Audit.SalarySnapshot.

// StatusOf derives a visit's status from its invoice reference.
func StatusOf(v Visit) VisitStatus {
	if v.InvoiceID != nil {
		return VisitPaid
	}
	return VisitUnpaid
}

// UnpaidVisits returns copies of the resident's visits that carry no invoice.
func UnpaidVisits(doc *Document, dni string) []Visit {
	var out []Visit
	for _, v := range doc.Visits {
		if v.ResidentDNI == dni && v.InvoiceID == nil {
			out = append(out, v)
		}
	}
	return out
}

// TotalAmount sums visit amounts and rounds the result.
func TotalAmount(visits []Visit) Money {
	amounts := make([]Money, 0, len(visits))
	for _, v := range visits {
		amounts = append(amounts, v.Amount)
	}
	return SumMoney(amounts...)
}

// UnpaidStats summarises a resident's outstanding balance.
type UnpaidStats struct {
	HasUnpaidVisits   bool  `json:"hasUnpaidVisits"`
	UnpaidVisitsCount int   `json:"unpaidVisitsCount"`
	UnpaidVisitsTotal Money `json:"unpaidVisitsTotal"`
}

// ResidentUnpaidStats computes the outstanding balance for a resident.
func ResidentUnpaidStats(doc *Document, dni string) UnpaidStats {
	unpaid := UnpaidVisits(doc, dni)
	return UnpaidStats{
		HasUnpaidVisits:   len(unpaid) > 0,
		UnpaidVisitsCount: len(unpaid),
		UnpaidVisitsTotal: TotalAmount(unpaid),
	}
}

// EnrolledCount returns the live number of enrollments for a course.
func EnrolledCount(doc *Document, courseID int) int {
	n := 0
	for _, e := range doc.Enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n
}

// HasCapacity reports whether the course has at least one free seat.
func HasCapacity(doc *Document, course Course) bool {
	return EnrolledCount(doc, course.CourseID) < course.MaxResidents
}

// IsEnrolled reports whether the resident already holds a seat in the course.
func IsEnrolled(doc *Document, dni string, courseID int) bool {
	for _, e := range doc.Enrollments {
		if e.ResidentDNI == dni && e.CourseID == courseID {
			return true
		}
	}
	return false
}

// CourseDurationHours sums the hours of the course's subjects.
func CourseDurationHours(doc *Document, courseID int) int {
	total := 0
	for _, s := range doc.Subjects {
		if s.CourseID == courseID {
			total += s.Hours
		}
	}
	return total
}

// VisitAuditable reports whether a visit had already happened when the audit
// was created. ISO dates compare lexicographically.
func VisitAuditable(v Visit, a Audit) bool {
	return v.VisitDate <= a.CreationDate
}

// AuditVisits returns copies of the visits assigned to the audit that still exist.
func AuditVisits(doc *Document, a Audit) []Visit {
	out := make([]Visit, 0, len(a.VisitIDs))
	for _, id := range a.VisitIDs {
		if v, ok := doc.Visit(id); ok {
			out = append(out, *v)
		}
	}
	return out
}

// AuditVisitsTotal sums the live amounts of the audit's visits.
func AuditVisitsTotal(doc *Document, a Audit) Money {
	return TotalAmount(AuditVisits(doc, a))
}

// AuditSalaryAmount returns the frozen snapshot of a finalized audit, or the
// live 20% of its visits while the audit is open.
func AuditSalaryAmount(doc *Document, a Audit) Money {
	if a.SalarySnapshot != nil {
		return *a.SalarySnapshot
	}
	return AuditorSalary(AuditVisitsTotal(doc, a))
}

// MaterialLine is an audit material with its computed line total.
type MaterialLine struct {
	MaterialID int    `json:"materialId"`
	Name       string `json:"name"`
	Price      Money  `json:"price"`
	Quantity   int    `json:"quantity"`
	LineTotal  Money  `json:"lineTotal"`
}

// AuditMaterialLines expands the audit's material quantities in catalog order.
func AuditMaterialLines(doc *Document, a Audit) []MaterialLine {
	lines := make([]MaterialLine, 0, len(a.Materials))
	for _, m := range doc.Materials {
		qty, ok := a.Materials[m.MaterialID]
		if !ok {
			continue
		}
		lines = append(lines, MaterialLine{
			MaterialID: m.MaterialID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   qty,
			LineTotal:  m.Price.MulInt(qty),
		})
	}
	return lines
}

// VisitAudits returns the ids of audits the visit is assigned to.
func VisitAudits(doc *Document, visitID int) []int {
	var ids []int
	for _, a := range doc.Audits {
		if a.HasVisit(visitID) {
			ids = append(ids, a.AuditID)
		}
	}
	return ids
}

// SameName compares names ignoring case and surrounding space.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
