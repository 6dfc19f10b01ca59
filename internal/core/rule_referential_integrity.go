package core

import (
	"context"
	"fmt"
	"strconv"

	"sigco/pkg/domain"
)

// NewReferentialIntegrityRule returns the rule rejecting dangling foreign keys.
func NewReferentialIntegrityRule() domain.Rule {
	return referentialIntegrityRule{}
}

type referentialIntegrityRule struct{}

func (referentialIntegrityRule) Name() string { return "referential_integrity" }

func (r referentialIntegrityRule) Evaluate(_ context.Context, doc *domain.Document) (domain.Result, error) {
	res := domain.Result{}
	add := func(entity domain.EntityType, id int, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   entity,
			EntityID: strconv.Itoa(id),
		})
	}
	for _, v := range doc.Visits {
		if _, ok := doc.Resident(v.ResidentDNI); !ok {
			add(domain.EntityVisit, v.VisitID, fmt.Sprintf("visit %d references missing resident %s", v.VisitID, v.ResidentDNI))
		}
		if _, ok := doc.Manager(v.ManagerID); !ok {
			add(domain.EntityVisit, v.VisitID, fmt.Sprintf("visit %d references missing manager %d", v.VisitID, v.ManagerID))
		}
	}
	for _, inv := range doc.Invoices {
		if _, ok := doc.Resident(inv.ResidentDNI); !ok {
			add(domain.EntityInvoice, inv.InvoiceID, fmt.Sprintf("invoice %d references missing resident %s", inv.InvoiceID, inv.ResidentDNI))
		}
	}
	for _, s := range doc.Subjects {
		if _, ok := doc.Course(s.CourseID); !ok {
			add(domain.EntitySubject, s.SubjectID, fmt.Sprintf("subject %d references missing course %d", s.SubjectID, s.CourseID))
		}
		if _, ok := doc.Teacher(s.TeacherID); !ok {
			add(domain.EntitySubject, s.SubjectID, fmt.Sprintf("subject %d references missing teacher %d", s.SubjectID, s.TeacherID))
		}
	}
	for _, e := range doc.Enrollments {
		if _, ok := doc.Resident(e.ResidentDNI); !ok {
			add(domain.EntityEnrollment, e.EnrollmentID, fmt.Sprintf("enrollment %d references missing resident %s", e.EnrollmentID, e.ResidentDNI))
		}
		if _, ok := doc.Course(e.CourseID); !ok {
			add(domain.EntityEnrollment, e.EnrollmentID, fmt.Sprintf("enrollment %d references missing course %d", e.EnrollmentID, e.CourseID))
		}
	}
	for _, a := range doc.Audits {
		if _, ok := doc.Auditor(a.AuditorID); !ok {
			add(domain.EntityAudit, a.AuditID, fmt.Sprintf("audit %d references missing auditor %d", a.AuditID, a.AuditorID))
		}
		for _, vid := range a.VisitIDs {
			if _, ok := doc.Visit(vid); !ok {
				add(domain.EntityAudit, a.AuditID, fmt.Sprintf("audit %d references missing visit %d", a.AuditID, vid))
			}
		}
		for mid := range a.Materials {
			if _, ok := doc.Material(mid); !ok {
				add(domain.EntityAudit, a.AuditID, fmt.Sprintf("audit %d references missing material %d", a.AuditID, mid))
			}
		}
	}
	return res, nil
}
