package domain

import "fmt"

// CounterKind names one surrogate id sequence in the counters block.
type CounterKind string

// Counter kinds, named after their JSON keys.
const (
	CounterVisit      CounterKind = "visitId"
	CounterInvoice    CounterKind = "invoiceId"
	CounterManager    CounterKind = "managerId"
	CounterTeacher    CounterKind = "teacherId"
	CounterCourse     CounterKind = "courseId"
	CounterSubject    CounterKind = "subjectId"
	CounterEnrollment CounterKind = "enrollmentId"
	CounterAuditor    CounterKind = "auditorId"
	CounterMaterial   CounterKind = "materialId"
	CounterAudit      CounterKind = "auditId"
)

// Counter floors used when a document carries no value for a kind. Visit and
// invoice numbering start at recognisable offsets.
const (
	VisitIDFloor   = 1000
	InvoiceIDFloor = 5000
)

// Counters holds the last id issued for every kind.
type Counters struct {
	VisitID      int `json:"visitId"`
	InvoiceID    int `json:"invoiceId"`
	ManagerID    int `json:"managerId"`
	TeacherID    int `json:"teacherId"`
	CourseID     int `json:"courseId"`
	SubjectID    int `json:"subjectId"`
	EnrollmentID int `json:"enrollmentId"`
	AuditorID    int `json:"auditorId"`
	MaterialID   int `json:"materialId"`
	AuditID      int `json:"auditId"`
}

// DefaultCounters returns every counter at its floor.
func DefaultCounters() Counters {
	return Counters{VisitID: VisitIDFloor, InvoiceID: InvoiceIDFloor}
}

type rawCounters struct {
	VisitID      *int `json:"visitId"`
	InvoiceID    *int `json:"invoiceId"`
	ManagerID    *int `json:"managerId"`
	TeacherID    *int `json:"teacherId"`
	CourseID     *int `json:"courseId"`
	SubjectID    *int `json:"subjectId"`
	EnrollmentID *int `json:"enrollmentId"`
	AuditorID    *int `json:"auditorId"`
	MaterialID   *int `json:"materialId"`
	AuditID      *int `json:"auditId"`
}

func (r rawCounters) withFloors() Counters {
	c := DefaultCounters()
	pick := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	pick(&c.VisitID, r.VisitID)
	pick(&c.InvoiceID, r.InvoiceID)
	pick(&c.ManagerID, r.ManagerID)
	pick(&c.TeacherID, r.TeacherID)
	pick(&c.CourseID, r.CourseID)
	pick(&c.SubjectID, r.SubjectID)
	pick(&c.EnrollmentID, r.EnrollmentID)
	pick(&c.AuditorID, r.AuditorID)
	pick(&c.MaterialID, r.MaterialID)
	pick(&c.AuditID, r.AuditID)
	return c
}

func (c *Counters) cursor(kind CounterKind) *int {
	switch kind {
	case CounterVisit:
		return &c.VisitID
	case CounterInvoice:
		return &c.InvoiceID
	case CounterManager:
		return &c.ManagerID
	case CounterTeacher:
		return &c.TeacherID
	case CounterCourse:
		return &c.CourseID
	case CounterSubject:
		return &c.SubjectID
	case CounterEnrollment:
		return &c.EnrollmentID
	case CounterAuditor:
		return &c.AuditorID
	case CounterMaterial:
		return &c.MaterialID
	case CounterAudit:
		return &c.AuditID
	default:
		panic(fmt.Sprintf("domain: unknown counter kind %q", kind))
	}
}

// Value returns the last id issued for kind.
func (c Counters) Value(kind CounterKind) int {
	return *c.cursor(kind)
}

// NextID increments the counter for kind inside doc and returns the new id.
// It must only be called from a transaction body so the increment commits, or
// is discarded, together with the rest of the document.
func NextID(doc *Document, kind CounterKind) int {
	p := doc.Counters.cursor(kind)
	*p++
	return *p
}
