// Package domain defines the typed records persisted in the sigco document,
// the document aggregate itself, and the pure rules computed over it.
package domain

// EntityType identifies the kind of record stored in the document.
type EntityType string

// Supported entity type identifiers used in errors and rule violations.
const (
	EntityResident   EntityType = "resident"
	EntityManager    EntityType = "manager"
	EntityVisit      EntityType = "visit"
	EntityInvoice    EntityType = "invoice"
	EntityTeacher    EntityType = "teacher"
	EntityCourse     EntityType = "course"
	EntitySubject    EntityType = "subject"
	EntityEnrollment EntityType = "enrollment"
	EntityAuditor    EntityType = "auditor"
	EntityMaterial   EntityType = "material"
	EntityAudit      EntityType = "audit"
)

// VisitStatus is derived from a visit's invoice reference.
type VisitStatus string

// Visit statuses. PAID iff the visit carries an invoice id.
const (
	VisitUnpaid VisitStatus = "UNPAID"
	VisitPaid   VisitStatus = "PAID"
)

// AuditStatus is derived from an audit's end date.
type AuditStatus string

// Audit statuses. An audit is OPEN until an end date is recorded.
const (
	AuditOpen      AuditStatus = "OPEN"
	AuditFinalized AuditStatus = "FINALIZED"
)

// Resident is keyed by its national id, which never changes.
type Resident struct {
	DNI        string `json:"dni"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
}

// Manager registers visits. Names are unique ignoring case.
type Manager struct {
	ManagerID int    `json:"managerId"`
	Name      string `json:"name"`
}

// Visit is a billable service rendered to a resident.
type Visit struct {
	VisitID     int         `json:"visitId"`
	ResidentDNI string      `json:"residentDni"`
	ManagerID   int         `json:"managerId"`
	VisitDate   string      `json:"visitDate"`
	Description string      `json:"description"`
	Amount      Money       `json:"amount"`
	Status      VisitStatus `json:"status"`
	InvoiceID   *int        `json:"invoiceId"`
}

// Paid reports whether the visit has been settled by an invoice.
func (v Visit) Paid() bool { return v.InvoiceID != nil }

// Invoice settles every unpaid visit a resident had when it was created.
type Invoice struct {
	InvoiceID    int    `json:"invoiceId"`
	ResidentDNI  string `json:"residentDni"`
	CreationDate string `json:"creationDate"`
	VisitIDs     []int  `json:"visitIds"`
	TotalAmount  Money  `json:"totalAmount"`
}

// Teacher teaches course subjects.
type Teacher struct {
	TeacherID int    `json:"teacherId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Salary    Money  `json:"salary"`
}

// Course has a bounded number of resident seats.
type Course struct {
	CourseID     int    `json:"courseId"`
	Name         string `json:"name"`
	Price        Money  `json:"price"`
	MaxResidents int    `json:"maxResidents"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// Subject is a unit of a course taught by one teacher.
type Subject struct {
	SubjectID int    `json:"subjectId"`
	CourseID  int    `json:"courseId"`
	TeacherID int    `json:"teacherId"`
	Name      string `json:"name"`
	Hours     int    `json:"hours"`
}

// Enrollment occupies one seat of a course.
type Enrollment struct {
	EnrollmentID   int    `json:"enrollmentId"`
	ResidentDNI    string `json:"residentDni"`
	CourseID       int    `json:"courseId"`
	EnrollmentDate string `json:"enrollmentDate"`
}

// Auditor is the contractor performing audits.
type Auditor struct {
	AuditorID      int    `json:"auditorId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	CompanyCIF     string `json:"companyCif"`
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	CompanyPhone   string `json:"companyPhone"`
}

// Material is consumed by audits.
type Material struct {
	MaterialID int    `json:"materialId"`
	Name       string `json:"name"`
	Price      Money  `json:"price"`
}

// Audit reviews completed visits. Once EndDate is set the audit is locked and
// SalarySnapshot holds the frozen payout.
type Audit struct {
	AuditID        int         `json:"auditId"`
	AuditorID      int         `json:"auditorId"`
	CreationDate   string      `json:"creationDate"`
	EndDate        *string     `json:"endDate"`
	VisitIDs       []int       `json:"visitIds"`
	Materials      map[int]int `json:"materials"`
	SalarySnapshot *Money      `json:"salarySnapshot"`
}

// Finalized reports whether the audit has been closed.
func (a Audit) Finalized() bool { return a.EndDate != nil }

// Status derives the lifecycle state from the end date.
func (a Audit) Status() AuditStatus {
	if a.Finalized() {
		return AuditFinalized
	}
	return AuditOpen
}

// HasVisit reports whether the visit id is assigned to the audit.
func (a Audit) HasVisit(visitID int) bool {
	for _, id := range a.VisitIDs {
		if id == visitID {
			return true
		}
	}
	return false
}
