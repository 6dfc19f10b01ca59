package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the single aggregate holding every collection and the id
// counters. It is persisted and replaced as a whole.
type Document struct {
	Residents   []Resident   `json:"residents"`
	Managers    []Manager    `json:"managers"`
	Visits      []Visit      `json:"visits"`
	Invoices    []Invoice    `json:"invoices"`
	Teachers    []Teacher    `json:"teachers"`
	Courses     []Course     `json:"courses"`
	Subjects    []Subject    `json:"subjects"`
	Enrollments []Enrollment `json:"enrollments"`
	Auditors    []Auditor    `json:"auditors"`
	Materials   []Material   `json:"materials"`
	Audits      []Audit      `json:"audits"`
	Counters    Counters     `json:"counters"`
}

// NewDocument returns an empty, fully shaped document with counters at their floors.
func NewDocument() Document {
	doc := Document{Counters: DefaultCounters()}
	Normalize(&doc)
	return doc
}

// rawDocument mirrors Document with optional counters so that absent counters
// can be told apart from zero-valued ones while decoding older data.
type rawDocument struct {
	Residents   []Resident   `json:"residents"`
	Managers    []Manager    `json:"managers"`
	Visits      []Visit      `json:"visits"`
	Invoices    []Invoice    `json:"invoices"`
	Teachers    []Teacher    `json:"teachers"`
	Courses     []Course     `json:"courses"`
	Subjects    []Subject    `json:"subjects"`
	Enrollments []Enrollment `json:"enrollments"`
	Auditors    []Auditor    `json:"auditors"`
	Materials   []Material   `json:"materials"`
	Audits      []Audit      `json:"audits"`
	Counters    rawCounters  `json:"counters"`
}

// DecodeDocument parses persisted bytes and normalizes the result. Empty input
// yields a fresh document.
func DecodeDocument(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewDocument(), nil
	}
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	doc := Document{
		Residents:   raw.Residents,
		Managers:    raw.Managers,
		Visits:      raw.Visits,
		Invoices:    raw.Invoices,
		Teachers:    raw.Teachers,
		Courses:     raw.Courses,
		Subjects:    raw.Subjects,
		Enrollments: raw.Enrollments,
		Auditors:    raw.Auditors,
		Materials:   raw.Materials,
		Audits:      raw.Audits,
		Counters:    raw.Counters.withFloors(),
	}
	Normalize(&doc)
	return doc, nil
}

// EncodeDocument normalizes and serializes the document with two-space indentation.
func EncodeDocument(doc Document) ([]byte, error) {
	Normalize(&doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Normalize brings a document to its canonical shape: collections are never
// nil, money is rounded, visit status follows the invoice reference, audit
// material maps exist and counters never trail the ids already issued.
// Normalize is idempotent.
func Normalize(doc *Document) {
	if doc.Residents == nil {
		doc.Residents = []Resident{}
	}
	if doc.Managers == nil {
		doc.Managers = []Manager{}
	}
	if doc.Visits == nil {
		doc.Visits = []Visit{}
	}
	if doc.Invoices == nil {
		doc.Invoices = []Invoice{}
	}
	if doc.Teachers == nil {
		doc.Teachers = []Teacher{}
	}
	if doc.Courses == nil {
		doc.Courses = []Course{}
	}
	if doc.Subjects == nil {
		doc.Subjects = []Subject{}
	}
	if doc.Enrollments == nil {
		doc.Enrollments = []Enrollment{}
	}
	if doc.Auditors == nil {
		doc.Auditors = []Auditor{}
	}
	if doc.Materials == nil {
		doc.Materials = []Material{}
	}
	if doc.Audits == nil {
		doc.Audits = []Audit{}
	}

	for i := range doc.Visits {
		v := &doc.Visits[i]
		v.Amount = v.Amount.Rounded()
		v.Status = StatusOf(*v)
		doc.Counters.VisitID = max(doc.Counters.VisitID, v.VisitID)
	}
	for i := range doc.Invoices {
		inv := &doc.Invoices[i]
		inv.TotalAmount = inv.TotalAmount.Rounded()
		if inv.VisitIDs == nil {
			inv.VisitIDs = []int{}
		}
		doc.Counters.InvoiceID = max(doc.Counters.InvoiceID, inv.InvoiceID)
	}
	for i := range doc.Teachers {
		doc.Teachers[i].Salary = doc.Teachers[i].Salary.Rounded()
		doc.Counters.TeacherID = max(doc.Counters.TeacherID, doc.Teachers[i].TeacherID)
	}
	for i := range doc.Courses {
		doc.Courses[i].Price = doc.Courses[i].Price.Rounded()
		doc.Counters.CourseID = max(doc.Counters.CourseID, doc.Courses[i].CourseID)
	}
	for i := range doc.Materials {
		doc.Materials[i].Price = doc.Materials[i].Price.Rounded()
		doc.Counters.MaterialID = max(doc.Counters.MaterialID, doc.Materials[i].MaterialID)
	}
	for i := range doc.Audits {
		a := &doc.Audits[i]
		if a.VisitIDs == nil {
			a.VisitIDs = []int{}
		}
		if a.Materials == nil {
			a.Materials = map[int]int{}
		}
		if a.SalarySnapshot != nil {
			s := a.SalarySnapshot.Rounded()
			a.SalarySnapshot = &s
		}
		doc.Counters.AuditID = max(doc.Counters.AuditID, a.AuditID)
	}
	for _, m := range doc.Managers {
		doc.Counters.ManagerID = max(doc.Counters.ManagerID, m.ManagerID)
	}
	for _, s := range doc.Subjects {
		doc.Counters.SubjectID = max(doc.Counters.SubjectID, s.SubjectID)
	}
	for _, e := range doc.Enrollments {
		doc.Counters.EnrollmentID = max(doc.Counters.EnrollmentID, e.EnrollmentID)
	}
	for _, a := range doc.Auditors {
		doc.Counters.AuditorID = max(doc.Counters.AuditorID, a.AuditorID)
	}
}

// Lookup helpers return pointers into the document's slices. The pointers are
// only valid until the slice is next appended to or filtered.

// Resident returns the resident with the given DNI.
func (d *Document) Resident(dni string) (*Resident, bool) {
	for i := range d.Residents {
		if d.Residents[i].DNI == dni {
			return &d.Residents[i], true
		}
	}
	return nil, false
}

// Manager returns the manager with the given id.
func (d *Document) Manager(id int) (*Manager, bool) {
	for i := range d.Managers {
		if d.Managers[i].ManagerID == id {
			return &d.Managers[i], true
		}
	}
	return nil, false
}

// Visit returns the visit with the given id.
func (d *Document) Visit(id int) (*Visit, bool) {
	for i := range d.Visits {
		if d.Visits[i].VisitID == id {
			return &d.Visits[i], true
		}
	}
	return nil, false
}

// Invoice returns the invoice with the given id.
func (d *Document) Invoice(id int) (*Invoice, bool) {
	for i := range d.Invoices {
		if d.Invoices[i].InvoiceID == id {
			return &d.Invoices[i], true
		}
	}
	return nil, false
}

// Teacher returns the teacher with the given id.
func (d *Document) Teacher(id int) (*Teacher, bool) {
	for i := range d.Teachers {
		if d.Teachers[i].TeacherID == id {
			return &d.Teachers[i], true
		}
	}
	return nil, false
}

// Course returns the course with the given id.
func (d *Document) Course(id int) (*Course, bool) {
	for i := range d.Courses {
		if d.Courses[i].CourseID == id {
			return &d.Courses[i], true
		}
	}
	return nil, false
}

// Subject returns the subject with the given id.
func (d *Document) Subject(id int) (*Subject, bool) {
	for i := range d.Subjects {
		if d.Subjects[i].SubjectID == id {
			return &d.Subjects[i], true
		}
	}
	return nil, false
}

// Enrollment returns the enrollment with the given id.
func (d *Document) Enrollment(id int) (*Enrollment, bool) {
	for i := range d.Enrollments {
		if d.Enrollments[i].EnrollmentID == id {
			return &d.Enrollments[i], true
		}
	}
	return nil, false
}

// Auditor returns the auditor with the given id.
func (d *Document) Auditor(id int) (*Auditor, bool) {
	for i := range d.Auditors {
		if d.Auditors[i].AuditorID == id {
			return &d.Auditors[i], true
		}
	}
	return nil, false
}

// Material returns the material with the given id.
func (d *Document) Material(id int) (*Material, bool) {
	for i := range d.Materials {
		if d.Materials[i].MaterialID == id {
			return &d.Materials[i], true
		}
	}
	return nil, false
}

// Audit returns the audit with the given id.
func (d *Document) Audit(id int) (*Audit, bool) {
	for i := range d.Audits {
		if d.Audits[i].AuditID == id {
			return &d.Audits[i], true
		}
	}
	return nil, false
}
