package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"sigco/pkg/domain"
)

const (
	dateLayout           = "2006-01-02"
	minDescriptionLength = 5
)

var (
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
	phonePattern      = regexp.MustCompile(`^[0-9+\s]{9,15}$`)
)

// fieldErrors collects argument problems and reports them as one
// InvalidInput error.
type fieldErrors []string

func (f *fieldErrors) add(format string, args ...any) {
	*f = append(*f, fmt.Sprintf(format, args...))
}

func (f *fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add("%s is required", field)
	}
}

// optional checks a patched field only when it is present.
func (f *fieldErrors) optional(field string, value *string) {
	if value != nil {
		f.required(field, *value)
	}
}

func (f *fieldErrors) date(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add("%s is required", field)
		return
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		f.add("%s must be a YYYY-MM-DD date", field)
	}
}

func (f *fieldErrors) positiveID(field string, id int) {
	if id <= 0 {
		f.add("%s is required", field)
	}
}

func (f *fieldErrors) err() error {
	if len(*f) == 0 {
		return nil
	}
	return domain.InvalidInputf("%s", strings.Join(*f, "; "))
}

func trimResident(r domain.Resident) domain.Resident {
	r.DNI = strings.TrimSpace(r.DNI)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Address = strings.TrimSpace(r.Address)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	r.City = strings.TrimSpace(r.City)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

func (f *fieldErrors) postalCode(v string) {
	if !postalCodePattern.MatchString(strings.TrimSpace(v)) {
		f.add("postalCode must have 5 digits")
	}
}

func (f *fieldErrors) phone(v string) {
	if !phonePattern.MatchString(strings.TrimSpace(v)) {
		f.add("phone must have 9 to 15 digits, spaces or '+'")
	}
}

func validateResident(r domain.Resident) error {
	var f fieldErrors
	f.required("dni", r.DNI)
	f.required("firstName", r.FirstName)
	f.required("lastName", r.LastName)
	f.required("address", r.Address)
	f.required("city", r.City)
	f.postalCode(r.PostalCode)
	f.phone(r.Phone)
	return f.err()
}

func validateResidentPatch(p ResidentPatch) error {
	var f fieldErrors
	f.optional("firstName", p.FirstName)
	f.optional("lastName", p.LastName)
	f.optional("address", p.Address)
	f.optional("city", p.City)
	if p.PostalCode != nil {
		f.postalCode(*p.PostalCode)
	}
	if p.Phone != nil {
		f.phone(*p.Phone)
	}
	return f.err()
}

func validateManagerName(name string) error {
	var f fieldErrors
	f.required("name", name)
	return f.err()
}

func (f *fieldErrors) description(v string) {
	if len([]rune(strings.TrimSpace(v))) < minDescriptionLength {
		f.add("description must have at least %d characters", minDescriptionLength)
	}
}

func (f *fieldErrors) positiveAmount(field string, m domain.Money) {
	if !m.Rounded().IsPositive() {
		f.add("%s must be greater than 0", field)
	}
}

func (f *fieldErrors) nonNegativeAmount(field string, m domain.Money) {
	if !m.IsZero() && !m.IsPositive() {
		f.add("%s must not be negative", field)
	}
}

func validateVisit(in VisitRequest) error {
	var f fieldErrors
	f.required("residentDni", in.ResidentDNI)
	f.positiveID("managerId", in.ManagerID)
	f.date("visitDate", in.VisitDate)
	f.description(in.Description)
	f.positiveAmount("amount", in.Amount)
	return f.err()
}

func validateVisitPatch(p VisitPatch) error {
	var f fieldErrors
	f.optional("residentDni", p.ResidentDNI)
	if p.ManagerID != nil {
		f.positiveID("managerId", *p.ManagerID)
	}
	if p.VisitDate != nil {
		f.date("visitDate", *p.VisitDate)
	}
	if p.Description != nil {
		f.description(*p.Description)
	}
	if p.Amount != nil {
		f.positiveAmount("amount", *p.Amount)
	}
	return f.err()
}

func validateInvoice(in InvoiceRequest) error {
	var f fieldErrors
	f.required("residentDni", in.ResidentDNI)
	f.date("creationDate", in.CreationDate)
	return f.err()
}

func validateTeacher(t domain.Teacher) error {
	var f fieldErrors
	f.required("firstName", t.FirstName)
	f.required("lastName", t.LastName)
	f.nonNegativeAmount("salary", t.Salary)
	return f.err()
}

func validateTeacherPatch(p TeacherPatch) error {
	var f fieldErrors
	f.optional("firstName", p.FirstName)
	f.optional("lastName", p.LastName)
	if p.Salary != nil {
		f.nonNegativeAmount("salary", *p.Salary)
	}
	return f.err()
}

func (f *fieldErrors) courseWindow(start, end string) {
	f.date("startDate", start)
	f.date("endDate", end)
	if start != "" && end != "" && end < start {
		f.add("endDate must not be before startDate")
	}
}

func validateCourse(c domain.Course) error {
	var f fieldErrors
	f.required("name", c.Name)
	f.nonNegativeAmount("price", c.Price)
	if c.MaxResidents <= 0 {
		f.add("maxResidents must be greater than 0")
	}
	f.courseWindow(c.StartDate, c.EndDate)
	return f.err()
}

func validateCoursePatch(p CoursePatch) error {
	var f fieldErrors
	f.optional("name", p.Name)
	if p.Price != nil {
		f.nonNegativeAmount("price", *p.Price)
	}
	if p.MaxResidents != nil && *p.MaxResidents <= 0 {
		f.add("maxResidents must be greater than 0")
	}
	if p.StartDate != nil {
		f.date("startDate", *p.StartDate)
	}
	if p.EndDate != nil {
		f.date("endDate", *p.EndDate)
	}
	return f.err()
}

func validateSubject(s domain.Subject) error {
	var f fieldErrors
	f.positiveID("courseId", s.CourseID)
	f.positiveID("teacherId", s.TeacherID)
	f.required("name", s.Name)
	if s.Hours <= 0 {
		f.add("hours must be greater than 0")
	}
	return f.err()
}

func validateSubjectPatch(p SubjectPatch) error {
	var f fieldErrors
	if p.CourseID != nil {
		f.positiveID("courseId", *p.CourseID)
	}
	if p.TeacherID != nil {
		f.positiveID("teacherId", *p.TeacherID)
	}
	f.optional("name", p.Name)
	if p.Hours != nil && *p.Hours <= 0 {
		f.add("hours must be greater than 0")
	}
	return f.err()
}

func validateEnrollment(in EnrollmentRequest) error {
	var f fieldErrors
	f.required("residentDni", in.ResidentDNI)
	f.positiveID("courseId", in.CourseID)
	f.date("enrollmentDate", in.EnrollmentDate)
	return f.err()
}

func validateAuditor(a domain.Auditor) error {
	var f fieldErrors
	f.required("firstName", a.FirstName)
	f.required("lastName", a.LastName)
	f.required("companyCif", a.CompanyCIF)
	f.required("companyName", a.CompanyName)
	return f.err()
}

func validateAuditorPatch(p AuditorPatch) error {
	var f fieldErrors
	f.optional("firstName", p.FirstName)
	f.optional("lastName", p.LastName)
	f.optional("companyCif", p.CompanyCIF)
	f.optional("companyName", p.CompanyName)
	return f.err()
}

func validateMaterial(m domain.Material) error {
	var f fieldErrors
	f.required("name", m.Name)
	f.nonNegativeAmount("price", m.Price)
	return f.err()
}

func validateMaterialPatch(p MaterialPatch) error {
	var f fieldErrors
	f.optional("name", p.Name)
	if p.Price != nil {
		f.nonNegativeAmount("price", *p.Price)
	}
	return f.err()
}

func validateAudit(in AuditRequest) error {
	var f fieldErrors
	f.positiveID("auditorId", in.AuditorID)
	f.date("creationDate", in.CreationDate)
	return f.err()
}

func validateAssignVisits(in AssignVisitsRequest) error {
	var f fieldErrors
	f.positiveID("auditId", in.AuditID)
	if len(in.VisitIDs) == 0 {
		f.add("visitIds must not be empty")
	}
	return f.err()
}

func validateAssignMaterials(in AssignMaterialsRequest) error {
	var f fieldErrors
	f.positiveID("auditId", in.AuditID)
	if len(in.Materials) == 0 {
		f.add("materials must not be empty")
	}
	for _, m := range in.Materials {
		if m.Quantity <= 0 {
			f.add("quantity for material %d must be greater than 0", m.MaterialID)
		}
	}
	return f.err()
}

func validateFinalize(in FinalizeAuditRequest) error {
	var f fieldErrors
	f.positiveID("auditId", in.AuditID)
	f.date("endDate", in.EndDate)
	return f.err()
}
