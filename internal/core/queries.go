package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sigco/pkg/domain"
)

// Reader answers read-only queries straight from the document store. It never
// goes through the engine, so a query observes the last committed document
// and never blocks writers.
type Reader struct {
	store domain.DocumentStore
}

// NewReader constructs a reader over store.
func NewReader(store domain.DocumentStore) *Reader {
	return &Reader{store: store}
}

func (r *Reader) load(ctx context.Context) (*domain.Document, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &doc, nil
}

// ResidentSummary is a resident with its outstanding balance.
type ResidentSummary struct {
	domain.Resident
	domain.UnpaidStats
}

// ResidentFilter narrows the resident list. Query matches DNI, names and
// city ignoring case.
type ResidentFilter struct {
	Query      string `json:"q"`
	OnlyUnpaid bool   `json:"onlyUnpaid"`
}

// Residents lists residents with their unpaid stats.
func (r *Reader) Residents(ctx context.Context, f ResidentFilter) ([]ResidentSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []ResidentSummary{}
	for _, res := range doc.Residents {
		if !matchesQuery(f.Query, res.DNI, res.FirstName, res.LastName, res.City) {
			continue
		}
		stats := domain.ResidentUnpaidStats(doc, res.DNI)
		if f.OnlyUnpaid && !stats.HasUnpaidVisits {
			continue
		}
		out = append(out, ResidentSummary{Resident: res, UnpaidStats: stats})
	}
	return out, nil
}

// matchesQuery reports whether any field contains q ignoring case. An empty
// q matches everything.
func matchesQuery(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Resident returns one resident with its unpaid stats.
func (r *Reader) Resident(ctx context.Context, dni string) (ResidentSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return ResidentSummary{}, err
	}
	res, ok := doc.Resident(dni)
	if !ok {
		return ResidentSummary{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", dni)
	}
	return ResidentSummary{Resident: *res, UnpaidStats: domain.ResidentUnpaidStats(doc, dni)}, nil
}

// UnpaidVisitsReport lists what the next invoice for a resident would settle.
type UnpaidVisitsReport struct {
	ResidentDNI       string         `json:"residentDni"`
	UnpaidVisits      []domain.Visit `json:"unpaidVisits"`
	UnpaidVisitsCount int            `json:"unpaidVisitsCount"`
	UnpaidVisitsTotal domain.Money   `json:"unpaidVisitsTotal"`
}

// ResidentUnpaidVisits returns the resident's unpaid visits and their total.
func (r *Reader) ResidentUnpaidVisits(ctx context.Context, dni string) (UnpaidVisitsReport, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return UnpaidVisitsReport{}, err
	}
	if _, ok := doc.Resident(dni); !ok {
		return UnpaidVisitsReport{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", dni)
	}
	visits := domain.UnpaidVisits(doc, dni)
	if visits == nil {
		visits = []domain.Visit{}
	}
	return UnpaidVisitsReport{
		ResidentDNI:       dni,
		UnpaidVisits:      visits,
		UnpaidVisitsCount: len(visits),
		UnpaidVisitsTotal: domain.TotalAmount(visits),
	}, nil
}

// Managers lists managers.
func (r *Reader) Managers(ctx context.Context) ([]domain.Manager, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Managers, nil
}

// VisitFilter narrows the visit list. From and To bound the visit date
// inclusively.
type VisitFilter struct {
	ResidentDNI string             `json:"residentDni"`
	Status      domain.VisitStatus `json:"status"`
	From        string             `json:"from"`
	To          string             `json:"to"`
}

// Visits lists visits matching f, latest first.
func (r *Reader) Visits(ctx context.Context, f VisitFilter) ([]domain.Visit, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	status := domain.VisitStatus(strings.ToUpper(string(f.Status)))
	out := []domain.Visit{}
	for _, v := range doc.Visits {
		switch {
		case f.ResidentDNI != "" && v.ResidentDNI != f.ResidentDNI:
			continue
		case status != "" && domain.StatusOf(v) != status:
			continue
		case f.From != "" && v.VisitDate < f.From:
			continue
		case f.To != "" && v.VisitDate > f.To:
			continue
		}
		out = append(out, cloneVisit(v))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VisitDate > out[j].VisitDate })
	return out, nil
}

// Visit returns one visit.
func (r *Reader) Visit(ctx context.Context, id int) (domain.Visit, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return domain.Visit{}, err
	}
	v, ok := doc.Visit(id)
	if !ok {
		return domain.Visit{}, domain.NotFoundf(domain.EntityVisit, "visit %d not found", id)
	}
	return cloneVisit(*v), nil
}

// InvoiceFilter narrows the invoice list. From and To bound the creation date
// inclusively.
type InvoiceFilter struct {
	ResidentDNI string `json:"residentDni"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// Invoices lists invoices matching f, latest first.
func (r *Reader) Invoices(ctx context.Context, f InvoiceFilter) ([]domain.Invoice, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Invoice{}
	for _, inv := range doc.Invoices {
		switch {
		case f.ResidentDNI != "" && inv.ResidentDNI != f.ResidentDNI:
			continue
		case f.From != "" && inv.CreationDate < f.From:
			continue
		case f.To != "" && inv.CreationDate > f.To:
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreationDate > out[j].CreationDate })
	return out, nil
}

// InvoiceDetail is an invoice with the visits it settled.
type InvoiceDetail struct {
	domain.Invoice
	Visits []domain.Visit `json:"visits"`
}

// Invoice returns one invoice with its visits in invoice order.
func (r *Reader) Invoice(ctx context.Context, id int) (InvoiceDetail, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return InvoiceDetail{}, err
	}
	inv, ok := doc.Invoice(id)
	if !ok {
		return InvoiceDetail{}, domain.NotFoundf(domain.EntityInvoice, "invoice %d not found", id)
	}
	visits := make([]domain.Visit, 0, len(inv.VisitIDs))
	for _, vid := range inv.VisitIDs {
		if v, ok := doc.Visit(vid); ok {
			visits = append(visits, cloneVisit(*v))
		}
	}
	return InvoiceDetail{Invoice: cloneInvoice(*inv), Visits: visits}, nil
}

// TextFilter narrows a list by a case-insensitive substring.
type TextFilter struct {
	Query string `json:"q"`
}

// Teachers lists teachers whose names or phone match f.
func (r *Reader) Teachers(ctx context.Context, f TextFilter) ([]domain.Teacher, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Teacher{}
	for _, t := range doc.Teachers {
		if matchesQuery(f.Query, t.FirstName, t.LastName, t.Phone) {
			out = append(out, t)
		}
	}
	return out, nil
}

// CourseSummary is a course with its live seat count and duration.
type CourseSummary struct {
	domain.Course
	EnrolledCount int  `json:"enrolledCount"`
	HasCapacity   bool `json:"hasCapacity"`
	DurationHours int  `json:"durationHours"`
}

func summarizeCourse(doc *domain.Document, c domain.Course) CourseSummary {
	return CourseSummary{
		Course:        c,
		EnrolledCount: domain.EnrolledCount(doc, c.CourseID),
		HasCapacity:   domain.HasCapacity(doc, c),
		DurationHours: domain.CourseDurationHours(doc, c.CourseID),
	}
}

// CourseFilter narrows the course list. A course matches the From/To window
// when its own date range overlaps it.
type CourseFilter struct {
	Query string `json:"q"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Courses lists course summaries matching f.
func (r *Reader) Courses(ctx context.Context, f CourseFilter) ([]CourseSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []CourseSummary{}
	for _, c := range doc.Courses {
		switch {
		case !matchesQuery(f.Query, c.Name):
			continue
		case f.From != "" && c.EndDate < f.From:
			continue
		case f.To != "" && c.StartDate > f.To:
			continue
		}
		out = append(out, summarizeCourse(doc, c))
	}
	return out, nil
}

// Course returns one course summary.
func (r *Reader) Course(ctx context.Context, id int) (CourseSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return CourseSummary{}, err
	}
	c, ok := doc.Course(id)
	if !ok {
		return CourseSummary{}, domain.NotFoundf(domain.EntityCourse, "course %d not found", id)
	}
	return summarizeCourse(doc, *c), nil
}

// Subjects lists the subjects of a course, or all subjects when courseID is 0.
func (r *Reader) Subjects(ctx context.Context, courseID int) ([]domain.Subject, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Subject{}
	for _, s := range doc.Subjects {
		if courseID == 0 || s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out, nil
}

// CourseResidents lists the residents enrolled in a course.
func (r *Reader) CourseResidents(ctx context.Context, courseID int) ([]domain.Resident, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Course(courseID); !ok {
		return nil, domain.NotFoundf(domain.EntityCourse, "course %d not found", courseID)
	}
	out := []domain.Resident{}
	for _, e := range doc.Enrollments {
		if e.CourseID != courseID {
			continue
		}
		if res, ok := doc.Resident(e.ResidentDNI); ok {
			out = append(out, *res)
		}
	}
	return out, nil
}

// ResidentCourses lists the courses a resident is enrolled in.
func (r *Reader) ResidentCourses(ctx context.Context, dni string) ([]CourseSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Resident(dni); !ok {
		return nil, domain.NotFoundf(domain.EntityResident, "resident %s not found", dni)
	}
	out := []CourseSummary{}
	for _, e := range doc.Enrollments {
		if e.ResidentDNI != dni {
			continue
		}
		if c, ok := doc.Course(e.CourseID); ok {
			out = append(out, summarizeCourse(doc, *c))
		}
	}
	return out, nil
}

// EnrollmentFilter narrows the enrollment list. Zero values match all.
type EnrollmentFilter struct {
	CourseID    int    `json:"courseId"`
	ResidentDNI string `json:"residentDni"`
}

// Enrollments lists enrollments matching f.
func (r *Reader) Enrollments(ctx context.Context, f EnrollmentFilter) ([]domain.Enrollment, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	dni := strings.TrimSpace(f.ResidentDNI)
	out := []domain.Enrollment{}
	for _, e := range doc.Enrollments {
		switch {
		case f.CourseID != 0 && e.CourseID != f.CourseID:
			continue
		case dni != "" && e.ResidentDNI != dni:
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Auditors lists auditors whose names or company match f.
func (r *Reader) Auditors(ctx context.Context, f TextFilter) ([]domain.Auditor, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Auditor{}
	for _, a := range doc.Auditors {
		if matchesQuery(f.Query, a.FirstName, a.LastName, a.CompanyName, a.CompanyCIF) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Materials lists materials whose name matches f.
func (r *Reader) Materials(ctx context.Context, f TextFilter) ([]domain.Material, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Material{}
	for _, m := range doc.Materials {
		if matchesQuery(f.Query, m.Name) {
			out = append(out, m)
		}
	}
	return out, nil
}

// AuditSummary is an audit with its derived totals.
type AuditSummary struct {
	domain.Audit
	Status                   domain.AuditStatus    `json:"status"`
	Visits                   []domain.Visit        `json:"visits"`
	MaterialLines            []domain.MaterialLine `json:"materialLines"`
	AuditedVisitsTotalAmount domain.Money          `json:"auditedVisitsTotalAmount"`
	AuditorSalaryAmount      domain.Money          `json:"auditorSalaryAmount"`
}

func summarizeAudit(doc *domain.Document, a domain.Audit) AuditSummary {
	return AuditSummary{
		Audit:                    cloneAudit(a),
		Status:                   a.Status(),
		Visits:                   domain.AuditVisits(doc, a),
		MaterialLines:            domain.AuditMaterialLines(doc, a),
		AuditedVisitsTotalAmount: domain.AuditVisitsTotal(doc, a),
		AuditorSalaryAmount:      domain.AuditSalaryAmount(doc, a),
	}
}

// AuditFilter narrows the audit list. From and To bound the creation date
// inclusively.
type AuditFilter struct {
	Status    domain.AuditStatus `json:"status"`
	AuditorID int                `json:"auditorId"`
	From      string             `json:"from"`
	To        string             `json:"to"`
}

// Audits lists audit summaries matching f.
func (r *Reader) Audits(ctx context.Context, f AuditFilter) ([]AuditSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	status := domain.AuditStatus(strings.ToUpper(string(f.Status)))
	out := []AuditSummary{}
	for _, a := range doc.Audits {
		switch {
		case status != "" && a.Status() != status:
			continue
		case f.AuditorID != 0 && a.AuditorID != f.AuditorID:
			continue
		case f.From != "" && a.CreationDate < f.From:
			continue
		case f.To != "" && a.CreationDate > f.To:
			continue
		}
		out = append(out, summarizeAudit(doc, a))
	}
	return out, nil
}

// Audit returns one audit summary. A finalized audit reports its frozen
// salary snapshot, an open one the live 20% of its visits.
func (r *Reader) Audit(ctx context.Context, id int) (AuditSummary, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return AuditSummary{}, err
	}
	a, ok := doc.Audit(id)
	if !ok {
		return AuditSummary{}, domain.NotFoundf(domain.EntityAudit, "audit %d not found", id)
	}
	return summarizeAudit(doc, *a), nil
}

// AuditAvailableVisits lists visits that could still be assigned to the audit:
// dated on or before its creation and not yet assigned. A finalized audit has
// none.
func (r *Reader) AuditAvailableVisits(ctx context.Context, id int) ([]domain.Visit, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := doc.Audit(id)
	if !ok {
		return nil, domain.NotFoundf(domain.EntityAudit, "audit %d not found", id)
	}
	out := []domain.Visit{}
	if a.Finalized() {
		return out, nil
	}
	for _, v := range doc.Visits {
		if domain.VisitAuditable(v, *a) && !a.HasVisit(v.VisitID) {
			out = append(out, cloneVisit(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VisitDate > out[j].VisitDate })
	return out, nil
}
