package core

import (
	"context"
	"strings"

	"sigco/pkg/domain"
)

// Service exposes the transaction catalog as typed operations. Every
// operation validates its arguments and then runs as one transaction on the
// engine.
type Service struct {
	engine *Engine
}

// NewService constructs a service that submits to engine.
func NewService(engine *Engine) *Service {
	return &Service{engine: engine}
}

// Engine returns the engine transactions are submitted to.
func (s *Service) Engine() *Engine { return s.engine }

// Reader returns a read accessor over the engine's store.
func (s *Service) Reader() *Reader { return NewReader(s.engine.Store()) }

func submit[A, T any](ctx context.Context, s *Service, name string, validate func(A) error, fn func(*domain.Document, A) (T, error), in A) (T, error) {
	if validate != nil {
		if err := validate(in); err != nil {
			var zero T
			return zero, err
		}
	}
	return Run(ctx, s.engine, name, func(doc *domain.Document) (T, error) { return fn(doc, in) })
}

// patch pairs a record key with the fields an update changes.
type patch[K, P any] struct {
	key K
	p   P
}

func submitPatch[K, P, T any](ctx context.Context, s *Service, name string, validate func(P) error, fn func(*domain.Document, K, P) (T, error), key K, p P) (T, error) {
	return submit(ctx, s, name,
		func(in patch[K, P]) error { return validate(in.p) },
		func(doc *domain.Document, in patch[K, P]) (T, error) { return fn(doc, in.key, in.p) },
		patch[K, P]{key: key, p: p})
}

func submitDelete[K any](ctx context.Context, s *Service, name string, fn func(*domain.Document, K) (Deleted, error), key K) (Deleted, error) {
	return Run(ctx, s.engine, name, func(doc *domain.Document) (Deleted, error) { return fn(doc, key) })
}

// CreateResident registers a resident under its DNI.
func (s *Service) CreateResident(ctx context.Context, r domain.Resident) (domain.Resident, error) {
	return submit(ctx, s, TxCreateResident, validateResident, createResident, trimResident(r))
}

// UpdateResident patches a resident's contact data.
func (s *Service) UpdateResident(ctx context.Context, dni string, p ResidentPatch) (domain.Resident, error) {
	return submitPatch(ctx, s, TxUpdateResident, validateResidentPatch, updateResident, strings.TrimSpace(dni), p)
}

// DeleteResident removes a resident nothing references.
func (s *Service) DeleteResident(ctx context.Context, dni string) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteResident, deleteResident, strings.TrimSpace(dni))
}

// CreateManager registers a manager.
func (s *Service) CreateManager(ctx context.Context, m domain.Manager) (domain.Manager, error) {
	return submit(ctx, s, TxCreateManager, func(m domain.Manager) error { return validateManagerName(m.Name) }, createManager, m)
}

// UpdateManager renames a manager.
func (s *Service) UpdateManager(ctx context.Context, id int, p ManagerPatch) (domain.Manager, error) {
	return submitPatch(ctx, s, TxUpdateManager, func(p ManagerPatch) error {
		if p.Name == nil {
			return nil
		}
		return validateManagerName(*p.Name)
	}, updateManager, id, p)
}

// DeleteManager removes a manager without visits.
func (s *Service) DeleteManager(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteManager, deleteManager, id)
}

// CreateVisit registers an unpaid visit.
func (s *Service) CreateVisit(ctx context.Context, in VisitRequest) (domain.Visit, error) {
	in.ResidentDNI = strings.TrimSpace(in.ResidentDNI)
	return submit(ctx, s, TxCreateVisit, validateVisit, createVisit, in)
}

// UpdateVisit patches a visit.
func (s *Service) UpdateVisit(ctx context.Context, id int, p VisitPatch) (domain.Visit, error) {
	return submitPatch(ctx, s, TxUpdateVisit, validateVisitPatch, updateVisit, id, p)
}

// DeleteVisit removes an unpaid, unaudited visit.
func (s *Service) DeleteVisit(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteVisit, deleteVisit, id)
}

// CreateInvoiceAndSettleVisits bills all unpaid visits of a resident.
func (s *Service) CreateInvoiceAndSettleVisits(ctx context.Context, in InvoiceRequest) (domain.Invoice, error) {
	in.ResidentDNI = strings.TrimSpace(in.ResidentDNI)
	return submit(ctx, s, TxCreateInvoiceAndSettleVisits, validateInvoice, createInvoiceAndSettleVisits, in)
}

// CreateTeacher registers a teacher.
func (s *Service) CreateTeacher(ctx context.Context, t domain.Teacher) (domain.Teacher, error) {
	return submit(ctx, s, TxCreateTeacher, validateTeacher, createTeacher, t)
}

// UpdateTeacher patches a teacher.
func (s *Service) UpdateTeacher(ctx context.Context, id int, p TeacherPatch) (domain.Teacher, error) {
	return submitPatch(ctx, s, TxUpdateTeacher, validateTeacherPatch, updateTeacher, id, p)
}

// DeleteTeacher removes a teacher without subjects.
func (s *Service) DeleteTeacher(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteTeacher, deleteTeacher, id)
}

// CreateCourse registers a course.
func (s *Service) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	return submit(ctx, s, TxCreateCourse, validateCourse, createCourse, c)
}

// UpdateCourse patches a course.
func (s *Service) UpdateCourse(ctx context.Context, id int, p CoursePatch) (domain.Course, error) {
	return submitPatch(ctx, s, TxUpdateCourse, validateCoursePatch, updateCourse, id, p)
}

// DeleteCourse removes a course without subjects or enrollments.
func (s *Service) DeleteCourse(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteCourse, deleteCourse, id)
}

// CreateSubject adds a subject to a course.
func (s *Service) CreateSubject(ctx context.Context, sub domain.Subject) (domain.Subject, error) {
	return submit(ctx, s, TxCreateSubject, validateSubject, createSubject, sub)
}

// UpdateSubject patches a subject.
func (s *Service) UpdateSubject(ctx context.Context, id int, p SubjectPatch) (domain.Subject, error) {
	return submitPatch(ctx, s, TxUpdateSubject, validateSubjectPatch, updateSubject, id, p)
}

// DeleteSubject removes a subject.
func (s *Service) DeleteSubject(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteSubject, deleteSubject, id)
}

// EnrollResidentInCourse takes a course seat for a resident.
func (s *Service) EnrollResidentInCourse(ctx context.Context, in EnrollmentRequest) (domain.Enrollment, error) {
	in.ResidentDNI = strings.TrimSpace(in.ResidentDNI)
	return submit(ctx, s, TxEnrollResidentInCourse, validateEnrollment, enrollResidentInCourse, in)
}

// DeleteEnrollment frees a course seat.
func (s *Service) DeleteEnrollment(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteEnrollment, deleteEnrollment, id)
}

// CreateAuditor registers an auditor.
func (s *Service) CreateAuditor(ctx context.Context, a domain.Auditor) (domain.Auditor, error) {
	return submit(ctx, s, TxCreateAuditor, validateAuditor, createAuditor, a)
}

// UpdateAuditor patches an auditor.
func (s *Service) UpdateAuditor(ctx context.Context, id int, p AuditorPatch) (domain.Auditor, error) {
	return submitPatch(ctx, s, TxUpdateAuditor, validateAuditorPatch, updateAuditor, id, p)
}

// DeleteAuditor removes an auditor without audits.
func (s *Service) DeleteAuditor(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteAuditor, deleteAuditor, id)
}

// CreateMaterial registers a material.
func (s *Service) CreateMaterial(ctx context.Context, m domain.Material) (domain.Material, error) {
	return submit(ctx, s, TxCreateMaterial, validateMaterial, createMaterial, m)
}

// UpdateMaterial patches a material.
func (s *Service) UpdateMaterial(ctx context.Context, id int, p MaterialPatch) (domain.Material, error) {
	return submitPatch(ctx, s, TxUpdateMaterial, validateMaterialPatch, updateMaterial, id, p)
}

// DeleteMaterial removes a material no audit lists.
func (s *Service) DeleteMaterial(ctx context.Context, id int) (Deleted, error) {
	return submitDelete(ctx, s, TxDeleteMaterial, deleteMaterial, id)
}

// CreateAudit opens an audit.
func (s *Service) CreateAudit(ctx context.Context, in AuditRequest) (domain.Audit, error) {
	return submit(ctx, s, TxCreateAudit, validateAudit, createAudit, in)
}

// AssignVisitsToAudit adds visits to an open audit.
func (s *Service) AssignVisitsToAudit(ctx context.Context, in AssignVisitsRequest) (domain.Audit, error) {
	return submit(ctx, s, TxAssignVisitsToAudit, validateAssignVisits, assignVisitsToAudit, in)
}

// AssignMaterialsToAudit adds material quantities to an open audit.
func (s *Service) AssignMaterialsToAudit(ctx context.Context, in AssignMaterialsRequest) (domain.Audit, error) {
	return submit(ctx, s, TxAssignMaterialsToAudit, validateAssignMaterials, assignMaterialsToAudit, in)
}

// FinalizeAudit closes an audit and freezes the auditor's salary.
func (s *Service) FinalizeAudit(ctx context.Context, in FinalizeAuditRequest) (domain.Audit, error) {
	return submit(ctx, s, TxFinalizeAudit, validateFinalize, finalizeAudit, in)
}
