package core

import (
	"context"
	"testing"

	"sigco/pkg/domain"
)

func strPtr(s string) *string { return &s }

func TestResidentValidationAndGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bad := resident(testDNI, "Ana")
	bad.PostalCode = "2800"
	_, err := h.svc.CreateResident(ctx, bad)
	requireKind(t, err, domain.KindInvalidInput)

	bad = resident(testDNI, "Ana")
	bad.Phone = "12ab"
	_, err = h.svc.CreateResident(ctx, bad)
	requireKind(t, err, domain.KindInvalidInput)

	padded := resident("  "+testDNI+" ", "  Ana ")
	r, err := h.svc.CreateResident(ctx, padded)
	if err != nil {
		t.Fatalf("create resident: %v", err)
	}
	if r.DNI != testDNI || r.FirstName != "Ana" {
		t.Fatalf("fields not trimmed: %+v", r)
	}
	_, err = h.svc.CreateResident(ctx, resident(testDNI, "Eva"))
	requireKind(t, err, domain.KindConflict)

	r, err = h.svc.UpdateResident(ctx, testDNI, ResidentPatch{City: strPtr(" Toledo ")})
	if err != nil {
		t.Fatalf("update resident: %v", err)
	}
	if r.City != "Toledo" || r.FirstName != "Ana" {
		t.Fatalf("unexpected patch result %+v", r)
	}
	_, err = h.svc.UpdateResident(ctx, testDNI, ResidentPatch{PostalCode: strPtr("abc")})
	requireKind(t, err, domain.KindInvalidInput)
	_, err = h.svc.UpdateResident(ctx, otherDNI, ResidentPatch{City: strPtr("Toledo")})
	requireKind(t, err, domain.KindNotFound)

	m := h.mustManager(t, "Marta")
	h.mustVisit(t, testDNI, m.ManagerID, "2024-01-05", "10")
	_, err = h.svc.DeleteResident(ctx, testDNI)
	requireKind(t, err, domain.KindConflict)

	h.mustResident(t, otherDNI)
	if _, err := h.svc.DeleteResident(ctx, otherDNI); err != nil {
		t.Fatalf("delete resident: %v", err)
	}
}

func TestManagerNamesAreUniqueIgnoringCase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	marta := h.mustManager(t, "Marta")
	luis := h.mustManager(t, "Luis")

	_, err := h.svc.CreateManager(ctx, domain.Manager{Name: " MARTA "})
	requireKind(t, err, domain.KindConflict)
	_, err = h.svc.UpdateManager(ctx, luis.ManagerID, ManagerPatch{Name: strPtr("marta")})
	requireKind(t, err, domain.KindConflict)
	if _, err := h.svc.UpdateManager(ctx, marta.ManagerID, ManagerPatch{Name: strPtr("MARTA")}); err != nil {
		t.Fatalf("renaming to own name must pass: %v", err)
	}
	_, err = h.svc.CreateManager(ctx, domain.Manager{Name: "  "})
	requireKind(t, err, domain.KindInvalidInput)

	h.mustResident(t, testDNI)
	h.mustVisit(t, testDNI, luis.ManagerID, "2024-01-05", "10")
	_, err = h.svc.DeleteManager(ctx, luis.ManagerID)
	requireKind(t, err, domain.KindConflict)
	if _, err := h.svc.DeleteManager(ctx, marta.ManagerID); err != nil {
		t.Fatalf("delete manager: %v", err)
	}
}

func TestVisitLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustResident(t, testDNI)
	h.mustResident(t, otherDNI)
	m := h.mustManager(t, "Marta")

	_, err := h.svc.CreateVisit(ctx, VisitRequest{ResidentDNI: testDNI, ManagerID: m.ManagerID, VisitDate: "2024-01-05", Description: "abc", Amount: domain.MustMoney("10")})
	requireKind(t, err, domain.KindInvalidInput)
	_, err = h.svc.CreateVisit(ctx, VisitRequest{ResidentDNI: testDNI, ManagerID: m.ManagerID, VisitDate: "2024-01-05", Description: "Routine", Amount: domain.MustMoney("0")})
	requireKind(t, err, domain.KindInvalidInput)
	_, err = h.svc.CreateVisit(ctx, VisitRequest{ResidentDNI: "nobody", ManagerID: m.ManagerID, VisitDate: "2024-01-05", Description: "Routine", Amount: domain.MustMoney("10")})
	requireKind(t, err, domain.KindNotFound)
	_, err = h.svc.CreateVisit(ctx, VisitRequest{ResidentDNI: testDNI, ManagerID: 77, VisitDate: "2024-01-05", Description: "Routine", Amount: domain.MustMoney("10")})
	requireKind(t, err, domain.KindNotFound)

	v := h.mustVisit(t, testDNI, m.ManagerID, "2024-01-05", "10.005")
	if v.VisitID != domain.VisitIDFloor+1 || v.Status != domain.VisitUnpaid || !v.Amount.Equal(domain.MustMoney("10.01")) {
		t.Fatalf("unexpected visit %+v", v)
	}

	moved, err := h.svc.UpdateVisit(ctx, v.VisitID, VisitPatch{ResidentDNI: strPtr(otherDNI)})
	if err != nil {
		t.Fatalf("move unpaid visit: %v", err)
	}
	if moved.ResidentDNI != otherDNI {
		t.Fatalf("resident not updated")
	}

	if _, err := h.svc.CreateInvoiceAndSettleVisits(ctx, InvoiceRequest{ResidentDNI: otherDNI, CreationDate: "2024-02-01"}); err != nil {
		t.Fatalf("invoice: %v", err)
	}
	amount := domain.MustMoney("99")
	_, err = h.svc.UpdateVisit(ctx, v.VisitID, VisitPatch{Amount: &amount})
	requireKind(t, err, domain.KindConflict)
	paid, err := h.svc.UpdateVisit(ctx, v.VisitID, VisitPatch{Description: strPtr("Follow-up call")})
	if err != nil {
		t.Fatalf("paid visit description update: %v", err)
	}
	if paid.Description != "Follow-up call" || !paid.Paid() {
		t.Fatalf("unexpected paid visit %+v", paid)
	}
	resent, err := h.svc.UpdateVisit(ctx, v.VisitID, VisitPatch{
		ResidentDNI: strPtr(otherDNI),
		ManagerID:   &m.ManagerID,
		VisitDate:   strPtr(v.VisitDate),
		Amount:      &v.Amount,
		Description: strPtr("Second follow-up"),
	})
	if err != nil {
		t.Fatalf("paid visit with unchanged billing fields: %v", err)
	}
	if resent.Description != "Second follow-up" || !resent.Paid() {
		t.Fatalf("unexpected paid visit %+v", resent)
	}
	_, err = h.svc.UpdateVisit(ctx, v.VisitID, VisitPatch{VisitDate: strPtr("2024-01-07"), Description: strPtr("Moved visit")})
	requireKind(t, err, domain.KindConflict)
	_, err = h.svc.DeleteVisit(ctx, v.VisitID)
	requireKind(t, err, domain.KindConflict)

	unpaid := h.mustVisit(t, testDNI, m.ManagerID, "2024-01-06", "5")
	if _, err := h.svc.DeleteVisit(ctx, unpaid.VisitID); err != nil {
		t.Fatalf("delete unpaid visit: %v", err)
	}
	_, err = h.svc.DeleteVisit(ctx, unpaid.VisitID)
	requireKind(t, err, domain.KindNotFound)
}

func TestCoursesTeachersAndSubjects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher, err := h.svc.CreateTeacher(ctx, domain.Teacher{FirstName: "Rosa", LastName: "Diaz", Salary: domain.MustMoney("1500")})
	if err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	c := h.mustCourse(t, 2)

	_, err = h.svc.CreateSubject(ctx, domain.Subject{CourseID: c.CourseID, TeacherID: 55, Name: "Clay", Hours: 4})
	requireKind(t, err, domain.KindNotFound)
	s, err := h.svc.CreateSubject(ctx, domain.Subject{CourseID: c.CourseID, TeacherID: teacher.TeacherID, Name: "Clay", Hours: 4})
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	_, err = h.svc.CreateSubject(ctx, domain.Subject{CourseID: c.CourseID, TeacherID: teacher.TeacherID, Name: "clay ", Hours: 2})
	requireKind(t, err, domain.KindConflict)
	if _, err := h.svc.CreateSubject(ctx, domain.Subject{CourseID: c.CourseID, TeacherID: teacher.TeacherID, Name: "Glaze", Hours: 3}); err != nil {
		t.Fatalf("create second subject: %v", err)
	}

	summary, err := h.svc.Reader().Course(ctx, c.CourseID)
	if err != nil {
		t.Fatalf("course summary: %v", err)
	}
	if summary.DurationHours != 7 || !summary.HasCapacity || summary.EnrolledCount != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	h.mustResident(t, testDNI)
	h.mustResident(t, otherDNI)
	for _, dni := range []string{testDNI, otherDNI} {
		if _, err := h.svc.EnrollResidentInCourse(ctx, EnrollmentRequest{ResidentDNI: dni, CourseID: c.CourseID, EnrollmentDate: "2024-01-02"}); err != nil {
			t.Fatalf("enroll %s: %v", dni, err)
		}
	}
	one := 1
	_, err = h.svc.UpdateCourse(ctx, c.CourseID, CoursePatch{MaxResidents: &one})
	requireKind(t, err, domain.KindConflict)
	_, err = h.svc.UpdateCourse(ctx, c.CourseID, CoursePatch{EndDate: strPtr("2023-01-01")})
	requireKind(t, err, domain.KindConflict)
	_, err = h.svc.UpdateCourse(ctx, c.CourseID, CoursePatch{StartDate: strPtr("2024-04-01")})
	requireKind(t, err, domain.KindConflict)
	moved, err := h.svc.UpdateCourse(ctx, c.CourseID, CoursePatch{StartDate: strPtr("2024-02-01"), EndDate: strPtr("2024-05-01")})
	if err != nil {
		t.Fatalf("move course window: %v", err)
	}
	if moved.StartDate != "2024-02-01" || moved.EndDate != "2024-05-01" {
		t.Fatalf("unexpected course window %+v", moved)
	}

	_, err = h.svc.DeleteTeacher(ctx, teacher.TeacherID)
	requireKind(t, err, domain.KindConflict)
	_, err = h.svc.DeleteCourse(ctx, c.CourseID)
	requireKind(t, err, domain.KindConflict)

	if _, err := h.svc.UpdateSubject(ctx, s.SubjectID, SubjectPatch{Name: strPtr("Glaze")}); !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("expected rename conflict, got %v", err)
	}
	if _, err := h.svc.DeleteSubject(ctx, s.SubjectID); err != nil {
		t.Fatalf("delete subject: %v", err)
	}
}
