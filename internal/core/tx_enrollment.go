package core

import "sigco/pkg/domain"

// EnrollmentRequest asks for a seat in a course.
type EnrollmentRequest struct {
	ResidentDNI    string `json:"residentDni"`
	CourseID       int    `json:"courseId"`
	EnrollmentDate string `json:"enrollmentDate"`
}

// enrollResidentInCourse takes a seat if one is free. Capacity is counted from
// the live enrollments of the loaded document; the first committed request
// wins the last seat.
func enrollResidentInCourse(doc *domain.Document, in EnrollmentRequest) (domain.Enrollment, error) {
	if _, ok := doc.Resident(in.ResidentDNI); !ok {
		return domain.Enrollment{}, domain.NotFoundf(domain.EntityResident, "resident %s not found", in.ResidentDNI)
	}
	course, ok := doc.Course(in.CourseID)
	if !ok {
		return domain.Enrollment{}, domain.NotFoundf(domain.EntityCourse, "course %d not found", in.CourseID)
	}
	if domain.IsEnrolled(doc, in.ResidentDNI, in.CourseID) {
		return domain.Enrollment{}, domain.Conflictf(domain.EntityEnrollment, "resident %s is already enrolled in course %d", in.ResidentDNI, in.CourseID)
	}
	if !domain.HasCapacity(doc, *course) {
		return domain.Enrollment{}, domain.Conflictf(domain.EntityCourse, "course %d is full (%d/%d)", course.CourseID, domain.EnrolledCount(doc, course.CourseID), course.MaxResidents)
	}
	enrollment := domain.Enrollment{
		EnrollmentID:   domain.NextID(doc, domain.CounterEnrollment),
		ResidentDNI:    in.ResidentDNI,
		CourseID:       in.CourseID,
		EnrollmentDate: in.EnrollmentDate,
	}
	doc.Enrollments = append(doc.Enrollments, enrollment)
	return enrollment, nil
}

func deleteEnrollment(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Enrollment(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityEnrollment, "enrollment %d not found", id)
	}
	doc.Enrollments = removeWhere(doc.Enrollments, func(e domain.Enrollment) bool { return e.EnrollmentID == id })
	return Deleted{OK: true}, nil
}

// removeWhere filters s in place, keeping elements for which drop is false.
func removeWhere[T any](s []T, drop func(T) bool) []T {
	out := s[:0]
	for _, x := range s {
		if !drop(x) {
			out = append(out, x)
		}
	}
	return out
}
