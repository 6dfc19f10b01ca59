package core

import (
	"strings"

	"sigco/pkg/domain"
)

// TeacherPatch lists the teacher fields an update may change.
type TeacherPatch struct {
	FirstName *string       `json:"firstName"`
	LastName  *string       `json:"lastName"`
	Address   *string       `json:"address"`
	Phone     *string       `json:"phone"`
	Salary    *domain.Money `json:"salary"`
}

func createTeacher(doc *domain.Document, in domain.Teacher) (domain.Teacher, error) {
	in.TeacherID = domain.NextID(doc, domain.CounterTeacher)
	in.Salary = in.Salary.Rounded()
	doc.Teachers = append(doc.Teachers, in)
	return in, nil
}

func updateTeacher(doc *domain.Document, id int, p TeacherPatch) (domain.Teacher, error) {
	t, ok := doc.Teacher(id)
	if !ok {
		return domain.Teacher{}, domain.NotFoundf(domain.EntityTeacher, "teacher %d not found", id)
	}
	patchString(&t.FirstName, p.FirstName)
	patchString(&t.LastName, p.LastName)
	patchString(&t.Address, p.Address)
	patchString(&t.Phone, p.Phone)
	if p.Salary != nil {
		t.Salary = p.Salary.Rounded()
	}
	return *t, nil
}

func deleteTeacher(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Teacher(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityTeacher, "teacher %d not found", id)
	}
	for _, s := range doc.Subjects {
		if s.TeacherID == id {
			return Deleted{}, domain.Conflictf(domain.EntityTeacher, "teacher %d teaches subject %d", id, s.SubjectID)
		}
	}
	doc.Teachers = removeWhere(doc.Teachers, func(t domain.Teacher) bool { return t.TeacherID == id })
	return Deleted{OK: true}, nil
}

// CoursePatch lists the course fields an update may change.
type CoursePatch struct {
	Name         *string       `json:"name"`
	Price        *domain.Money `json:"price"`
	MaxResidents *int          `json:"maxResidents"`
	StartDate    *string       `json:"startDate"`
	EndDate      *string       `json:"endDate"`
}

func createCourse(doc *domain.Document, in domain.Course) (domain.Course, error) {
	in.CourseID = domain.NextID(doc, domain.CounterCourse)
	in.Name = strings.TrimSpace(in.Name)
	in.Price = in.Price.Rounded()
	doc.Courses = append(doc.Courses, in)
	return in, nil
}

func updateCourse(doc *domain.Document, id int, p CoursePatch) (domain.Course, error) {
	c, ok := doc.Course(id)
	if !ok {
		return domain.Course{}, domain.NotFoundf(domain.EntityCourse, "course %d not found", id)
	}
	start, end := c.StartDate, c.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	if start != "" && end != "" && end < start {
		return domain.Course{}, domain.Conflictf(domain.EntityCourse, "course %d would end %s before it starts %s", id, end, start)
	}
	if p.MaxResidents != nil {
		if enrolled := domain.EnrolledCount(doc, id); *p.MaxResidents < enrolled {
			return domain.Course{}, domain.Conflictf(domain.EntityCourse, "course %d has %d enrollments, cannot shrink to %d", id, enrolled, *p.MaxResidents)
		}
		c.MaxResidents = *p.MaxResidents
	}
	patchString(&c.Name, p.Name)
	if p.Price != nil {
		c.Price = p.Price.Rounded()
	}
	c.StartDate, c.EndDate = start, end
	return *c, nil
}

func deleteCourse(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Course(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntityCourse, "course %d not found", id)
	}
	for _, s := range doc.Subjects {
		if s.CourseID == id {
			return Deleted{}, domain.Conflictf(domain.EntityCourse, "course %d has subject %d", id, s.SubjectID)
		}
	}
	if n := domain.EnrolledCount(doc, id); n > 0 {
		return Deleted{}, domain.Conflictf(domain.EntityCourse, "course %d has %d enrollments", id, n)
	}
	doc.Courses = removeWhere(doc.Courses, func(c domain.Course) bool { return c.CourseID == id })
	return Deleted{OK: true}, nil
}

// SubjectPatch lists the subject fields an update may change.
type SubjectPatch struct {
	CourseID  *int    `json:"courseId"`
	TeacherID *int    `json:"teacherId"`
	Name      *string `json:"name"`
	Hours     *int    `json:"hours"`
}

func subjectNameTaken(doc *domain.Document, courseID int, name string, except int) bool {
	for _, s := range doc.Subjects {
		if s.SubjectID != except && s.CourseID == courseID && domain.SameName(s.Name, name) {
			return true
		}
	}
	return false
}

func checkSubjectRefs(doc *domain.Document, courseID, teacherID int) error {
	if _, ok := doc.Course(courseID); !ok {
		return domain.NotFoundf(domain.EntityCourse, "course %d not found", courseID)
	}
	if _, ok := doc.Teacher(teacherID); !ok {
		return domain.NotFoundf(domain.EntityTeacher, "teacher %d not found", teacherID)
	}
	return nil
}

func createSubject(doc *domain.Document, in domain.Subject) (domain.Subject, error) {
	if err := checkSubjectRefs(doc, in.CourseID, in.TeacherID); err != nil {
		return domain.Subject{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if subjectNameTaken(doc, in.CourseID, in.Name, 0) {
		return domain.Subject{}, domain.Conflictf(domain.EntitySubject, "course %d already has subject %q", in.CourseID, in.Name)
	}
	in.SubjectID = domain.NextID(doc, domain.CounterSubject)
	doc.Subjects = append(doc.Subjects, in)
	return in, nil
}

func updateSubject(doc *domain.Document, id int, p SubjectPatch) (domain.Subject, error) {
	s, ok := doc.Subject(id)
	if !ok {
		return domain.Subject{}, domain.NotFoundf(domain.EntitySubject, "subject %d not found", id)
	}
	next := *s
	if p.CourseID != nil {
		next.CourseID = *p.CourseID
	}
	if p.TeacherID != nil {
		next.TeacherID = *p.TeacherID
	}
	patchString(&next.Name, p.Name)
	if p.Hours != nil {
		next.Hours = *p.Hours
	}
	if err := checkSubjectRefs(doc, next.CourseID, next.TeacherID); err != nil {
		return domain.Subject{}, err
	}
	if subjectNameTaken(doc, next.CourseID, next.Name, id) {
		return domain.Subject{}, domain.Conflictf(domain.EntitySubject, "course %d already has subject %q", next.CourseID, next.Name)
	}
	*s = next
	return next, nil
}

func deleteSubject(doc *domain.Document, id int) (Deleted, error) {
	if _, ok := doc.Subject(id); !ok {
		return Deleted{}, domain.NotFoundf(domain.EntitySubject, "subject %d not found", id)
	}
	doc.Subjects = removeWhere(doc.Subjects, func(s domain.Subject) bool { return s.SubjectID == id })
	return Deleted{OK: true}, nil
}
