package core

import (
	"context"
	"fmt"
	"strconv"

	"sigco/pkg/domain"
)

// NewCourseCapacityRule returns the rule enforcing course seat limits and
// one enrollment per resident and course.
func NewCourseCapacityRule() domain.Rule {
	return courseCapacityRule{}
}

type courseCapacityRule struct{}

func (courseCapacityRule) Name() string { return "course_capacity" }

func (r courseCapacityRule) Evaluate(_ context.Context, doc *domain.Document) (domain.Result, error) {
	type seat struct {
		dni      string
		courseID int
	}
	occupancy := make(map[int]int)
	seen := make(map[seat]struct{})
	res := domain.Result{}
	for _, e := range doc.Enrollments {
		occupancy[e.CourseID]++
		key := seat{e.ResidentDNI, e.CourseID}
		if _, dup := seen[key]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("resident %s enrolled twice in course %d", e.ResidentDNI, e.CourseID),
				Entity:   domain.EntityEnrollment,
				EntityID: strconv.Itoa(e.EnrollmentID),
			})
		}
		seen[key] = struct{}{}
	}
	for _, c := range doc.Courses {
		if count := occupancy[c.CourseID]; count > c.MaxResidents {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("course %s (%d) over capacity: %d/%d residents", c.Name, c.CourseID, count, c.MaxResidents),
				Entity:   domain.EntityCourse,
				EntityID: strconv.Itoa(c.CourseID),
			})
		}
	}
	return res, nil
}
