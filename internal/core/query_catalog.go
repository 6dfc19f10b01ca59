package core

import (
	"context"
	"encoding/json"
	"sort"

	"sigco/pkg/domain"
)

type queryHandler func(ctx context.Context, r *Reader, args json.RawMessage) (any, error)

var queries = map[string]queryHandler{
	"residents":            filtered((*Reader).Residents),
	"resident":             byKey("dni", (*Reader).Resident),
	"residentUnpaidVisits": byKey("dni", (*Reader).ResidentUnpaidVisits),
	"residentCourses":      byKey("dni", (*Reader).ResidentCourses),
	"managers":             listing((*Reader).Managers),
	"visits":               filtered((*Reader).Visits),
	"visit":                byKey("visitId", (*Reader).Visit),
	"invoices":             filtered((*Reader).Invoices),
	"invoice":              byKey("invoiceId", (*Reader).Invoice),
	"teachers":             filtered((*Reader).Teachers),
	"courses":              filtered((*Reader).Courses),
	"course":               byKey("courseId", (*Reader).Course),
	"courseResidents":      byKey("courseId", (*Reader).CourseResidents),
	"subjects":             subjectsQuery,
	"enrollments":          filtered((*Reader).Enrollments),
	"auditors":             filtered((*Reader).Auditors),
	"materials":            filtered((*Reader).Materials),
	"audits":               filtered((*Reader).Audits),
	"audit":                byKey("auditId", (*Reader).Audit),
	"auditAvailableVisits": byKey("auditId", (*Reader).AuditAvailableVisits),
}

// QueryNames lists the read queries accepted by Reader.Query.
func QueryNames() []string {
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query runs the named read query with JSON arguments.
func (r *Reader) Query(ctx context.Context, name string, args json.RawMessage) (any, error) {
	q, ok := queries[name]
	if !ok {
		return nil, domain.InvalidInputf("unknown query %q", name)
	}
	return q(ctx, r, args)
}

func listing[T any](fn func(*Reader, context.Context) (T, error)) queryHandler {
	return func(ctx context.Context, r *Reader, _ json.RawMessage) (any, error) {
		return fn(r, ctx)
	}
}

func filtered[F, T any](fn func(*Reader, context.Context, F) (T, error)) queryHandler {
	return func(ctx context.Context, r *Reader, args json.RawMessage) (any, error) {
		f, err := decodeArgs[F](args)
		if err != nil {
			return nil, err
		}
		return fn(r, ctx, f)
	}
}

func byKey[K, T any](field string, fn func(*Reader, context.Context, K) (T, error)) queryHandler {
	return func(ctx context.Context, r *Reader, args json.RawMessage) (any, error) {
		key, err := decodeKey[K](args, field)
		if err != nil {
			return nil, err
		}
		return fn(r, ctx, key)
	}
}

func subjectsQuery(ctx context.Context, r *Reader, args json.RawMessage) (any, error) {
	in, err := decodeArgs[struct {
		CourseID int `json:"courseId"`
	}](args)
	if err != nil {
		return nil, err
	}
	return r.Subjects(ctx, in.CourseID)
}
