package core

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"sigco/pkg/domain"
)

// Transaction catalog names accepted by Submit and recorded in logs and
// metrics.
const (
	TxCreateResident               = "CreateResident"
	TxUpdateResident               = "UpdateResident"
	TxDeleteResident               = "DeleteResident"
	TxCreateManager                = "CreateManager"
	TxUpdateManager                = "UpdateManager"
	TxDeleteManager                = "DeleteManager"
	TxCreateVisit                  = "CreateVisit"
	TxUpdateVisit                  = "UpdateVisit"
	TxDeleteVisit                  = "DeleteVisit"
	TxCreateInvoiceAndSettleVisits = "CreateInvoiceAndSettleVisits"
	TxCreateTeacher                = "CreateTeacher"
	TxUpdateTeacher                = "UpdateTeacher"
	TxDeleteTeacher                = "DeleteTeacher"
	TxCreateCourse                 = "CreateCourse"
	TxUpdateCourse                 = "UpdateCourse"
	TxDeleteCourse                 = "DeleteCourse"
	TxCreateSubject                = "CreateSubject"
	TxUpdateSubject                = "UpdateSubject"
	TxDeleteSubject                = "DeleteSubject"
	TxEnrollResidentInCourse       = "EnrollResidentInCourse"
	TxDeleteEnrollment             = "DeleteEnrollment"
	TxCreateAuditor                = "CreateAuditor"
	TxUpdateAuditor                = "UpdateAuditor"
	TxDeleteAuditor                = "DeleteAuditor"
	TxCreateMaterial               = "CreateMaterial"
	TxUpdateMaterial               = "UpdateMaterial"
	TxDeleteMaterial               = "DeleteMaterial"
	TxCreateAudit                  = "CreateAudit"
	TxAssignVisitsToAudit          = "AssignVisitsToAudit"
	TxAssignMaterialsToAudit       = "AssignMaterialsToAudit"
	TxFinalizeAudit                = "FinalizeAudit"
)

type handler func(ctx context.Context, s *Service, args json.RawMessage) (any, error)

// catalog maps each name to its argument decoder. Update arguments carry the
// record key next to the patched fields, for example
// {"visitId": 1001, "description": "..."}; delete arguments carry only the key.
var catalog = map[string]handler{
	TxCreateResident: plain((*Service).CreateResident),
	TxUpdateResident: keyed("dni", (*Service).UpdateResident),
	TxDeleteResident: keyOnly("dni", (*Service).DeleteResident),

	TxCreateManager: plain((*Service).CreateManager),
	TxUpdateManager: keyed("managerId", (*Service).UpdateManager),
	TxDeleteManager: keyOnly("managerId", (*Service).DeleteManager),

	TxCreateVisit: plain((*Service).CreateVisit),
	TxUpdateVisit: keyed("visitId", (*Service).UpdateVisit),
	TxDeleteVisit: keyOnly("visitId", (*Service).DeleteVisit),

	TxCreateInvoiceAndSettleVisits: plain((*Service).CreateInvoiceAndSettleVisits),

	TxCreateTeacher: plain((*Service).CreateTeacher),
	TxUpdateTeacher: keyed("teacherId", (*Service).UpdateTeacher),
	TxDeleteTeacher: keyOnly("teacherId", (*Service).DeleteTeacher),

	TxCreateCourse: plain((*Service).CreateCourse),
	TxUpdateCourse: keyed("courseId", (*Service).UpdateCourse),
	TxDeleteCourse: keyOnly("courseId", (*Service).DeleteCourse),

	TxCreateSubject: plain((*Service).CreateSubject),
	TxUpdateSubject: keyed("subjectId", (*Service).UpdateSubject),
	TxDeleteSubject: keyOnly("subjectId", (*Service).DeleteSubject),

	TxEnrollResidentInCourse: plain((*Service).EnrollResidentInCourse),
	TxDeleteEnrollment:       keyOnly("enrollmentId", (*Service).DeleteEnrollment),

	TxCreateAuditor: plain((*Service).CreateAuditor),
	TxUpdateAuditor: keyed("auditorId", (*Service).UpdateAuditor),
	TxDeleteAuditor: keyOnly("auditorId", (*Service).DeleteAuditor),

	TxCreateMaterial: plain((*Service).CreateMaterial),
	TxUpdateMaterial: keyed("materialId", (*Service).UpdateMaterial),
	TxDeleteMaterial: keyOnly("materialId", (*Service).DeleteMaterial),

	TxCreateAudit:            plain((*Service).CreateAudit),
	TxAssignVisitsToAudit:    plain((*Service).AssignVisitsToAudit),
	TxAssignMaterialsToAudit: plain((*Service).AssignMaterialsToAudit),
	TxFinalizeAudit:          plain((*Service).FinalizeAudit),
}

// TransactionNames lists the catalog in lexical order.
func TransactionNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Submit decodes args for the named catalog entry and runs it. Unknown names
// and undecodable arguments are InvalidInput.
func (s *Service) Submit(ctx context.Context, name string, args json.RawMessage) (any, error) {
	h, ok := catalog[name]
	if !ok {
		return nil, domain.InvalidInputf("unknown transaction %q", name)
	}
	return h(ctx, s, args)
}

func decodeArgs[A any](args json.RawMessage) (A, error) {
	var out A
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, &out); err != nil {
		return out, domain.InvalidInputf("decode arguments: %v", err)
	}
	return out, nil
}

func decodeKey[K any](args json.RawMessage, field string) (K, error) {
	var key K
	fields, err := decodeArgs[map[string]json.RawMessage](args)
	if err != nil {
		return key, err
	}
	raw, ok := fields[field]
	if !ok || string(raw) == "null" {
		return key, domain.InvalidInputf("%s is required", field)
	}
	if err := json.Unmarshal(raw, &key); err != nil {
		return key, domain.InvalidInputf("decode %s: %v", field, err)
	}
	return key, nil
}

func plain[A, T any](op func(*Service, context.Context, A) (T, error)) handler {
	return func(ctx context.Context, s *Service, args json.RawMessage) (any, error) {
		in, err := decodeArgs[A](args)
		if err != nil {
			return nil, err
		}
		return op(s, ctx, in)
	}
}

func keyed[K, P, T any](field string, op func(*Service, context.Context, K, P) (T, error)) handler {
	return func(ctx context.Context, s *Service, args json.RawMessage) (any, error) {
		key, err := decodeKey[K](args, field)
		if err != nil {
			return nil, err
		}
		p, err := decodeArgs[P](args)
		if err != nil {
			return nil, err
		}
		return op(s, ctx, key, p)
	}
}

func keyOnly[K, T any](field string, op func(*Service, context.Context, K) (T, error)) handler {
	return func(ctx context.Context, s *Service, args json.RawMessage) (any, error) {
		key, err := decodeKey[K](args, field)
		if err != nil {
			return nil, err
		}
		return op(s, ctx, key)
	}
}
