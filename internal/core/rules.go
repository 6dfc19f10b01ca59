package core

import "sigco/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewVisitPaidConsistencyRule())
	engine.Register(NewInvoiceTotalsRule())
	engine.Register(NewCourseCapacityRule())
	engine.Register(NewAuditAssignmentsRule())
	engine.Register(NewReferentialIntegrityRule())
	return engine
}
