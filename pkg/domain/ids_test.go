package domain

import "testing"

func TestNextIDStartsAboveFloors(t *testing.T) {
	doc := NewDocument()
	if id := NextID(&doc, CounterVisit); id != VisitIDFloor+1 {
		t.Fatalf("expected first visit id %d, got %d", VisitIDFloor+1, id)
	}
	if id := NextID(&doc, CounterInvoice); id != InvoiceIDFloor+1 {
		t.Fatalf("expected first invoice id %d, got %d", InvoiceIDFloor+1, id)
	}
	if id := NextID(&doc, CounterManager); id != 1 {
		t.Fatalf("expected first manager id 1, got %d", id)
	}
	if id := NextID(&doc, CounterManager); id != 2 {
		t.Fatalf("expected second manager id 2, got %d", id)
	}
	if doc.Counters.Value(CounterManager) != 2 {
		t.Fatalf("expected counter written back, got %+v", doc.Counters)
	}
}

func TestNextIDIsNotReusedAfterDeletion(t *testing.T) {
	doc := NewDocument()
	first := NextID(&doc, CounterCourse)
	doc.Courses = append(doc.Courses, Course{CourseID: first, MaxResidents: 1})
	doc.Courses = doc.Courses[:0]
	if next := NextID(&doc, CounterCourse); next <= first {
		t.Fatalf("expected id greater than %d, got %d", first, next)
	}
}

func TestNextIDUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown kind")
		}
	}()
	doc := NewDocument()
	NextID(&doc, CounterKind("bogus"))
}
