package handlers

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"searchlight/db"
	"searchlight/models"
	"searchlight/search"
)

func unavailableErr() error {
	return fmt.Errorf("%w: connection refused", search.ErrUnavailable)
}

func dbEnvelope() *Envelope {
	return &Envelope{
		Count:   1,
		Results: []map[string]any{{"id": "1", "name": "from database"}},
	}
}

func TestFallbackOnUnavailable(t *testing.T) {
	orch := NewOrchestrator(false, zap.NewNop())

	var env *Envelope
	err := orch.Run(
		func() error { return unavailableErr() },
		func() error { env = dbEnvelope(); return nil },
	)
	if err != nil {
		t.Fatalf("fallback run failed: %v", err)
	}
	if !orch.Failed() {
		t.Fatalf("orchestrator did not record the failure")
	}

	orch.Annotate(env)
	if env.FilterStatus != FilterStatusFailed {
		t.Fatalf("expected filter_status %q, got %q", FilterStatusFailed, env.FilterStatus)
	}
	if env.FilterFailCause != "" {
		t.Fatalf("failure cause must be hidden outside debug mode, got %q", env.FilterFailCause)
	}
	if len(env.Results) != 1 || env.Results[0]["name"] != "from database" {
		t.Fatalf("expected results from the database path, got %v", env.Results)
	}
}

func TestDebugModeExposesCause(t *testing.T) {
	orch := NewOrchestrator(true, zap.NewNop())

	var env *Envelope
	err := orch.Run(
		func() error { return unavailableErr() },
		func() error { env = dbEnvelope(); return nil },
	)
	if err != nil {
		t.Fatalf("fallback run failed: %v", err)
	}

	orch.Annotate(env)
	if env.FilterFailCause == "" {
		t.Fatalf("expected failure cause in debug mode")
	}
}

func TestHealthyRunStaysOnPrimary(t *testing.T) {
	orch := NewOrchestrator(true, zap.NewNop())

	fallbackCalled := false
	env := &Envelope{Count: 2}
	err := orch.Run(
		func() error { return nil },
		func() error { fallbackCalled = true; return nil },
	)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if fallbackCalled {
		t.Fatalf("fallback ran without a backend failure")
	}

	orch.Annotate(env)
	if env.FilterStatus != FilterStatusOK {
		t.Fatalf("expected filter_status %q, got %q", FilterStatusOK, env.FilterStatus)
	}
	if env.FilterFailCause != "" {
		t.Fatalf("no failure cause expected on a healthy run")
	}
}

func TestQueryRejectedDoesNotTriggerFallback(t *testing.T) {
	orch := NewOrchestrator(false, zap.NewNop())

	fallbackCalled := false
	err := orch.Run(
		func() error { return fmt.Errorf("%w: parse error", search.ErrQueryRejected) },
		func() error { fallbackCalled = true; return nil },
	)
	if !errors.Is(err, search.ErrQueryRejected) {
		t.Fatalf("expected rejection to propagate, got %v", err)
	}
	if fallbackCalled || orch.Failed() {
		t.Fatalf("rejected query must not switch to the database")
	}
}

func TestNotFoundDoesNotTriggerFallback(t *testing.T) {
	orch := NewOrchestrator(false, zap.NewNop())

	fallbackCalled := false
	err := orch.Run(
		func() error { return fmt.Errorf("%w: products/9", search.ErrNotFound) },
		func() error { fallbackCalled = true; return nil },
	)
	if !errors.Is(err, search.ErrNotFound) {
		t.Fatalf("expected not-found to propagate, got %v", err)
	}
	if fallbackCalled || orch.Failed() {
		t.Fatalf("missing document must not switch to the database")
	}
}

func TestFailedOrchestratorStaysOnDatabase(t *testing.T) {
	orch := NewOrchestrator(false, zap.NewNop())

	if err := orch.Run(func() error { return unavailableErr() }, func() error { return nil }); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// After a failure every later data access in the same request must use
	// the database, never half index half database.
	primaryCalled := false
	err := orch.Run(
		func() error { primaryCalled = true; return nil },
		func() error { return nil },
	)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if primaryCalled {
		t.Fatalf("orchestrator went back to the search backend after a failure")
	}
}

func TestEnvelopePagination(t *testing.T) {
	entity := &models.EntityType{Name: "products", Table: "products", PrimaryKey: "id"}
	if err := entity.Validate("test"); err != nil {
		t.Fatal(err)
	}

	qr := &db.QueryResult{Total: 45}
	for i := range 10 {
		qr.Records = append(qr.Records,
			models.NewRecord(entity, fmt.Sprint(i), map[string]any{"id": fmt.Sprint(i)}))
	}

	env := envelopeFromQueryResult(qr, search.Spec{Page: 2, PageSize: 10})
	if env.Count != 45 {
		t.Fatalf("expected count 45, got %d", env.Count)
	}
	if env.Previous == nil || *env.Previous != 1 {
		t.Fatalf("expected previous page 1, got %v", env.Previous)
	}
	if env.Next == nil || *env.Next != 3 {
		t.Fatalf("expected next page 3, got %v", env.Next)
	}

	env = envelopeFromQueryResult(&db.QueryResult{Total: 5}, search.Spec{Page: 1, PageSize: 10})
	if env.Previous != nil || env.Next != nil {
		t.Fatalf("single page must have no previous/next, got %v %v", env.Previous, env.Next)
	}
}
