package handlers

import (
	"go.uber.org/zap"

	"searchlight/search"
)

// Orchestrator makes a search-backend failure invisible to the handler's
// business logic while making it visible in the response envelope. One
// orchestrator is constructed per request; the failure flag never outlives or
// leaks outside that request.
//
// Only connectivity-level failures (search.ErrUnavailable) switch the request
// to the database. Rejected queries and missing documents are caller-facing
// conditions and propagate unchanged. Once failed, every later data access in
// the same request must go through Failed() so the whole response is served
// from one store.
type Orchestrator struct {
	debug  bool
	logger *zap.Logger

	failed bool
	cause  error
}

// NewOrchestrator creates a per-request orchestrator
func NewOrchestrator(debug bool, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{debug: debug, logger: logger}
}

// Run attempts the data-access step with the search backend as the primary
// source and re-executes it against the database on a connectivity failure.
// Only the data-access step is retried; handler side effects run once.
func (o *Orchestrator) Run(primary, fallback func() error) error {
	if o.failed {
		return fallback()
	}

	err := primary()
	if err == nil {
		return nil
	}
	if !search.IsUnavailable(err) {
		return err
	}

	o.failed = true
	o.cause = err
	o.logger.Warn("Search backend unavailable, falling back to database", zap.Error(err))

	return fallback()
}

// Failed reports whether this request is in degraded mode
func (o *Orchestrator) Failed() bool {
	return o.failed
}

// Annotate attaches the degraded-status metadata to a list envelope
func (o *Orchestrator) Annotate(env *Envelope) {
	env.FilterStatus = o.status()
	if o.failed && o.debug {
		env.FilterFailCause = o.cause.Error()
	}
}

// AnnotateMap attaches the degraded-status metadata to a retrieve response.
// filter_status and filter_fail_cause are reserved response keys; entity
// validation rejects columns of the same name.
func (o *Orchestrator) AnnotateMap(body map[string]any) {
	body["filter_status"] = o.status()
	if o.failed && o.debug {
		body["filter_fail_cause"] = o.cause.Error()
	}
}

func (o *Orchestrator) status() string {
	if o.failed {
		return FilterStatusFailed
	}
	return FilterStatusOK
}
