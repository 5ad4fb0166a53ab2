// Package apperrors defines the engine's error taxonomy.
// These are sentinels, not types: callers compare with errors.Is and wrap
// with fmt.Errorf("...: %w", ErrX) to attach per-call detail.
package apperrors

import "errors"

var (
	// ErrSchemaNotFound: a requested schema name is absent. Fatal to that request.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrLLMUnavailable: the LLM transport could not be reached. Recoverable —
	// callers downgrade to the deterministic path and annotate the response.
	ErrLLMUnavailable = errors.New("llm unavailable")

	// ErrLLMBadOutput: the LLM responded but its output didn't parse against
	// the expected schema. Recoverable the same way as ErrLLMUnavailable.
	ErrLLMBadOutput = errors.New("llm returned malformed output")

	// ErrInvalidRequest: bad parameters, e.g. both source and target missing.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoJoinPath: the join planner could not connect source to target.
	// Fatal to this definition/rule; other items in the batch proceed.
	ErrNoJoinPath = errors.New("no join path between tables")

	// ErrSchemaObjectNotFound: the backend reported an unknown table/schema.
	// Triggers the schema-prefix fallback (one retry).
	ErrSchemaObjectNotFound = errors.New("schema object not found")

	// ErrExecutionError: the backend raised a non-recoverable error (syntax,
	// permission, timeout). Recorded with the failing SQL; other rules proceed.
	ErrExecutionError = errors.New("execution error")

	// ErrRenderGuard: a relationship refers to an unknown node. Dropped with
	// a warning; never surfaced as an exception.
	ErrRenderGuard = errors.New("relationship references unknown node")

	// ErrNotFound: a requested stored document (KG, ruleset, result, KPI
	// artifact) is absent. Fatal to that request.
	ErrNotFound = errors.New("not found")
)
