// Package core defines the shared domain types threaded through the
// visualization pipeline: the per-request State record, the typed stage
// outputs (Intent, ContextBlock, ExecutionResult, VisualFeedback,
// FailureAnalysis), the Agent contract, the collaborator interfaces for
// retrieval backends, and the append-only action log used for tracing.
//
// The canonical collaborator interfaces live here to avoid dependency cycles
// and keep domain contracts central. Implementation packages (knowledge,
// sandbox, model providers) depend on core, never the other way around.
package core
