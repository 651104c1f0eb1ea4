// Package agent implements the five pipeline stages: Planner (intent
// classification and chart planning), Retriever (multi-source context
// assembly), Coder (multi-strategy code generation), Evaluator (sandboxed
// execution plus heuristic scoring) and Reflector (failure analysis).
//
// Every agent satisfies core.Agent: Execute reads and writes only its
// documented State fields, absorbs expected failures into State, and lets
// genuinely unexpected errors propagate. Dependencies (model, retrieval
// collaborators, executor) are constructor-injected; agents never reach for
// globals at call time.
package agent
