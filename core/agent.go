package core

import "context"

// Agent is the contract every pipeline stage implements.
//
// Execute mutates only the agent's documented State fields and returns an
// error solely for genuinely unexpected conditions. Expected failures of the
// generate-validate-execute-evaluate cycle (provider hiccups, rejected code,
// sandbox errors) are absorbed into State so the loop can iterate.
//
// Agents are stateless with respect to State: no instance field stores
// per-request data except the append-only action log.
type Agent interface {
	Name() string
	Execute(ctx context.Context, state *State) error
	Log() *ActionLog
}
