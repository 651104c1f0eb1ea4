// Package pipeline runs the agent sequence in a bounded reflection loop.
// Each pass executes every agent in fixed order against one shared State;
// between passes the stop predicate decides whether the result is good
// enough or the loop should spend another iteration.
package pipeline

import (
	"context"
	"fmt"

	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/logging"
)

// Pipeline executes its agents strictly sequentially, at most
// state.MaxIterations full passes. It is stateless across Run calls; all
// per-request data lives in the State.
type Pipeline struct {
	agents []core.Agent
	logger logging.Logger
}

// Options configures a Pipeline.
type Options struct {
	Logger logging.Logger
}

// New constructs a Pipeline over the given agents, run in the order given.
func New(agents []core.Agent, optFns ...func(o *Options)) *Pipeline {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Pipeline{agents: agents, logger: opts.Logger}
}

// Agents returns the pipeline's stages in execution order.
func (p *Pipeline) Agents() []core.Agent { return p.agents }

// Run drives the loop until the stop predicate holds, the iteration budget
// is spent, or the context is canceled. The State is mutated in place; the
// returned error is non-nil only for agent failures or cancellation, never
// for a merely unsatisfying result.
func (p *Pipeline) Run(ctx context.Context, state *core.State) error {
	if len(p.agents) == 0 {
		return fmt.Errorf("pipeline has no agents")
	}

	for state.IterationCount < state.MaxIterations {
		state.IterationCount++
		p.logger.Debug("pipeline pass starting",
			"iteration", state.IterationCount,
			"max_iterations", state.MaxIterations)

		for _, a := range p.agents {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("pipeline canceled before %s: %w", a.Name(), err)
			}
			if err := a.Execute(ctx, state); err != nil {
				return fmt.Errorf("agent %s: %w", a.Name(), err)
			}
		}

		if state.ShouldStop() {
			p.logger.Debug("pipeline stopping", "iteration", state.IterationCount)
			break
		}
	}
	return nil
}

// Trace merges the action logs of every agent into one chronological view.
func (p *Pipeline) Trace() []core.LogEntry {
	logs := make([]*core.ActionLog, 0, len(p.agents))
	for _, a := range p.agents {
		logs = append(logs, a.Log())
	}
	return core.MergeLogs(logs...)
}
