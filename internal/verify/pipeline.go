package verify

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vmaretto/sigillo/pkg/events"
)

// exec carries the per-request execution context shared by all nodes:
// the runtime collaborators, the request, the progress stream, and the
// time budget governor.
type exec struct {
	rt     *Runtime
	req    Request
	stream *events.Stream
	gov    *Governor
}

// Execute runs the verification pipeline for a single request. It builds
// the state graph (acquire → analyze → match → refine? → finalize), executes
// it under the overall wall-clock ceiling, and extracts the Outcome from the
// final state. Progress events are pushed onto stream as stages advance; the
// caller owns the terminal event.
func Execute(
	ctx context.Context,
	rt *Runtime,
	req Request,
	stream *events.Stream,
) (*Outcome, error) {
	return execute(ctx, rt, req, stream, NewGovernor(rt.Config))
}

func execute(
	ctx context.Context,
	rt *Runtime,
	req Request,
	stream *events.Stream,
	gov *Governor,
) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, rt.Config.Ceiling())
	defer cancel()

	e := &exec{
		rt:     rt,
		req:    req,
		stream: stream,
		gov:    gov,
	}

	graph, err := buildGraph(e)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	finalState, err := graph.Execute(ctx, state.New(nil))
	if err != nil {
		return nil, err
	}

	return extractOutcome(finalState)
}

func buildGraph(e *exec) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("sigillo-verify")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("acquire", e.acquireNode()); err != nil {
		return nil, err
	}

	if err := graph.AddNode("analyze", e.analyzeNode()); err != nil {
		return nil, err
	}

	if err := graph.AddNode("match", e.matchNode()); err != nil {
		return nil, err
	}

	if err := graph.AddNode("refine", e.refineNode()); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", e.finalizeNode()); err != nil {
		return nil, err
	}

	// acquire → analyze (unconditional)
	if err := graph.AddEdge("acquire", "analyze", nil); err != nil {
		return nil, err
	}

	// analyze → match (unconditional)
	if err := graph.AddEdge("analyze", "match", nil); err != nil {
		return nil, err
	}

	// match → refine (when the budget still allows visual refinement)
	if err := graph.AddEdge("match", "refine", state.Not(skipVisual)); err != nil {
		return nil, err
	}

	// match → finalize (textual-only degraded mode)
	if err := graph.AddEdge("match", "finalize", skipVisual); err != nil {
		return nil, err
	}

	// refine → finalize (unconditional)
	if err := graph.AddEdge("refine", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("acquire"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func skipVisual(s state.State) bool {
	val, ok := s.Get(KeySkipVisual)
	if !ok {
		return false
	}

	skip, ok := val.(bool)
	return ok && skip
}

func extractOutcome(s state.State) (*Outcome, error) {
	val, ok := s.Get(KeyOutcome)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyOutcome)
	}

	outcome, ok := val.(*Outcome)
	if !ok {
		return nil, fmt.Errorf("%s is not *Outcome", KeyOutcome)
	}

	return outcome, nil
}
