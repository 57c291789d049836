// Package agent runs the orchestration loop that drives a model through a
// multi-step task plan.
//
// Each iteration the agent builds a prompt from the plan, the tool catalog,
// the operation ledger and the narrated history, asks the model for its next
// move, and parses the reply into one of the reply package outcomes:
//
//   - FUNCTION_CALL arguments are coerced against the tool schema and
//     dispatched. A successful call completes the first pending operation
//     that lists the tool.
//   - FINAL_ANSWER records the pending answer and completes operations
//     marked completes_on_answer.
//   - ERROR increments the fault counter. Exceeding the threshold ends the
//     run with a fatal error.
//   - COMPLETE ends the run successfully.
//   - An unrecognized reply is re-prompted once with a format reminder. A
//     second one in a row is handled like ERROR.
//
// The run ends successfully once every ledger entry is resolved. It ends
// with iteration_cap_reached once the model has been asked MaxIterations
// times without that happening.
//
// # Basic Usage
//
//	catalog, _ := tool.NewCatalog(tools)
//	dispatcher := tool.NewDispatcher(catalog, session)
//	a := agent.New(generator, catalog, dispatcher, agent.WithLogger(logger))
//
//	result, err := a.Run(ctx, plan.Default())
//	if err != nil {
//	    return err // the plan was invalid
//	}
//	fmt.Println(result.Termination, result.Answer)
//
// # Fallbacks
//
// A plan may register a fallback for an operation. Once that operation has
// failed after_failures times the agent stops asking the model and calls the
// fallback tool itself, with arguments rendered from the last known answer.
// A successful fallback completes the skip_to operation and marks the failed
// one skipped. Each fallback runs at most once per run.
//
// # Concurrency
//
// An Agent holds only immutable collaborators. Every Run builds its own
// state, so one Agent can serve concurrent runs.
package agent
