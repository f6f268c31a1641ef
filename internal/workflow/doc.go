// Package workflow implements the editor-facing operations of codeseek.
//
// # Operations
//
// Search dispatches the external search tool and routes its output to the
// clipboard, with a notification naming the files that matched. Analyze
// dispatches the analysis tool and routes its output to the chat sink
// when one is connected, otherwise to the clipboard with a short preview.
// Status reports project readiness without side effects. Setup is the
// composition root used by editor hosts: it loads configuration, resolves
// the external tools, and registers commands and key bindings.
//
// # Query Routing
//
// Every operation resolves the project root afresh and probes readiness
// before dispatching, so a project indexed mid-session is picked up
// without a restart. A query may arrive as an explicit argument, from
// the visual selection, from the word under the cursor, or from an
// interactive prompt when all else is empty. A canceled prompt aborts
// the operation quietly.
//
//	orch, err := workflow.NewOrchestrator(workflow.Options{
//	    Settings: settings,
//	    Host:     hostctx,
//	    Tools:    tools,
//	})
//	if err != nil {
//	    return err
//	}
//	job, err := orch.Search(ctx, "auth token refresh")
//
// A nil job with a nil error means the operation aborted before
// dispatch, for example on a canceled prompt or an unready project.
//
// # Degraded Analysis
//
// When the analysis tool is absent from PATH, or its invocation dies
// with a missing-command diagnostic on stderr, Analyze falls back to a
// plain search for the same query exactly once. The fallback is silent;
// only its own results surface.
//
// # Thread Safety
//
// Operations may be invoked from any goroutine. Result routing runs on
// the job's goroutine, so host providers must tolerate calls from
// outside the editor's main loop.
package workflow
