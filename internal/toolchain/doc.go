// Package toolchain runs the external semantic-search binaries.
//
// The toolchain package resolves the configured tool binaries on PATH and
// dispatches invocations of them without blocking the caller. Commands are
// always spawned with positional arguments; nothing is ever passed through
// a shell, so queries containing quotes, spaces, or metacharacters need no
// escaping.
//
// # Tool Resolution
//
// Binaries are resolved once, up front:
//
//	tools, err := toolchain.ResolveTools("cseek", "cseek-analyze")
//	if err != nil {
//	    // the search binary is required
//	    log.Fatal(err)
//	}
//	if !tools.HasAnalyze() {
//	    // analysis degrades to plain search
//	}
//
// A missing search binary is a hard error. A missing analyze binary is
// recorded on the returned Tools so callers can degrade gracefully.
//
// # Runner
//
// The Runner dispatches jobs asynchronously:
//
//	runner := toolchain.NewRunner(toolchain.DefaultRunnerConfig())
//	job, err := runner.Run(ctx, toolchain.Request{
//	    Tool: tools.Search,
//	    Args: []string{"query", "/path/to/project", "10", "text"},
//	    OnDone: func(j *toolchain.Job) {
//	        // runs on the job's goroutine once the state is final
//	    },
//	})
//
// Each Job tracks its own state, exit code, and captured output. Callers
// that need a synchronous answer block on Wait:
//
//	if err := job.Wait(ctx); err == nil {
//	    fmt.Println(job.Stdout())
//	}
//
// # Output Capture
//
// Stdout and stderr are captured separately, line by line, under a shared
// byte budget. When the budget is exhausted further lines are dropped and
// rendered content ends with a truncation notice; the pipes are still
// drained so the child never blocks.
//
// # Thread Safety
//
// Runner and Job are safe for concurrent use. Jobs share nothing with each
// other; concurrent invocations need no coordination.
package toolchain
