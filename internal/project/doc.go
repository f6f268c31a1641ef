// Package project resolves project roots and probes index readiness.
//
// The project package answers two questions: where does the current
// project start, and can it serve semantic queries right now. The answer
// to the second question is never cached; external indexer runs can
// change it at any time, so every command probes fresh.
//
// # Project Root
//
// The root is the enclosing version-control worktree when there is one,
// otherwise the directory itself:
//
//	root := project.ResolveRoot("/path/to/project/src/deep")
//	// "/path/to/project" when that is the git toplevel
//
// # Readiness
//
// A project moves through three states:
//
//	uninitialized -> unindexed -> ready
//
// The marker directory decides the first transition: when it is absent
// the project is uninitialized and no probe is spawned. When it exists,
// a minimal query is sent through the toolchain and the JSON reply
// decides between unindexed and ready.
//
//	prober := project.NewProber(runner, tools, project.DefaultProberConfig())
//	state := prober.Probe(ctx, root)
//	if !state.Ready() {
//	    fmt.Println("run", state.Remediation())
//	}
//
// Probe failures never abort a command: a reply that cannot be parsed,
// a probe that times out, or a tool that cannot spawn all report the
// project as unindexed, which routes the user toward rebuilding the
// index rather than hiding the problem behind an error.
//
// # Thread Safety
//
// Prober is stateless between calls and safe for concurrent use.
package project
