// Package rules implements a minimal pattern-rule build engine: it resolves a
// glob of source files, derives one output per source by suffix substitution,
// selects the stale subset by comparing modification times and materializes
// the compiler invocation for each stale pair. Rules are declared in a small
// Starlark file, process execution is delegated to a ProcessRunner.
package rules
