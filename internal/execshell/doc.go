// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the abstractions repopulse uses
// to drive the git CLI in a testable manner. The executor is the single
// gateway through which the activity loop mutates repository state; commands
// run one at a time with no hidden concurrency.
package execshell
