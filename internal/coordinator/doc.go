// Package coordinator provides bounded-time execution of analysis jobs.
// It races a unit of work against a deadline timer and delivers exactly one
// outcome per job: completed, timed out, or faulted. The inline variant runs
// the work in-process and cannot interrupt it; the isolated variant runs it
// in a worker subprocess that is force-killed when the deadline fires.
package coordinator
