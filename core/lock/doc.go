// Package lock enforces a single running calblock instance per machine.
//
// Two concurrent passes over the same accounts would race on blocker
// creation and produce duplicates, so watch mode takes an exclusive
// flock on a well-known file before doing anything else. The lock dies
// with the process, which makes stale locks impossible.
package lock
