// Package coordinator provides background synchronization scheduling for
// festival lineups.
//
// The coordinator is the orchestration layer above sync.Manager: it polls on
// a jittered interval, asks the manager whether each configured festival
// needs a sync, runs the syncs that do, and keeps per-festival sync status
// cached in memory and persisted to disk. Sync business logic (change
// detection, fetch, classify, merge) stays in the sync package; the
// coordinator only handles scheduling, lifecycle, and state.
//
// Failed syncs are logged and recorded in the status; the coordinator keeps
// running and retries on a later tick.
package coordinator
