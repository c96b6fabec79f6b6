// Package progress models the exercise progress log kept under the
// Git-Mastery root.
//
// A log is a JSON array of entries. Each entry is identified by the pair
// (exercise_name, started_at); every other field is carried through verbatim.
//
// Key Components:
//
// Entry / Timestamp: One recorded attempt. Timestamp keeps the raw JSON
// token of started_at, which may be a string or a Unix timestamp number.
//
// Merge: Reconciles a local and a remote log into one deduplicated,
// sorted log and reports whether the local side contributed anything.
//
// Store: Reads and writes the log file on a billy filesystem. An absent
// file reads as an empty log.
//
// Example Usage:
//
//	store := progress.NewStore(osfs.New(root), "progress/progress.json")
//	local, err := store.Load()
//	...
//	merged, hadUpdate, err := progress.Merge(local, remote)
//	if err := store.Save(merged); err != nil {
//	    return err
//	}
package progress
