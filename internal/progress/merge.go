package progress

import (
	"fmt"
	"slices"
)

// Log is an ordered sequence of entries
type Log []Entry

// Keys returns the distinct identity keys of the log
func (l Log) Keys() map[Key]struct{} {
	keys := make(map[Key]struct{}, len(l))
	for _, e := range l {
		keys[e.Key()] = struct{}{}
	}
	return keys
}

// Merge reconciles a local and a remote log.
//
// Local entries come first, so on a key collision the local entry is kept
// and the remote one dropped, whatever its other fields hold. The result is
// sorted by (exercise_name, started_at). hadUpdate is true iff the merged
// log holds more distinct keys than remote has entries.
func Merge(local, remote Log) (Log, bool, error) {
	if err := validate("local", local); err != nil {
		return nil, false, err
	}
	if err := validate("remote", remote); err != nil {
		return nil, false, err
	}

	seen := make(map[Key]struct{}, len(local)+len(remote))
	merged := make(Log, 0, len(local)+len(remote))
	for _, side := range []Log{local, remote} {
		for _, e := range side {
			k := e.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, e)
		}
	}

	slices.SortStableFunc(merged, func(a, b Entry) int {
		return a.Key().Compare(b.Key())
	})

	return merged, len(seen) > len(remote), nil
}

func validate(side string, l Log) error {
	for i, e := range l {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%s entry %d: %w", side, i, err)
		}
	}
	return nil
}
