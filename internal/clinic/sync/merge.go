package sync

import "github.com/guidari-center/guidari-backend/internal/clinic/domain"

// MergeStaff merges a fetched remote roster into the fixed local base list by
// identifier: remote entries overwrite base entries with the same ID, unmatched
// remote entries are appended, and base entries with no remote counterpart are
// preserved. Merging a merged list with itself is a no-op, and the seed
// administrator survives an empty remote. Availability over consistency.
func MergeStaff(base, fetched []domain.User) []domain.User {
	out := make([]domain.User, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, u := range out {
		index[u.ID] = i
	}

	for _, u := range fetched {
		if i, ok := index[u.ID]; ok {
			out[i] = u
			continue
		}
		index[u.ID] = len(out)
		out = append(out, u)
	}
	return out
}
