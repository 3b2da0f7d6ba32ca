package draft

import (
	"sort"
)

// TombstoneSet records the ids of persisted line items marked for deletion on
// the next commit. It exists as an explicit type, not ad hoc slice filtering,
// so the disjointness invariant against the active sequence stays mechanically
// checkable.
type TombstoneSet struct {
	ids map[int64]struct{}
}

func NewTombstoneSet() *TombstoneSet {
	return &TombstoneSet{ids: make(map[int64]struct{})}
}

// Add marks a persisted item id for deletion
func (t *TombstoneSet) Add(id int64) {
	t.ids[id] = struct{}{}
}

// Contains reports whether the id is marked for deletion
func (t *TombstoneSet) Contains(id int64) bool {
	_, ok := t.ids[id]
	return ok
}

// IDs returns the marked ids in ascending order so the deletion phase and its
// error aggregation are deterministic regardless of insertion order.
func (t *TombstoneSet) IDs() []int64 {
	out := make([]int64, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *TombstoneSet) Len() int {
	return len(t.ids)
}

func (t *TombstoneSet) IsEmpty() bool {
	return len(t.ids) == 0
}

// Clear drops all marks, called once the deletion phase has drained the set
func (t *TombstoneSet) Clear() {
	t.ids = make(map[int64]struct{})
}
