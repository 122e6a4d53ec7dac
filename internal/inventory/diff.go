package inventory

import "sort"

// Delta is one item name and how many copies were gained or lost.
// Count is always positive; the direction lives in which Diff list
// the delta sits in.
type Delta struct {
	Name  string
	Count int
}

// Diff is the multiset difference between two snapshots.
// Both lists are sorted ascending by name so a given pair of snapshots
// always formats to the same message text.
type Diff struct {
	Added   []Delta
	Removed []Delta
}

// Empty reports whether the two snapshots were equal as multisets.
func (d Diff) Empty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

// ComputeDiff compares two snapshots per item name:
// new > old records an addition, old > new a removal, equal counts
// (including absent from both) record nothing.
func ComputeDiff(prev, cur Snapshot) Diff {
	var d Diff
	for name, n := range cur {
		if old := prev[name]; n > old {
			d.Added = append(d.Added, Delta{Name: name, Count: n - old})
		}
	}
	for name, old := range prev {
		if n := cur[name]; old > n {
			d.Removed = append(d.Removed, Delta{Name: name, Count: old - n})
		}
	}
	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Name < d.Added[j].Name })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Name < d.Removed[j].Name })
	return d
}
