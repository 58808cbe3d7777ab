package docsync

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// DiffResult holds three disjoint name sets computed from a source and a
// mirror snapshot. Each list is sorted so that logs and reports are stable.
type DiffResult struct {
	OnlyInSource []string // upload to mirror
	OnlyInMirror []string // delete from mirror
	InBoth       []string // pull from mirror back to source
}

// Diff compares two snapshots by exact, case-sensitive name
func Diff(source, mirror *Snapshot) *DiffResult {
	srcNames := source.Names()
	mirNames := mirror.Names()

	return &DiffResult{
		OnlyInSource: sorted(srcNames.Difference(mirNames)),
		OnlyInMirror: sorted(mirNames.Difference(srcNames)),
		InBoth:       sorted(srcNames.Intersect(mirNames)),
	}
}

// Total is the number of per-file operations the diff implies
func (d *DiffResult) Total() int {
	return len(d.OnlyInSource) + len(d.OnlyInMirror) + len(d.InBoth)
}

// Converged reports whether the two name sets are already equal
func (d *DiffResult) Converged() bool {
	return len(d.OnlyInSource) == 0 && len(d.OnlyInMirror) == 0
}

func sorted(set mapset.Set[string]) []string {
	names := set.ToSlice()
	sort.Strings(names)
	return names
}
