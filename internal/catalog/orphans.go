package catalog

import "sort"

// Orphans returns logical paths present on disk but absent from the state
// mapping. Useful for spotting files that never made it through review.
func Orphans(state *State, diskPaths []string) []string {
	if state == nil {
		return nil
	}
	orphans := make([]string, 0)
	for _, path := range diskPaths {
		if _, ok := state.Documents[path]; !ok {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)
	return orphans
}
