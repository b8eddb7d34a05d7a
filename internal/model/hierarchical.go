package model

// Taxonomy sources. Each source is imported exactly once, in bulk, and
// never mutated afterwards.
const (
	SourceRoget = "roget"
	SourceDewey = "dewey"
)

// HierarchicalEntry is one row of an imported reference taxonomy: up to
// four nested level labels and the free-text terms filed under them.
// Entries are used only for term lookup and search.
type HierarchicalEntry struct {
	ID     uint64   `json:"id"`
	Source string   `json:"source"`
	Level1 string   `json:"level1"`
	Level2 string   `json:"level2,omitempty"`
	Level3 string   `json:"level3,omitempty"`
	Level4 string   `json:"level4,omitempty"`
	Terms  []string `json:"terms"`
}

// ValidSource reports whether s names a known taxonomy source.
func ValidSource(s string) bool {
	return s == SourceRoget || s == SourceDewey
}
