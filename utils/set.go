package utils

// SeenSet tracks strings that have already been encountered, e.g. titles
// during deduplication.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// Add returns true if s was newly added, false if already present.
func (s *SeenSet) Add(v string) bool {
	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	return true
}

// Contains returns true if v has already been added.
func (s *SeenSet) Contains(v string) bool {
	_, exists := s.seen[v]
	return exists
}

// Size returns the number of distinct values tracked.
func (s *SeenSet) Size() int {
	return len(s.seen)
}
