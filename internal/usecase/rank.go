package usecase

// PaperRank resolves a newspaper name to its position in the fixed configured
// newspaper ordering. Every merge and digest tie-break uses this ordering; it
// is a declared configuration input, never inferred from the data.
type PaperRank struct {
	order map[string]int
}

// NewPaperRank builds the rank table from the configured newspaper list.
func NewPaperRank(order []string) PaperRank {
	table := make(map[string]int, len(order))
	for i, name := range order {
		if _, ok := table[name]; !ok {
			table[name] = i
		}
	}
	return PaperRank{order: table}
}

// Rank returns the priority index for a paper; unknown papers sort last.
func (r PaperRank) Rank(newspaper string) int {
	if i, ok := r.order[newspaper]; ok {
		return i
	}
	return len(r.order)
}
