package usecase

import (
	"sort"
	"time"

	"NewsDigest/internal/domain"
)

// Assembler groups merged stories into the final Digest. It assumes the
// Merge Builder's invariants hold and performs no further validation.
type Assembler struct {
	priority map[string]int
	rank     PaperRank
}

// NewAssembler binds the configured category priority list and the fixed
// newspaper ordering.
func NewAssembler(categoryPriority []string, rank PaperRank) *Assembler {
	priority := make(map[string]int, len(categoryPriority))
	for i, category := range categoryPriority {
		if _, ok := priority[category]; !ok {
			priority[category] = i
		}
	}
	return &Assembler{priority: priority, rank: rank}
}

// Assemble groups stories by category. Categories follow the configured
// priority list with leftovers appended alphabetically; within a category,
// stories order by descending contributor count, then by the newspaper rank
// of the top citation, then by headline for full determinism.
func (a *Assembler) Assemble(day time.Time, newspapers []string, stories []domain.MergedStory) domain.Digest {
	byCategory := make(map[string][]domain.MergedStory)
	for _, story := range stories {
		byCategory[story.Category] = append(byCategory[story.Category], story)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		pi, iOK := a.priority[categories[i]]
		pj, jOK := a.priority[categories[j]]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return categories[i] < categories[j]
		}
	})

	groups := make([]domain.CategoryGroup, 0, len(categories))
	for _, category := range categories {
		group := byCategory[category]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Contributors != group[j].Contributors {
				return group[i].Contributors > group[j].Contributors
			}
			ri, rj := a.topCitationRank(group[i]), a.topCitationRank(group[j])
			if ri != rj {
				return ri < rj
			}
			return group[i].Headline < group[j].Headline
		})
		groups = append(groups, domain.CategoryGroup{Category: category, Stories: group})
	}

	return domain.Digest{
		Date:        day,
		GeneratedAt: time.Now().UTC(),
		Newspapers:  newspapers,
		TotalCount:  len(stories),
		Categories:  groups,
	}
}

func (a *Assembler) topCitationRank(story domain.MergedStory) int {
	if len(story.Citations) == 0 {
		return a.rank.Rank("")
	}
	return a.rank.Rank(story.Citations[0].Newspaper)
}
