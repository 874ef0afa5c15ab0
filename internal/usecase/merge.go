package usecase

import (
	"sort"
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"

	"NewsDigest/internal/domain"
)

// Merger collapses one Cluster into one MergedStory. Construction is pure
// and deterministic: the same Cluster always yields the same MergedStory.
type Merger struct {
	rank PaperRank
}

// NewMerger binds the fixed newspaper ordering used for every tie-break.
func NewMerger(rank PaperRank) *Merger {
	return &Merger{rank: rank}
}

// Build produces the MergedStory for a cluster. Citations keep one entry per
// member Article in newspaper-priority order; no citation is ever dropped.
func (m *Merger) Build(cluster domain.Cluster) domain.MergedStory {
	members := make([]domain.Article, len(cluster.Members))
	copy(members, cluster.Members)
	sort.SliceStable(members, func(i, j int) bool {
		return m.rank.Rank(members[i].Newspaper) < m.rank.Rank(members[j].Newspaper)
	})

	story := domain.MergedStory{
		Headline:  m.pickHeadline(members),
		Category:  m.pickCategory(members),
		Summary:   dedupSentences(members),
		Citations: make([]domain.Citation, 0, len(members)),
	}

	papers := make(map[string]struct{}, len(members))
	for _, member := range members {
		pages := make([]int, len(member.Pages))
		copy(pages, member.Pages)
		story.Citations = append(story.Citations, domain.Citation{
			Newspaper: member.Newspaper,
			Pages:     pages,
		})
		papers[member.Newspaper] = struct{}{}
		if member.Importance > story.Importance {
			story.Importance = member.Importance
		}
	}
	story.Contributors = len(papers)

	return story
}

// pickHeadline takes the headline of the member with the longest summary;
// members are already in newspaper-priority order, so the first longest wins
// ties.
func (m *Merger) pickHeadline(members []domain.Article) string {
	best := members[0]
	for _, member := range members[1:] {
		if len(member.Summary) > len(best.Summary) {
			best = member
		}
	}
	return best.Headline
}

// pickCategory takes the majority category; ties go to the tied category
// whose first occurrence comes earliest in newspaper-priority order.
func (m *Merger) pickCategory(members []domain.Article) string {
	counts := make(map[string]int, len(members))
	firstSeen := make(map[string]int, len(members))
	for i, member := range members {
		counts[member.Category]++
		if _, ok := firstSeen[member.Category]; !ok {
			firstSeen[member.Category] = i
		}
	}

	winner := members[0].Category
	for category, count := range counts {
		switch {
		case count > counts[winner]:
			winner = category
		case count == counts[winner] && firstSeen[category] < firstSeen[winner]:
			winner = category
		}
	}
	return winner
}

// dedupSentences concatenates member summaries keeping each sentence once.
// Repeated claims across sources collapse to their first occurrence; unique
// detail from later sources is appended.
func dedupSentences(members []domain.Article) string {
	seen := make(map[string]struct{})
	var parts []string

	for _, member := range members {
		tokens := sentences.FromString(member.Summary)
		for tokens.Next() {
			sentence := strings.TrimSpace(tokens.Value())
			if sentence == "" {
				continue
			}
			key := sentenceKey(sentence)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			parts = append(parts, sentence)
		}
	}

	return strings.Join(parts, " ")
}

// sentenceKey folds case, whitespace and trailing punctuation so trivially
// re-worded duplicates still collapse.
func sentenceKey(sentence string) string {
	key := strings.ToLower(sentence)
	key = strings.Join(strings.Fields(key), " ")
	return strings.TrimRight(key, ".!?")
}
