package usecase

import (
	"context"
	"log/slog"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Matcher partitions the day's full Article set into same-event clusters
// using a single oracle call, repairing the response locally.
type Matcher struct {
	oracle ports.Oracle
	budget *CallBudget
	logger *slog.Logger
}

// NewMatcher wires the oracle and the run-wide call budget.
func NewMatcher(oracle ports.Oracle, budget *CallBudget, logger *slog.Logger) *Matcher {
	return &Matcher{oracle: oracle, budget: budget, logger: logger}
}

// Match returns a cluster partition of articles and whether it fell back to
// the identity partition. The partition invariant holds regardless of oracle
// output: every article lands in exactly one cluster.
func (m *Matcher) Match(ctx context.Context, articles []domain.Article) ([]domain.Cluster, bool) {
	if len(articles) < 2 {
		return identityPartition(articles), false
	}

	if m.budget != nil {
		if err := m.budget.Acquire(); err != nil {
			m.warn("matching skipped", "error", err)
			return identityPartition(articles), true
		}
	}

	items := make([]ports.MatchItem, len(articles))
	for i, article := range articles {
		items[i] = ports.MatchItem{Index: i, Headline: article.Headline, Summary: article.Summary}
	}

	groups, err := m.oracle.MatchArticles(ctx, items)
	if err != nil {
		m.warn("matching failed, using identity partition", "error", err)
		return identityPartition(articles), true
	}

	return repairPartition(articles, groups), false
}

// repairPartition enforces the partition invariant on untrusted groups:
// unknown indices are ignored, duplicates keep their first placement,
// omitted articles become singletons, and groups drawn from a single
// newspaper are split back into singletons (cross-source corroboration is
// the criterion for merging).
func repairPartition(articles []domain.Article, groups [][]int) []domain.Cluster {
	assigned := make([]bool, len(articles))
	clusters := make([]domain.Cluster, 0, len(articles))

	for _, group := range groups {
		indices := make([]int, 0, len(group))
		for _, idx := range group {
			if idx < 0 || idx >= len(articles) || assigned[idx] {
				continue
			}
			assigned[idx] = true
			indices = append(indices, idx)
		}
		if len(indices) == 0 {
			continue
		}

		if len(indices) == 1 || singleNewspaper(articles, indices) {
			for _, idx := range indices {
				clusters = append(clusters, domain.Cluster{Members: []domain.Article{articles[idx]}})
			}
			continue
		}

		members := make([]domain.Article, 0, len(indices))
		for _, idx := range indices {
			members = append(members, articles[idx])
		}
		clusters = append(clusters, domain.Cluster{Members: members})
	}

	for i, article := range articles {
		if !assigned[i] {
			clusters = append(clusters, domain.Cluster{Members: []domain.Article{article}})
		}
	}

	return clusters
}

func singleNewspaper(articles []domain.Article, indices []int) bool {
	first := articles[indices[0]].Newspaper
	for _, idx := range indices[1:] {
		if articles[idx].Newspaper != first {
			return false
		}
	}
	return true
}

func identityPartition(articles []domain.Article) []domain.Cluster {
	clusters := make([]domain.Cluster, 0, len(articles))
	for _, article := range articles {
		clusters = append(clusters, domain.Cluster{Members: []domain.Article{article}})
	}
	return clusters
}

func (m *Matcher) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
