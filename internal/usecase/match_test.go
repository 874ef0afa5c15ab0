package usecase

import (
	"context"
	"errors"
	"testing"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

func matchArticles() []domain.Article {
	return []domain.Article{
		{Newspaper: "The Hindu", Headline: "Election results declared", Pages: []int{1}},
		{Newspaper: "Indian Express", Headline: "Ruling party wins election", Pages: []int{1}},
		{Newspaper: "The Hindu", Headline: "Cricket team wins series", Pages: []int{14}},
		{Newspaper: "Mint", Headline: "Markets rally on results", Pages: []int{1}},
	}
}

func clusterSizes(clusters []domain.Cluster) []int {
	sizes := make([]int, 0, len(clusters))
	for _, cluster := range clusters {
		sizes = append(sizes, len(cluster.Members))
	}
	return sizes
}

func assertPartition(t *testing.T, clusters []domain.Cluster, total int) {
	t.Helper()

	count := 0
	seen := map[string]int{}
	for _, cluster := range clusters {
		if len(cluster.Members) == 0 {
			t.Fatal("empty cluster violates the partition invariant")
		}
		for _, member := range cluster.Members {
			count++
			seen[member.Newspaper+"|"+member.Headline]++
		}
	}
	if count != total {
		t.Fatalf("partition covers %d articles, want %d", count, total)
	}
	for key, n := range seen {
		if n != 1 {
			t.Fatalf("article %s appears %d times", key, n)
		}
	}
}

func TestMatchRepairsPartition(t *testing.T) {
	t.Parallel()

	articles := matchArticles()
	oracle := &stubOracle{match: func(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
		// Groups 0+1, references a bogus index, omits 2 and 3 entirely.
		return [][]int{{0, 1, 42}}, nil
	}}

	matcher := NewMatcher(oracle, NewCallBudget(5), nil)
	clusters, fellBack := matcher.Match(context.Background(), articles)
	if fellBack {
		t.Fatal("successful matching must not set the fallback flag")
	}

	assertPartition(t, clusters, len(articles))
	if len(clusters) != 3 {
		t.Fatalf("expected 3 clusters, got %d (%v)", len(clusters), clusterSizes(clusters))
	}
	if len(clusters[0].Members) != 2 {
		t.Fatalf("first cluster should pair the two election stories, got %d members", len(clusters[0].Members))
	}
}

func TestMatchSplitsSameNewspaperGroups(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Newspaper: "The Hindu", Headline: "Story A"},
		{Newspaper: "The Hindu", Headline: "Story B"},
	}
	oracle := &stubOracle{match: func(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
		return [][]int{{0, 1}}, nil
	}}

	matcher := NewMatcher(oracle, NewCallBudget(5), nil)
	clusters, _ := matcher.Match(context.Background(), articles)

	assertPartition(t, clusters, 2)
	for _, cluster := range clusters {
		if len(cluster.Members) != 1 {
			t.Fatal("same-newspaper group must split back into singletons")
		}
	}
}

func TestMatchIgnoresDuplicateIndices(t *testing.T) {
	t.Parallel()

	articles := matchArticles()
	oracle := &stubOracle{match: func(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
		return [][]int{{0, 1}, {1, 3}}, nil
	}}

	matcher := NewMatcher(oracle, NewCallBudget(5), nil)
	clusters, _ := matcher.Match(context.Background(), articles)

	assertPartition(t, clusters, len(articles))
}

func TestMatchFallsBackOnOracleFailure(t *testing.T) {
	t.Parallel()

	articles := matchArticles()
	oracle := &stubOracle{match: func(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
		return nil, errors.New("oracle down")
	}}

	matcher := NewMatcher(oracle, NewCallBudget(5), nil)
	clusters, fellBack := matcher.Match(context.Background(), articles)
	if !fellBack {
		t.Fatal("fallback flag should be set")
	}
	if len(clusters) != len(articles) {
		t.Fatalf("identity partition expected, got %d clusters", len(clusters))
	}
	assertPartition(t, clusters, len(articles))
}

func TestMatchFallsBackWhenBudgetSpent(t *testing.T) {
	t.Parallel()

	called := false
	oracle := &stubOracle{match: func(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
		called = true
		return nil, nil
	}}

	matcher := NewMatcher(oracle, NewCallBudget(0), nil)
	clusters, fellBack := matcher.Match(context.Background(), matchArticles())
	if !fellBack {
		t.Fatal("fallback flag should be set on quota exhaustion")
	}
	if called {
		t.Fatal("oracle must not be called without a budget slot")
	}
	if len(clusters) != 4 {
		t.Fatalf("identity partition expected, got %d clusters", len(clusters))
	}
}

func TestMatchSkipsOracleForTinyInputs(t *testing.T) {
	t.Parallel()

	oracle := &stubOracle{match: func(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
		t.Fatal("oracle must not be consulted for fewer than two articles")
		return nil, nil
	}}

	budget := NewCallBudget(5)
	matcher := NewMatcher(oracle, budget, nil)
	clusters, fellBack := matcher.Match(context.Background(), matchArticles()[:1])
	if fellBack {
		t.Fatal("skipping a pointless call is not a fallback")
	}
	if len(clusters) != 1 || budget.Used() != 0 {
		t.Fatalf("expected 1 free singleton cluster, got %d (budget used %d)", len(clusters), budget.Used())
	}
}
