package usecase

import (
	"reflect"
	"strings"
	"testing"

	"NewsDigest/internal/domain"
)

var paperOrder = []string{"The Hindu", "Indian Express", "Times of India", "Mint"}

func testMerger() *Merger {
	return NewMerger(NewPaperRank(paperOrder))
}

func TestMergeDeterminism(t *testing.T) {
	t.Parallel()

	cluster := domain.Cluster{Members: []domain.Article{
		{Newspaper: "Mint", Headline: "Markets rally", Summary: "Sensex rose 800 points. Banks led the gains.", Category: "Economy", Pages: []int{1}, Importance: 7},
		{Newspaper: "The Hindu", Headline: "Stocks surge on results", Summary: "Sensex rose 800 points. Foreign funds bought heavily.", Category: "Business", Pages: []int{13}, Importance: 6},
	}}

	merger := testMerger()
	first := merger.Build(cluster)
	second := merger.Build(cluster)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("merge is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestMergeHeadlineLongestBody(t *testing.T) {
	t.Parallel()

	cluster := domain.Cluster{Members: []domain.Article{
		{Newspaper: "The Hindu", Headline: "Short one", Summary: "Brief.", Category: "World", Pages: []int{2}},
		{Newspaper: "Mint", Headline: "Detailed account of the summit", Summary: "A much longer summary with many facts and figures included.", Category: "World", Pages: []int{4}},
	}}

	story := testMerger().Build(cluster)
	if story.Headline != "Detailed account of the summit" {
		t.Fatalf("headline should come from the longest body, got %q", story.Headline)
	}
}

func TestMergeHeadlineTieBrokenByNewspaperOrder(t *testing.T) {
	t.Parallel()

	cluster := domain.Cluster{Members: []domain.Article{
		{Newspaper: "Mint", Headline: "Mint headline", Summary: "Same length.", Category: "Economy", Pages: []int{1}},
		{Newspaper: "The Hindu", Headline: "Hindu headline", Summary: "Same length.", Category: "Economy", Pages: []int{1}},
	}}

	story := testMerger().Build(cluster)
	if story.Headline != "Hindu headline" {
		t.Fatalf("tie must go to the earlier configured newspaper, got %q", story.Headline)
	}
}

func TestMergeCategoryMajorityAndTieBreak(t *testing.T) {
	t.Parallel()

	majority := domain.Cluster{Members: []domain.Article{
		{Newspaper: "The Hindu", Headline: "A", Summary: "x", Category: "Economy", Pages: []int{1}},
		{Newspaper: "Indian Express", Headline: "B", Summary: "y", Category: "Business", Pages: []int{1}},
		{Newspaper: "Mint", Headline: "C", Summary: "z", Category: "Business", Pages: []int{1}},
	}}
	if got := testMerger().Build(majority).Category; got != "Business" {
		t.Fatalf("majority category expected Business, got %s", got)
	}

	tied := domain.Cluster{Members: []domain.Article{
		{Newspaper: "Mint", Headline: "A", Summary: "x", Category: "Economy", Pages: []int{1}},
		{Newspaper: "The Hindu", Headline: "B", Summary: "y", Category: "Politics", Pages: []int{1}},
	}}
	if got := testMerger().Build(tied).Category; got != "Politics" {
		t.Fatalf("tie must resolve by newspaper order of first occurrence, got %s", got)
	}
}

func TestMergeCitationCompleteness(t *testing.T) {
	t.Parallel()

	cluster := domain.Cluster{Members: []domain.Article{
		{Newspaper: "Times of India", Headline: "A", Summary: "one", Category: "India", Pages: []int{5, 6}},
		{Newspaper: "The Hindu", Headline: "B", Summary: "two", Category: "India", Pages: []int{3}},
		{Newspaper: "Mint", Headline: "C", Summary: "three", Category: "India", Pages: []int{9}},
	}}

	story := testMerger().Build(cluster)
	if len(story.Citations) != 3 {
		t.Fatalf("expected one citation per member, got %d", len(story.Citations))
	}

	// Citations follow the fixed newspaper ordering.
	wantOrder := []string{"The Hindu", "Times of India", "Mint"}
	for i, citation := range story.Citations {
		if citation.Newspaper != wantOrder[i] {
			t.Fatalf("citation %d newspaper = %s, want %s", i, citation.Newspaper, wantOrder[i])
		}
	}
	if !reflect.DeepEqual(story.Citations[1].Pages, []int{5, 6}) {
		t.Fatalf("citation pages drifted: %v", story.Citations[1].Pages)
	}
	if story.Contributors != 3 {
		t.Fatalf("contributor count = %d, want 3", story.Contributors)
	}
}

func TestMergeDeduplicatesSentences(t *testing.T) {
	t.Parallel()

	cluster := domain.Cluster{Members: []domain.Article{
		{Newspaper: "The Hindu", Headline: "A", Summary: "The dam project was approved. Construction starts in March.", Category: "Infrastructure", Pages: []int{1}},
		{Newspaper: "Mint", Headline: "B", Summary: "The dam project was approved. The budget is 240 billion rupees.", Category: "Infrastructure", Pages: []int{2}},
	}}

	story := testMerger().Build(cluster)
	if got := strings.Count(story.Summary, "The dam project was approved"); got != 1 {
		t.Fatalf("repeated sentence kept %d times, want 1 (%q)", got, story.Summary)
	}
	if !strings.Contains(story.Summary, "Construction starts in March.") {
		t.Fatalf("unique detail from first source lost: %q", story.Summary)
	}
	if !strings.Contains(story.Summary, "The budget is 240 billion rupees.") {
		t.Fatalf("unique detail from second source lost: %q", story.Summary)
	}
}

func TestMergeImportanceIsMax(t *testing.T) {
	t.Parallel()

	cluster := domain.Cluster{Members: []domain.Article{
		{Newspaper: "The Hindu", Headline: "A", Summary: "x", Category: "India", Pages: []int{1}, Importance: 4},
		{Newspaper: "Mint", Headline: "B", Summary: "y", Category: "India", Pages: []int{1}, Importance: 9},
	}}

	if got := testMerger().Build(cluster).Importance; got != 9 {
		t.Fatalf("importance = %d, want max of members (9)", got)
	}
}
