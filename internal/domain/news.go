package domain

import "time"

// ExtractionMethod records how a page's text was obtained.
type ExtractionMethod string

const (
	MethodDirect ExtractionMethod = "direct"
	MethodOCR    ExtractionMethod = "ocr"
	MethodNone   ExtractionMethod = "none"
)

// CategoryGeneral is the catch-all for labels outside the configured vocabulary.
const CategoryGeneral = "General"

// PageText is one prepared page of a newspaper PDF.
// Numbers are 1-based, contiguous and unique within a SourceDocument.
type PageText struct {
	Number    int
	Text      string
	Method    ExtractionMethod
	NoContent bool
}

// SourceDocument is one newspaper's PDF for the day as an ordered page sequence.
// Immutable once built.
type SourceDocument struct {
	Newspaper string
	Date      time.Time
	Pages     []PageText
}

// Article is one discrete news item extracted from a single newspaper.
// Never mutated after creation; corrections create a new Article.
type Article struct {
	Newspaper  string
	Headline   string
	Summary    string
	Category   string
	Pages      []int
	Importance int
	Method     ExtractionMethod
}

// Cluster groups Articles believed to cover one real-world event.
// For a given day, clusters partition the full Article set.
type Cluster struct {
	Members []Article
}

// Citation points a reader back to the original page of one contributor.
type Citation struct {
	Newspaper string `json:"newspaper"`
	Pages     []int  `json:"pages"`
}

// MergedStory is the single reconciled record produced from a Cluster.
type MergedStory struct {
	Headline     string     `json:"headline"`
	Summary      string     `json:"summary"`
	Category     string     `json:"category"`
	Citations    []Citation `json:"citations"`
	Contributors int        `json:"contributors"`
	Importance   int        `json:"importance"`
}

// CategoryGroup is one ordered category section of the Digest.
type CategoryGroup struct {
	Category string        `json:"category"`
	Stories  []MergedStory `json:"stories"`
}

// Digest is the day's final category-organized collection of merged stories.
type Digest struct {
	Date        time.Time       `json:"date"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Newspapers  []string        `json:"newspapers"`
	TotalCount  int             `json:"totalStories"`
	Categories  []CategoryGroup `json:"categories"`
}

// RunStatus is the per-run outcome signal surfaced to the orchestrator.
type RunStatus struct {
	RunID           string    `json:"runId"`
	Date            time.Time `json:"date"`
	Extracted       []string  `json:"extracted"`
	Failed          []string  `json:"failed"`
	SkippedForQuota []string  `json:"skippedForQuota"`
	MatcherFallback bool      `json:"matcherFallback"`
	OracleCalls     int       `json:"oracleCalls"`
}
