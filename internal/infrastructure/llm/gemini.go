package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
)

// GeminiClient implements ports.Oracle against the Gemini generateContent API.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	categories []string
	httpClient *http.Client
}

var _ ports.Oracle = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration. The category list is
// embedded in the extraction prompt; coercion still happens in the usecase.
func NewGeminiClient(cfg config.OracleConfig, categories []string) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiClient{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		categories: categories,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExtractArticles asks the model for every discrete article in one newspaper,
// in a single call over the full page-tagged text.
func (c *GeminiClient) ExtractArticles(ctx context.Context, newspaper, pageTaggedText string) ([]ports.ArticleEntry, error) {
	prompt := fmt.Sprintf(`You are a senior news editor. Extract EVERY distinct news article from today's %s.

Rules:
- Extract ALL news articles, including minor ones.
- SKIP: advertisements, stock tables, weather forecasts, TV schedules, classifieds, obituaries, horoscopes, crosswords.
- Identify page numbers from [PAGE N] markers in the text.
- Category must be exactly one of: %s
- Importance: rate each article 1-10 by national/global significance. Front-page lead stories = 8-10, minor briefs = 1-3.

Return ONLY a valid JSON array. Each item must have exactly these fields:
- "headline": clear factual headline, max 12 words
- "summary": 2-3 sentences in neutral simple English with key facts and figures
- "category": one category from the list above
- "pages": array of integer page numbers the article spans
- "importance": integer 1-10

Full newspaper text:
%s

Return ONLY the JSON array. No markdown fences, no explanation, no preamble.`,
		newspaper, strings.Join(c.categories, ", "), pageTaggedText)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", newspaper, err)
	}

	var items []struct {
		Headline   string `json:"headline"`
		Summary    string `json:"summary"`
		Category   string `json:"category"`
		Pages      []int  `json:"pages"`
		Page       int    `json:"page"`
		Importance int    `json:"importance"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, fmt.Errorf("extract %s: malformed payload: %w", newspaper, err)
	}

	entries := make([]ports.ArticleEntry, 0, len(items))
	for _, item := range items {
		pages := item.Pages
		if len(pages) == 0 && item.Page > 0 {
			pages = []int{item.Page}
		}
		entries = append(entries, ports.ArticleEntry{
			Headline:   item.Headline,
			Summary:    item.Summary,
			Category:   item.Category,
			Pages:      pages,
			Importance: item.Importance,
		})
	}
	return entries, nil
}

// MatchArticles presents every article across all newspapers and asks for
// groups of indices describing the same event.
func (c *GeminiClient) MatchArticles(ctx context.Context, items []ports.MatchItem) ([][]int, error) {
	listing, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal match items: %w", err)
	}

	prompt := fmt.Sprintf(`You are a news editor. Below is a JSON array of articles from today's newspapers, each with an "Index", "Headline" and "Summary".

Group the indices of articles that report the SAME real-world event. Only group articles that clearly cover one event; leave everything else out.

Return ONLY a valid JSON array of integer arrays, e.g. [[0,4],[2,7,9]]. Indices not listed are treated as unique stories. No markdown fences, no explanation.

Articles:
%s`, listing)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("match articles: %w", err)
	}

	var groups [][]int
	if err := json.Unmarshal([]byte(stripFences(raw)), &groups); err != nil {
		return nil, fmt.Errorf("match articles: malformed payload: %w", err)
	}
	return groups, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty candidate list")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// stripFences removes the markdown code fences models wrap JSON in despite
// being told not to.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
