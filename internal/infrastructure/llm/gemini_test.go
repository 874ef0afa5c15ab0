package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
)

func candidateResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func testClient(serverURL string) *GeminiClient {
	return NewGeminiClient(config.OracleConfig{
		Endpoint: serverURL,
		Model:    "test-model",
		APIKey:   "test-key",
	}, []string{"Politics", "Economy"})
}

func TestExtractArticlesParsesFencedPayload(t *testing.T) {
	t.Parallel()

	articleJSON := `[
	  {"headline": "Budget session opens", "summary": "Two sentences.", "category": "Politics", "pages": [1, 2], "importance": 8},
	  {"headline": "Old field shape", "summary": "s", "category": "Economy", "page": 7, "importance": 3}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, candidateResponse("```json\n"+articleJSON+"\n```"))
	}))
	defer server.Close()

	entries, err := testClient(server.URL).ExtractArticles(context.Background(), "The Hindu", "[PAGE 1]\ntext")
	if err != nil {
		t.Fatalf("ExtractArticles error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !reflect.DeepEqual(entries[0].Pages, []int{1, 2}) {
		t.Fatalf("pages = %v", entries[0].Pages)
	}
	// Singular "page" responses still map into the page set.
	if !reflect.DeepEqual(entries[1].Pages, []int{7}) {
		t.Fatalf("singular page not mapped: %v", entries[1].Pages)
	}
}

func TestExtractArticlesMalformedPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse("Sorry, I cannot help with that."))
	}))
	defer server.Close()

	_, err := testClient(server.URL).ExtractArticles(context.Background(), "Mint", "text")
	if err == nil || !strings.Contains(err.Error(), "malformed payload") {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}

func TestMatchArticlesParsesGroups(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse("[[0,3],[1,4,5]]"))
	}))
	defer server.Close()

	groups, err := testClient(server.URL).MatchArticles(context.Background(), []ports.MatchItem{
		{Index: 0, Headline: "a"}, {Index: 1, Headline: "b"},
	})
	if err != nil {
		t.Fatalf("MatchArticles error: %v", err)
	}

	want := [][]int{{0, 3}, {1, 4, 5}}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("groups = %v, want %v", groups, want)
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ExtractArticles(context.Background(), "Mint", "text")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerateMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient(config.OracleConfig{}, nil)
	if _, err := client.ExtractArticles(context.Background(), "Mint", "text"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"```json\n[1]\n```": "[1]",
		"```\n[2]\n```":     "[2]",
		"[3]":               "[3]",
		"  [4]  ":           "[4]",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
