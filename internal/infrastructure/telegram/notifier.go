package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Notifier posts the daily run report to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	siteURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token, chat identifier and the published site URL.
func NewNotifier(botToken, chatID, siteURL string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		siteURL:  siteURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishRunReport sends a Markdown summary of the finished run.
func (n *Notifier) PublishRunReport(ctx context.Context, digest domain.Digest, status domain.RunStatus) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildReport(digest, status, n.siteURL))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func buildReport(digest domain.Digest, status domain.RunStatus, siteURL string) string {
	var sb strings.Builder
	sb.WriteString("📰 *Daily Brief is ready*\n\n")
	fmt.Fprintf(&sb, "📅 %s\n", digest.Date.Format("2 January 2006"))
	fmt.Fprintf(&sb, "📊 %d stories · %d newspapers\n", digest.TotalCount, len(digest.Newspapers))

	if lines := topCategories(digest, 5); len(lines) > 0 {
		sb.WriteString("\n*Top categories:*\n")
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	if len(status.Failed) > 0 {
		fmt.Fprintf(&sb, "\n⚠️ Failed: %s\n", strings.Join(status.Failed, ", "))
	}
	if len(status.SkippedForQuota) > 0 {
		fmt.Fprintf(&sb, "⚠️ Skipped for quota: %s\n", strings.Join(status.SkippedForQuota, ", "))
	}
	if status.MatcherFallback {
		sb.WriteString("⚠️ Cross-source matching fell back to singletons\n")
	}

	if siteURL != "" {
		fmt.Fprintf(&sb, "\n[📖 Read today's digest](%s)", siteURL)
	}

	return sb.String()
}

func topCategories(digest domain.Digest, limit int) []string {
	type count struct {
		category string
		stories  int
	}

	counts := make([]count, 0, len(digest.Categories))
	for _, group := range digest.Categories {
		counts = append(counts, count{category: group.Category, stories: len(group.Stories)})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].stories > counts[j].stories
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}

	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("  › %s (%d)", c.category, c.stories))
	}
	return lines
}
