package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PressRadar/internal/domain"
	"PressRadar/internal/ports"
)

// Notifier posts a digest of newly archived press releases to a Telegram
// chat via the bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest formats the sweep's new entries and posts them as one
// Markdown message.
func (n *Notifier) PublishDigest(ctx context.Context, entries []domain.ArchiveEntry) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if len(entries) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildDigest(entries))
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

// buildDigest renders one line per entry: program, channel and scope, with
// the airing date when the release targets a specific episode.
func buildDigest(entries []domain.ArchiveEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d nieuwe persberichten*\n\n", len(entries))
	for _, entry := range entries {
		scope := string(entry.MatchType)
		if entry.MatchType == domain.MatchEpisode && entry.BroadcastDate != nil {
			scope = fmt.Sprintf("%s, %s", entry.MatchType, *entry.BroadcastDate)
		}
		fmt.Fprintf(&b, "- *%s* (%s, %s)\n%s\n\n", entry.Program, entry.Channel, scope, entry.OriginalURL)
	}
	return strings.TrimSpace(b.String())
}
