package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"PressRadar/internal/config"
	"PressRadar/internal/domain"
	"PressRadar/internal/ports"
)

var (
	// ErrBodyTooShort means extraction produced too little text to be worth
	// a classification call.
	ErrBodyTooShort = errors.New("article body too short to classify")
	// ErrMalformedResponse means the service answered but not with the
	// expected structure. Distinct from transport errors so callers can
	// tell "unreachable" from "returned garbage".
	ErrMalformedResponse = errors.New("malformed classification response")
)

// Classifier judges press releases through an OpenAI-compatible
// chat-completions API.
type Classifier struct {
	endpoint   string
	model      string
	apiKey     string
	maxIntro   int
	minBody    int
	httpClient *http.Client
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier builds an adapter from configuration; client may be nil.
func NewClassifier(cfg config.ClassifierConfig, client *http.Client) *Classifier {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Classifier{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxIntro:   cfg.MaxIntroChars,
		minBody:    cfg.MinBodyChars,
		httpClient: client,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify submits the article intro for classification and decodes the
// structured judgment. The body is truncated to a bounded prefix: the intro
// is enough signal and full texts waste tokens.
func (c *Classifier) Classify(ctx context.Context, req ports.ClassifyRequest) (*domain.ClassificationResult, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("classifier misconfigured")
	}
	if utf8.RuneCountInString(req.Body) < c.minBody {
		return nil, ErrBodyTooShort
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "user", Content: c.buildPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal classify payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("classify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("classifier error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrMalformedResponse)
	}

	result, err := parseResult(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Classifier) buildPrompt(req ports.ClassifyRequest) string {
	intro := req.Body
	if c.maxIntro > 0 && utf8.RuneCountInString(intro) > c.maxIntro {
		intro = string([]rune(intro)[:c.maxIntro])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this press release from %s.\n\n", req.SourceName)
	fmt.Fprintf(&b, "TITLE: %s\n", req.Title)
	fmt.Fprintf(&b, "PUBLISHED: %s\n", req.PublicationDate)
	fmt.Fprintf(&b, "INTRO: %s\n\n", intro)
	b.WriteString(`YOUR TASK:
1. Which TV PROGRAM is this about?
2. Is this about one SPECIFIC EPISODE or airing (e.g. "in episode 3", "tomorrow", "Tuesday 20/02") -> match_type "episode"
3. Or is this GENERAL program news (e.g. "new season starts", "these are the candidates", "program X returns") -> match_type "season"
4. When match_type is "episode" and the text mentions an airing date, resolve it to an absolute date. Resolve relative phrasing such as "vanaf 2 maart" or "vanavond"/"tonight" against the PUBLISHED date above.

Answer with a single JSON object and nothing else:
{
  "program_title": "program name (e.g. De Mol)",
  "match_type": "episode" or "season",
  "broadcast_date": "YYYY-MM-DD" (only when match_type is "episode" and a date is inferable from the text, otherwise null),
  "summary": "the first 2-3 sentences of the article as a summary",
  "ignore": false (true when this is not news about a TV program at all, e.g. corporate financial results)
}`)
	return b.String()
}

// parseResult strips any fenced-block wrapping the model may add and decodes
// the judgment.
func parseResult(raw string) (*domain.ClassificationResult, error) {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)

	var result domain.ClassificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Ignore && !result.MatchType.Valid() {
		return nil, fmt.Errorf("%w: unknown match_type %q", ErrMalformedResponse, result.MatchType)
	}
	if result.MatchType != domain.MatchEpisode {
		result.BroadcastDate = nil
	}
	return &result, nil
}
