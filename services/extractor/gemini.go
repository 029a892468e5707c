package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"schedbot/models"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const geminiPrompt = `You extract meeting details from one chat message.
Reply with a single JSON object and nothing else, using exactly these keys:
{"purpose": "", "durationMinutes": 0, "start": "", "attendees": []}
- purpose: short phrase describing what the meeting is about, or ""
- durationMinutes: integer minutes, or 0 when not mentioned
- start: requested start as RFC3339 in %s, or "" when not mentioned;
  never a time in the past relative to %s
- attendees: email addresses mentioned, lowercase
Message: %s`

// GeminiExtractor delegates phrase understanding to a generative model
// and falls back to the regex extractor whenever the model is
// unavailable or answers with something unusable.
type GeminiExtractor struct {
	model    *genai.GenerativeModel
	fallback *RegexExtractor
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGeminiExtractor builds the model client. Errors are returned
// rather than fatal so callers can keep running on the regex extractor
// alone.
func NewGeminiExtractor(apiKey string, fallback *RegexExtractor, logger *zap.Logger) (*GeminiExtractor, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiExtractor{
		model:    client.GenerativeModel("models/gemini-1.5-pro"),
		fallback: fallback,
		timeout:  10 * time.Second,
		logger:   logger,
	}, nil
}

type geminiReply struct {
	Purpose         string   `json:"purpose"`
	DurationMinutes int      `json:"durationMinutes"`
	Start           string   `json:"start"`
	Attendees       []string `json:"attendees"`
}

func (g *GeminiExtractor) Extract(text string, now time.Time) models.PartialMeetingInfo {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	loc := g.fallback.Loc
	rendered := fmt.Sprintf(geminiPrompt, loc.String(), now.In(loc).Format(time.RFC3339), text)

	resp, err := g.model.GenerateContent(ctx, genai.Text(rendered))
	if err != nil || len(resp.Candidates) == 0 {
		g.logger.Warn("gemini extraction failed, using regex fallback", zap.Error(err))
		return g.fallback.Extract(text, now)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	var reply geminiReply
	raw := strings.TrimSpace(sb.String())
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "`\n ")
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		g.logger.Warn("gemini reply was not valid JSON, using regex fallback", zap.Error(err))
		return g.fallback.Extract(text, now)
	}

	info := models.PartialMeetingInfo{
		Purpose:         strings.TrimSpace(reply.Purpose),
		DurationMinutes: reply.DurationMinutes,
	}
	for _, a := range reply.Attendees {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			info.Attendees = append(info.Attendees, a)
		}
	}
	if reply.Start != "" {
		if start, err := time.Parse(time.RFC3339, reply.Start); err == nil && start.After(now) {
			start = start.In(loc)
			info.TimeWindow = &models.TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}
		}
	}

	// The model sometimes answers with prose only; make sure an empty
	// reply still benefits from pattern matching.
	if info.Empty() {
		return g.fallback.Extract(text, now)
	}
	return info
}
