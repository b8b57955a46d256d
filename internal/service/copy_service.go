package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

const opCopyGeneration = "copy_generation"

var errNoJSONObject = errors.New("no JSON object in response")

type CopyService interface {
	Generate(ctx context.Context, kit *models.BrandKit, occasion *models.OccasionContext, rec *models.Recommendation) (models.CopyData, error)
}

type copyService struct {
	text TextGenerator
	log  *logger.Logger
}

func NewCopyService(text TextGenerator, log *logger.Logger) CopyService {
	return &copyService{text: text, log: log.With("service", "CopyService")}
}

const copySystemPrompt = `You are a senior social media copywriter. You write short, punchy poster copy
that matches a brand's voice. Respond with a single JSON object and nothing else, using exactly
these fields: "headline" (max 6 words), "subheadline" (max 12 words), "body" (2-3 short lines),
"cta" (max 4 words), "hashtags" (array of 3-6 strings).`

func (s *copyService) Generate(ctx context.Context, kit *models.BrandKit, occasion *models.OccasionContext, rec *models.Recommendation) (models.CopyData, error) {
	raw, err := s.text.Complete(ctx, TextRequest{
		System: copySystemPrompt,
		User:   buildCopyInstruction(kit, occasion, rec),
		JSON:   true,
	})
	if err != nil {
		return models.CopyData{}, apperr.Upstream(opCopyGeneration, "text generation failed", err)
	}
	if strings.TrimSpace(raw) == "" {
		return models.CopyData{}, apperr.Upstream(opCopyGeneration, "empty response", nil)
	}

	copyData, err := ParseCopy(raw)
	if err != nil {
		s.log.Warn("unparseable copy response", "error", err, "raw", logger.Truncate(raw, 500))
		return models.CopyData{}, apperr.Upstream(opCopyGeneration, "invalid copy payload", err)
	}
	return copyData, nil
}

func buildCopyInstruction(kit *models.BrandKit, occasion *models.OccasionContext, rec *models.Recommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Brand: %s\n", kit.BrandName)
	if kit.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", kit.Industry)
	}
	if kit.Tagline != "" {
		fmt.Fprintf(&b, "Tagline: %s\n", kit.Tagline)
	}
	fmt.Fprintf(&b, "Tone: %s\n", kit.Tone)
	if kit.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", kit.TargetAudience)
	}
	if kit.Location != nil {
		fmt.Fprintf(&b, "Location: %s\n", describeLocation(kit.Location))
		if kit.Location.Currency != "" {
			fmt.Fprintf(&b, "Currency: %s\n", kit.Location.Currency)
		}
	}
	fmt.Fprintf(&b, "Write in language: %s\n", kit.Language)
	if kit.StyleNotes != "" {
		fmt.Fprintf(&b, "Style notes: %s\n", kit.StyleNotes)
	}
	if kit.SampleContent != "" {
		fmt.Fprintf(&b, "Example of the brand's voice: %s\n", kit.SampleContent)
	}

	switch {
	case rec != nil && strings.TrimSpace(rec.Topic) != "":
		b.WriteString("\nCONTENT DIRECTION (takes priority over any occasion or generic theme):\n")
		fmt.Fprintf(&b, "The copy MUST be about %s.\n", rec.Topic)
		if rec.Theme != "" {
			fmt.Fprintf(&b, "Theme: %s\n", rec.Theme)
		}
		if rec.Description != "" {
			fmt.Fprintf(&b, "Details: %s\n", rec.Description)
		}
		if rec.SuggestedHeadline != "" {
			fmt.Fprintf(&b, "Suggested headline: %s\n", rec.SuggestedHeadline)
		}
		if rec.SuggestedCTA != "" {
			fmt.Fprintf(&b, "Suggested CTA: %s\n", rec.SuggestedCTA)
		}
		if rec.Mood != "" {
			fmt.Fprintf(&b, "Mood: %s\n", rec.Mood)
		}
		if rec.Urgency != "" {
			fmt.Fprintf(&b, "Urgency: %s\n", rec.Urgency)
		}
		if len(rec.Hashtags) > 0 {
			fmt.Fprintf(&b, "Include hashtags: %s\n", strings.Join(rec.Hashtags, " "))
		}
	case occasion != nil && occasion.Name != "":
		fmt.Fprintf(&b, "\nOccasion: %s (%s)\n", occasion.Name, occasion.Category)
		if occasion.MessagingTone != "" {
			fmt.Fprintf(&b, "Messaging tone: %s\n", occasion.MessagingTone)
		}
	default:
		b.WriteString("\nWrite an engaging everyday post that promotes the brand.\n")
	}

	return b.String()
}

func describeLocation(loc *models.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.Country, loc.Continent} {
		if p != "" && p != "Global" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Global"
	}
	return strings.Join(parts, ", ")
}

// ParseCopy extracts the first balanced JSON object from raw model output.
func ParseCopy(raw string) (models.CopyData, error) {
	span, err := extractJSONObject(raw)
	if err != nil {
		return models.CopyData{}, err
	}

	var out struct {
		Headline    string   `json:"headline"`
		Subheadline string   `json:"subheadline"`
		Body        string   `json:"body"`
		CTA         string   `json:"cta"`
		Hashtags    []string `json:"hashtags"`
	}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return models.CopyData{}, fmt.Errorf("decode copy: %w", err)
	}

	return models.CopyData{
		Headline:    strings.TrimSpace(out.Headline),
		Subheadline: strings.TrimSpace(out.Subheadline),
		Body:        strings.TrimSpace(out.Body),
		CTA:         strings.TrimSpace(out.CTA),
		Hashtags:    NormalizeHashtags(out.Hashtags),
	}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first balanced {...} span, ignoring braces inside strings.
func extractJSONObject(raw string) (string, error) {
	s := stripCodeFences(raw)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoJSONObject
}

// NormalizeHashtags prefixes every tag with '#' exactly once and drops empties.
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimLeft(tag, "#")
		tag = strings.ReplaceAll(tag, " ", "")
		if tag == "" {
			continue
		}
		out = append(out, "#"+tag)
	}
	return out
}
