package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

// NoTextSuffix is appended to every background prompt.
const NoTextSuffix = " Absolutely no text, no words, no letters, no numbers, no typography, no logos, no watermark."

type PromptService interface {
	Build(ctx context.Context, kit *models.BrandKit, copyData models.CopyData, occasion *models.OccasionContext) (string, error)
}

type promptService struct {
	text TextGenerator
	log  *logger.Logger
}

func NewPromptService(text TextGenerator, log *logger.Logger) PromptService {
	return &promptService{text: text, log: log.With("service", "PromptService")}
}

const promptSystemPrompt = `You write prompts for an AI image generator. Describe ONLY a background
scene for a social media poster: setting, objects, lighting, composition and colour palette.
Never include text, letters, words, logos or signage. Avoid people unless the scene cannot work
without them. Leave calm negative space in the lower third for text to be placed later.
Reply with the prompt only, one paragraph, no preamble.`

func (s *promptService) Build(ctx context.Context, kit *models.BrandKit, copyData models.CopyData, occasion *models.OccasionContext) (string, error) {
	raw, err := s.text.Complete(ctx, TextRequest{
		System:      promptSystemPrompt,
		User:        buildPromptInstruction(kit, copyData, occasion),
		Temperature: 0.7,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.log.Warn("prompt generation failed, using template", "brand", kit.BrandName, "error", err)
		raw = ""
	}

	prompt := cleanPrompt(raw)
	if prompt == "" {
		s.log.Info("empty prompt response, using template", "brand", kit.BrandName)
		prompt = FallbackPrompt(kit, occasion)
	}
	return prompt + NoTextSuffix, nil
}

func buildPromptInstruction(kit *models.BrandKit, copyData models.CopyData, occasion *models.OccasionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Brand: %s\n", kit.BrandName)
	if kit.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", kit.Industry)
	}
	if kit.Location != nil {
		fmt.Fprintf(&b, "Location: %s\n", describeLocation(kit.Location))
	}
	fmt.Fprintf(&b, "Brand colours: primary %s, secondary %s, accent %s\n", kit.PrimaryColor, kit.SecondaryColor, kit.AccentColor)
	if kit.StyleNotes != "" {
		fmt.Fprintf(&b, "Style notes: %s\n", kit.StyleNotes)
	}
	fmt.Fprintf(&b, "Poster headline (for mood only, do not render): %s\n", copyData.Headline)
	if copyData.Subheadline != "" {
		fmt.Fprintf(&b, "Poster message (for mood only, do not render): %s\n", copyData.Subheadline)
	}
	if occasion != nil && occasion.Name != "" {
		fmt.Fprintf(&b, "Occasion: %s\n", occasion.Name)
		if occasion.VisualMood != "" {
			fmt.Fprintf(&b, "Visual mood: %s\n", occasion.VisualMood)
		}
		if occasion.ColorSuggestion != "" {
			fmt.Fprintf(&b, "Colour suggestion: %s\n", occasion.ColorSuggestion)
		}
	}
	return b.String()
}

func cleanPrompt(raw string) string {
	p := stripCodeFences(raw)
	p = strings.Trim(p, "\"' \n\t")
	return strings.Join(strings.Fields(p), " ")
}

// FallbackPrompt is the deterministic template used when the model returns nothing.
func FallbackPrompt(kit *models.BrandKit, occasion *models.OccasionContext) string {
	industry := kit.Industry
	if industry == "" {
		industry = "modern business"
	}
	location := "a contemporary setting"
	if kit.Location != nil {
		if d := describeLocation(kit.Location); d != "Global" {
			location = "a setting inspired by " + d
		}
	}
	mood := "warm, inviting"
	if occasion != nil && occasion.VisualMood != "" {
		mood = occasion.VisualMood
	}
	return fmt.Sprintf(
		"Professional photographic background for a %s brand in %s, %s atmosphere, "+
			"colour palette of %s and %s with %s highlights, soft natural lighting, shallow depth of field, "+
			"clean composition with open space in the lower third.",
		industry, location, mood, kit.PrimaryColor, kit.SecondaryColor, kit.AccentColor)
}
