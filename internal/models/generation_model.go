package models

import "time"

type CopyData struct {
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline"`
	Body        string   `json:"body"`
	CTA         string   `json:"cta"`
	Hashtags    []string `json:"hashtags"`
}

// Recommendation is a one-shot content direction. It overrides occasion-driven copy.
type Recommendation struct {
	Theme             string   `json:"theme"`
	Topic             string   `json:"topic"`
	Description       string   `json:"description"`
	SuggestedHeadline string   `json:"suggested_headline"`
	SuggestedCTA      string   `json:"suggested_cta"`
	Mood              string   `json:"mood"`
	Urgency           string   `json:"urgency"`
	Hashtags          []string `json:"hashtags"`
}

type OccasionContext struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	VisualMood      string `json:"visual_mood"`
	MessagingTone   string `json:"messaging_tone"`
	ColorSuggestion string `json:"color_suggestion"`
}

type GenerationStatus string

const (
	GenerationPending         GenerationStatus = "pending"
	GenerationGeneratingCopy  GenerationStatus = "generating_copy"
	GenerationGeneratingImage GenerationStatus = "generating_image"
	GenerationCompositing     GenerationStatus = "compositing"
	GenerationUploading       GenerationStatus = "uploading"
	GenerationComplete        GenerationStatus = "complete"
	GenerationFailed          GenerationStatus = "failed"
)

// Done reports whether no further updates follow this status.
func (s GenerationStatus) Done() bool {
	return s == GenerationComplete || s == GenerationFailed
}

type GenerationStatusUpdate struct {
	PosterID  string           `json:"poster_id"`
	Status    GenerationStatus `json:"status"`
	Progress  int              `json:"progress"`
	Message   string           `json:"message"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type ImprovePromptPolicy string

const (
	ImproveAlways     ImprovePromptPolicy = "always"
	ImproveBestEffort ImprovePromptPolicy = "best-effort"
	ImproveNever      ImprovePromptPolicy = "never"
)

func ParseImprovePolicy(s string) ImprovePromptPolicy {
	switch ImprovePromptPolicy(s) {
	case ImproveAlways, ImproveNever:
		return ImprovePromptPolicy(s)
	default:
		return ImproveBestEffort
	}
}
