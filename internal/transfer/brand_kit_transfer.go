package transfer

import "github.com/maheshrc27/poster-api/internal/models"

type BrandKitRequest struct {
	BrandName      string           `json:"brand_name" validate:"required,max=120"`
	Industry       string           `json:"industry" validate:"max=120"`
	Tagline        string           `json:"tagline" validate:"max=200"`
	PrimaryColor   string           `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string           `json:"secondary_color" validate:"omitempty,hexcolor"`
	AccentColor    string           `json:"accent_color" validate:"omitempty,hexcolor"`
	LogoURL        string           `json:"logo_url" validate:"omitempty,url"`
	Tone           string           `json:"tone" validate:"max=60"`
	StyleNotes     string           `json:"style_notes" validate:"max=2000"`
	Location       *models.Location `json:"location"`
	TargetAudience string           `json:"target_audience" validate:"max=500"`
	Platforms      []string         `json:"platforms" validate:"omitempty,dive,oneof=instagram facebook linkedin x tiktok"`
	Language       string           `json:"language" validate:"omitempty,min=2,max=10"`
	SampleContent  string           `json:"sample_content" validate:"max=4000"`
}

func (r *BrandKitRequest) ToModel() *models.BrandKit {
	return &models.BrandKit{
		BrandName:      r.BrandName,
		Industry:       r.Industry,
		Tagline:        r.Tagline,
		PrimaryColor:   r.PrimaryColor,
		SecondaryColor: r.SecondaryColor,
		AccentColor:    r.AccentColor,
		LogoURL:        r.LogoURL,
		Tone:           r.Tone,
		StyleNotes:     r.StyleNotes,
		Location:       r.Location,
		TargetAudience: r.TargetAudience,
		Platforms:      r.Platforms,
		Language:       r.Language,
		SampleContent:  r.SampleContent,
	}
}

// BrandKitPatch is a partial update; nil fields are left unchanged.
type BrandKitPatch struct {
	BrandName      *string          `json:"brand_name,omitempty" validate:"omitempty,min=1,max=120"`
	Industry       *string          `json:"industry,omitempty" validate:"omitempty,max=120"`
	Tagline        *string          `json:"tagline,omitempty" validate:"omitempty,max=200"`
	PrimaryColor   *string          `json:"primary_color,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor *string          `json:"secondary_color,omitempty" validate:"omitempty,hexcolor"`
	AccentColor    *string          `json:"accent_color,omitempty" validate:"omitempty,hexcolor"`
	LogoURL        *string          `json:"logo_url,omitempty" validate:"omitempty"`
	Tone           *string          `json:"tone,omitempty" validate:"omitempty,max=60"`
	StyleNotes     *string          `json:"style_notes,omitempty" validate:"omitempty,max=2000"`
	Location       *models.Location `json:"location,omitempty"`
	TargetAudience *string          `json:"target_audience,omitempty" validate:"omitempty,max=500"`
	Platforms      []string         `json:"platforms,omitempty" validate:"omitempty,dive,oneof=instagram facebook linkedin x tiktok"`
	Language       *string          `json:"language,omitempty" validate:"omitempty,min=2,max=10"`
	SampleContent  *string          `json:"sample_content,omitempty" validate:"omitempty,max=4000"`
}

func (p *BrandKitPatch) Apply(kit *models.BrandKit) {
	setString(&kit.BrandName, p.BrandName)
	setString(&kit.Industry, p.Industry)
	setString(&kit.Tagline, p.Tagline)
	setString(&kit.PrimaryColor, p.PrimaryColor)
	setString(&kit.SecondaryColor, p.SecondaryColor)
	setString(&kit.AccentColor, p.AccentColor)
	setString(&kit.LogoURL, p.LogoURL)
	setString(&kit.Tone, p.Tone)
	setString(&kit.StyleNotes, p.StyleNotes)
	setString(&kit.TargetAudience, p.TargetAudience)
	setString(&kit.Language, p.Language)
	setString(&kit.SampleContent, p.SampleContent)
	if p.Location != nil {
		kit.Location = p.Location
	}
	if p.Platforms != nil {
		kit.Platforms = p.Platforms
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

type OnboardingRequest struct {
	BrandKit BrandKitRequest `json:"brand_kit" validate:"required"`
}
