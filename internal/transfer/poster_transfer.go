package transfer

import "github.com/maheshrc27/poster-api/internal/models"

type GenerateRequest struct {
	BrandKitID     string                  `json:"brandKitId" validate:"required,uuid"`
	FormatID       string                  `json:"formatId" validate:"omitempty,oneof=instagram_square instagram_portrait instagram_story facebook_post"`
	Recommendation *models.Recommendation  `json:"recommendation"`
	Occasion       *models.OccasionContext `json:"occasion"`
	Force          bool                    `json:"force"`
}

type GenerateResponse struct {
	PosterID string `json:"posterId"`
	Existing bool   `json:"existing"`
	Status   string `json:"status"`
}

type CopyEditRequest struct {
	Headline    *string  `json:"headline" validate:"omitempty,max=80"`
	Subheadline *string  `json:"subheadline" validate:"omitempty,max=160"`
	Body        *string  `json:"body" validate:"omitempty,max=600"`
	CTA         *string  `json:"cta" validate:"omitempty,max=40"`
	Hashtags    []string `json:"hashtags" validate:"omitempty,max=30,dive,max=60"`
}

func (r *CopyEditRequest) Apply(c *models.CopyData) {
	setString(&c.Headline, r.Headline)
	setString(&c.Subheadline, r.Subheadline)
	setString(&c.Body, r.Body)
	setString(&c.CTA, r.CTA)
	if r.Hashtags != nil {
		c.Hashtags = r.Hashtags
	}
}
