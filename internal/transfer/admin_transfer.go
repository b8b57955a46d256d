package transfer

import "github.com/maheshrc27/poster-api/internal/models"

type AdminGenerateRequest struct {
	FormatID       string                  `json:"formatId" validate:"omitempty,oneof=instagram_square instagram_portrait instagram_story facebook_post"`
	Recommendation *models.Recommendation  `json:"recommendation"`
	Occasion       *models.OccasionContext `json:"occasion"`
	Force          bool                    `json:"force"`
}
