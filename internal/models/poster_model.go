package models

import "time"

type Poster struct {
	ID          string    `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	BrandKitID  string    `db:"brand_kit_id" json:"brand_kit_id"`
	Headline    string    `db:"headline" json:"headline"`
	Subheadline string    `db:"subheadline" json:"subheadline"`
	Body        string    `db:"body" json:"body"`
	CTA         string    `db:"cta" json:"cta"`
	Hashtags    []string  `db:"hashtags" json:"hashtags"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Theme       string    `db:"theme" json:"theme"`
	Topic       string    `db:"topic" json:"topic"`
	FormatID    string    `db:"format_id" json:"format_id"`
	Status      string    `db:"status" json:"status"` // generated, approved, posted, failed
	Error       string    `db:"error" json:"error,omitempty"`
	Version     int       `db:"version" json:"version"`
	PostDate    string    `db:"post_date" json:"post_date"` // YYYY-MM-DD in the brand kit's timezone
	// DailyGuard counts the poster toward the one-per-day limit for its brand kit.
	DailyGuard  bool      `db:"daily_guard" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PosterStatusGenerated = "generated"
	PosterStatusApproved  = "approved"
	PosterStatusPosted    = "posted"
	PosterStatusFailed    = "failed"
)

func (p *Poster) Copy() CopyData {
	return CopyData{
		Headline:    p.Headline,
		Subheadline: p.Subheadline,
		Body:        p.Body,
		CTA:         p.CTA,
		Hashtags:    p.Hashtags,
	}
}

func (p *Poster) SetCopy(c CopyData) {
	p.Headline = c.Headline
	p.Subheadline = c.Subheadline
	p.Body = c.Body
	p.CTA = c.CTA
	p.Hashtags = c.Hashtags
}

// Caption is the text published alongside the poster image.
func (p *Poster) Caption() string {
	caption := p.Body
	for i, tag := range p.Hashtags {
		if i == 0 {
			caption += "\n\n"
		} else {
			caption += " "
		}
		caption += tag
	}
	return caption
}
