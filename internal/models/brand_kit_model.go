package models

import (
	"regexp"
	"strings"
	"time"
)

const (
	DefaultPrimaryColor   = "#1E40AF"
	DefaultSecondaryColor = "#FFFFFF"
	DefaultAccentColor    = "#F59E0B"
	DefaultLanguage       = "en"
	DefaultTone           = "professional"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type Location struct {
	Country   string   `json:"country"`
	City      string   `json:"city"`
	Continent string   `json:"continent"`
	Timezone  string   `json:"timezone"`
	Currency  string   `json:"currency"`
	Languages []string `json:"languages"`
}

// GlobalLocation is used whenever a brand kit has no location configured.
func GlobalLocation() Location {
	return Location{
		Country:   "Global",
		City:      "",
		Continent: "Global",
		Timezone:  "UTC",
		Currency:  "USD",
		Languages: []string{"English"},
	}
}

type BrandKit struct {
	ID             string    `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	BrandName      string    `db:"brand_name" json:"brand_name"`
	Industry       string    `db:"industry" json:"industry"`
	Tagline        string    `db:"tagline" json:"tagline"`
	PrimaryColor   string    `db:"primary_color" json:"primary_color"`
	SecondaryColor string    `db:"secondary_color" json:"secondary_color"`
	AccentColor    string    `db:"accent_color" json:"accent_color"`
	LogoURL        string    `db:"logo_url" json:"logo_url"`
	Tone           string    `db:"tone" json:"tone"`
	StyleNotes     string    `db:"style_notes" json:"style_notes"`
	Location       *Location `db:"location" json:"location"`
	TargetAudience string    `db:"target_audience" json:"target_audience"`
	Platforms      []string  `db:"platforms" json:"platforms"`
	Language       string    `db:"language" json:"language"`
	SampleContent  string    `db:"sample_content" json:"sample_content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Normalize applies defaults once, at the store boundary, so callers can rely on
// well-formed colors and a non-nil location.
func (b *BrandKit) Normalize() *BrandKit {
	b.PrimaryColor = NormalizeHex(b.PrimaryColor, DefaultPrimaryColor)
	b.SecondaryColor = NormalizeHex(b.SecondaryColor, DefaultSecondaryColor)
	b.AccentColor = NormalizeHex(b.AccentColor, DefaultAccentColor)

	if b.Location == nil || (b.Location.Country == "" && b.Location.City == "" && b.Location.Timezone == "") {
		loc := GlobalLocation()
		b.Location = &loc
	}
	if b.Location.Timezone == "" {
		b.Location.Timezone = "UTC"
	}
	if len(b.Location.Languages) == 0 {
		b.Location.Languages = []string{"English"}
	}
	if strings.TrimSpace(b.Language) == "" {
		b.Language = DefaultLanguage
	}
	if strings.TrimSpace(b.Tone) == "" {
		b.Tone = DefaultTone
	}
	if len(b.Platforms) == 0 {
		b.Platforms = []string{"instagram"}
	}
	return b
}

// Timezone returns the brand kit's IANA zone, falling back to UTC.
func (b *BrandKit) Timezone() string {
	if b.Location == nil || b.Location.Timezone == "" {
		return "UTC"
	}
	return b.Location.Timezone
}

// NormalizeHex returns value as an upper-case #RRGGBB string, or fallback when
// value is not a well-formed hex color.
func NormalizeHex(value, fallback string) string {
	v := strings.TrimSpace(value)
	if v != "" && !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if !hexColorPattern.MatchString(v) {
		return fallback
	}
	if len(v) == 4 {
		v = "#" + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2) + strings.Repeat(v[3:4], 2)
	}
	return strings.ToUpper(v)
}
