package service

import (
	"strings"
	"time"

	"github.com/maheshrc27/poster-api/internal/models"
)

// occasionLookahead lets a run promote an occasion a few days before it happens.
const occasionLookahead = 3

type occasion struct {
	month   time.Month
	day     int
	country string // empty matches every country
	ctx     models.OccasionContext
}

var occasionCalendar = []occasion{
	{time.January, 1, "", models.OccasionContext{Name: "New Year's Day", Category: "holiday", VisualMood: "celebratory fireworks, sparkling lights", MessagingTone: "hopeful and fresh", ColorSuggestion: "gold and midnight blue"}},
	{time.February, 14, "", models.OccasionContext{Name: "Valentine's Day", Category: "holiday", VisualMood: "romantic, soft petals and warm light", MessagingTone: "affectionate", ColorSuggestion: "red and blush pink"}},
	{time.March, 8, "", models.OccasionContext{Name: "International Women's Day", Category: "awareness", VisualMood: "empowering, bright and confident", MessagingTone: "inspiring", ColorSuggestion: "purple and white"}},
	{time.April, 22, "", models.OccasionContext{Name: "Earth Day", Category: "awareness", VisualMood: "lush greenery, natural light", MessagingTone: "responsible and caring", ColorSuggestion: "green and earth brown"}},
	{time.May, 1, "", models.OccasionContext{Name: "Workers' Day", Category: "holiday", VisualMood: "energetic, hands at work", MessagingTone: "appreciative", ColorSuggestion: "red and warm orange"}},
	{time.May, 27, "NG", models.OccasionContext{Name: "Children's Day", Category: "national", VisualMood: "playful, colourful toys and balloons", MessagingTone: "joyful", ColorSuggestion: "bright primaries"}},
	{time.June, 12, "NG", models.OccasionContext{Name: "Democracy Day", Category: "national", VisualMood: "proud, national colours", MessagingTone: "patriotic", ColorSuggestion: "green and white"}},
	{time.July, 4, "US", models.OccasionContext{Name: "Independence Day", Category: "national", VisualMood: "fireworks over a summer night", MessagingTone: "patriotic and festive", ColorSuggestion: "red, white and blue"}},
	{time.October, 1, "NG", models.OccasionContext{Name: "Independence Day", Category: "national", VisualMood: "proud, flags and celebration", MessagingTone: "patriotic", ColorSuggestion: "green and white"}},
	{time.October, 31, "", models.OccasionContext{Name: "Halloween", Category: "holiday", VisualMood: "spooky, pumpkins and candlelight", MessagingTone: "playful", ColorSuggestion: "orange and black"}},
	{time.November, 11, "GB", models.OccasionContext{Name: "Remembrance Day", Category: "national", VisualMood: "calm, poppies and soft light", MessagingTone: "respectful", ColorSuggestion: "red and muted grey"}},
	{time.December, 25, "", models.OccasionContext{Name: "Christmas", Category: "holiday", VisualMood: "cosy, festive lights and evergreen", MessagingTone: "warm and generous", ColorSuggestion: "red, green and gold"}},
	{time.December, 31, "", models.OccasionContext{Name: "New Year's Eve", Category: "holiday", VisualMood: "glamorous night, confetti", MessagingTone: "celebratory", ColorSuggestion: "gold and black"}},
}

var countryCodes = map[string]string{
	"nigeria":        "NG",
	"united states":  "US",
	"usa":            "US",
	"united kingdom": "GB",
	"uk":             "GB",
	"ghana":          "GH",
	"kenya":          "KE",
	"south africa":   "ZA",
	"india":          "IN",
	"canada":         "CA",
}

type OccasionService interface {
	Detect(date time.Time, loc *models.Location) *models.OccasionContext
}

type occasionService struct{}

func NewOccasionService() OccasionService {
	return &occasionService{}
}

// Detect returns the first occasion falling on date or within the lookahead window,
// preferring country-specific entries on the same day.
func (s *occasionService) Detect(date time.Time, loc *models.Location) *models.OccasionContext {
	country := ""
	if loc != nil {
		country = countryCode(loc.Country)
	}

	for offset := 0; offset <= occasionLookahead; offset++ {
		d := date.AddDate(0, 0, offset)
		var global *models.OccasionContext
		for i := range occasionCalendar {
			o := &occasionCalendar[i]
			if o.month != d.Month() || o.day != d.Day() {
				continue
			}
			if o.country == "" {
				if global == nil {
					c := o.ctx
					global = &c
				}
				continue
			}
			if o.country == country {
				c := o.ctx
				return &c
			}
		}
		if global != nil {
			return global
		}
	}
	return nil
}

func countryCode(country string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	if code, ok := countryCodes[c]; ok {
		return code
	}
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	return ""
}
