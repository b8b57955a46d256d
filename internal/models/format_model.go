package models

// PosterFormat is a target canvas for one platform placement.
type PosterFormat struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AspectRatio string `json:"aspect_ratio"`
}

var PosterFormats = map[string]PosterFormat{
	"instagram_square":   {ID: "instagram_square", Platform: "instagram", Width: 1080, Height: 1080, AspectRatio: "square_1_1"},
	"instagram_portrait": {ID: "instagram_portrait", Platform: "instagram", Width: 1080, Height: 1350, AspectRatio: "social_post_4_5"},
	"instagram_story":    {ID: "instagram_story", Platform: "instagram", Width: 1080, Height: 1920, AspectRatio: "social_story_9_16"},
	"facebook_post":      {ID: "facebook_post", Platform: "facebook", Width: 1200, Height: 630, AspectRatio: "widescreen_16_9"},
}

// LookupFormat returns the format for id, or the portrait Instagram format.
func LookupFormat(id string) PosterFormat {
	if f, ok := PosterFormats[id]; ok {
		return f
	}
	return PosterFormats["instagram_portrait"]
}
