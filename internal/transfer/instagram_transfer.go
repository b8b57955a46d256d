package transfer

import "time"

// InstagramConnection is the outcome of the OAuth code exchange.
type InstagramConnection struct {
	UserID      int
	AccessToken string
	ExpiresAt   time.Time
}

type InstagramShortToken struct {
	AccessToken string `json:"access_token"`
	UserID      int    `json:"user_id"`
}

type InstagramTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type InstagramProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url"`
}

// InstagramMedia is returned by both the container and media_publish calls.
type InstagramMedia struct {
	ID string `json:"id"`
}

type InstagramGraphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FbtraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
