package models

import "time"

type Activity struct {
	ID        string    `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	PosterID  string    `db:"poster_id" json:"poster_id,omitempty"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	ActivityGenerationStarted   = "generation_started"
	ActivityGenerationCompleted = "generation_completed"
	ActivityGenerationFailed    = "generation_failed"
	ActivityPosterApproved      = "poster_approved"
	ActivityPosterPublished     = "poster_published"
	ActivityPosterDuplicated    = "poster_duplicated"
	ActivityPlanUpgraded        = "plan_upgraded"
)
