package models

import "time"

type Schedule struct {
	ID          string     `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"userId"`
	Enabled     bool       `db:"enabled" json:"enabled"`
	Time        string     `db:"time" json:"time"` // HH:mm, 30-minute slots
	Timezone    string     `db:"timezone" json:"timezone"`
	BrandKitID  string     `db:"brand_kit_id" json:"brandKitId"`
	NotifyEmail bool       `db:"notify_email" json:"notifyEmail"`
	NotifySMS   bool       `db:"notify_sms" json:"notifySms"`
	NextRunAt   *time.Time `db:"next_run_at" json:"nextRunAt"`
	LastRunAt   *time.Time `db:"last_run_at" json:"lastRunAt"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsDue reports whether the schedule should run at now.
func (s *Schedule) IsDue(now time.Time) bool {
	if !s.Enabled || s.NextRunAt == nil {
		return false
	}
	return !s.NextRunAt.After(now)
}
