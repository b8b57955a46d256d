package models

import "time"

type User struct {
	ID             int64      `db:"id" json:"id"`
	GoogleID       string     `db:"google_id" json:"google_id"`
	Email          string     `db:"email" json:"email"`
	Name           string     `db:"name" json:"name"`
	ProfilePicture string     `db:"profile_picture" json:"profile_picture"`
	Plan           string     `db:"plan" json:"plan"`
	Onboarded      bool       `db:"onboarded" json:"onboarded"`
	PlanUpdatedAt  *time.Time `db:"plan_updated_at" json:"plan_updated_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

func IsKnownPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPro, PlanBusiness:
		return true
	}
	return false
}
