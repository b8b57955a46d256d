package transfer

type SchedulePatch struct {
	Enabled     *bool   `json:"enabled"`
	Time        *string `json:"time" validate:"omitempty,len=5"`
	Timezone    *string `json:"timezone" validate:"omitempty,min=1,max=64"`
	BrandKitID  *string `json:"brandKitId" validate:"omitempty,uuid"`
	NotifyEmail *bool   `json:"notifyEmail"`
	NotifySMS   *bool   `json:"notifySms"`
}
