package dto

// UserQuery captures admin user list filters from the query string.
type UserQuery struct {
	Search   string `form:"search"`
	Role     string `form:"role" validate:"omitempty,oneof=ADMIN STUDENT"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ResetPasswordRequest sets a new password for a user on their behalf.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateSettingsRequest changes any subset of a user's settings. Omitted
// fields keep their stored value.
type UpdateSettingsRequest struct {
	DarkMode               *bool   `json:"dark_mode"`
	Notifications          *bool   `json:"notifications"`
	EmailNotifications     *bool   `json:"email_notifications"`
	CalendarSync           *bool   `json:"calendar_sync"`
	Timezone               *string `json:"timezone" validate:"omitempty,timezone"`
	DateFormat             *string `json:"date_format" validate:"omitempty,max=32"`
	TimeFormat             *string `json:"time_format" validate:"omitempty,oneof=12h 24h"`
	DefaultReminderMinutes *int    `json:"default_reminder_minutes" validate:"omitempty,min=0,max=10080"`
}
