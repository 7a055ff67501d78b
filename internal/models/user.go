package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserRole represents the roles understood by RBAC middleware.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// UserSettings are per-user display and reminder preferences, stored as JSONB.
type UserSettings struct {
	DarkMode               bool   `json:"dark_mode"`
	Notifications          bool   `json:"notifications"`
	EmailNotifications     bool   `json:"email_notifications"`
	CalendarSync           bool   `json:"calendar_sync"`
	Timezone               string `json:"timezone"`
	DateFormat             string `json:"date_format"`
	TimeFormat             string `json:"time_format"`
	DefaultReminderMinutes int    `json:"default_reminder_minutes"`
}

// DefaultUserSettings are applied to new accounts and to rows without settings.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Notifications:          true,
		EmailNotifications:     true,
		Timezone:               "UTC",
		DateFormat:             "YYYY-MM-DD",
		TimeFormat:             "24h",
		DefaultReminderMinutes: 60,
	}
}

// Value marshals the settings for persistence.
func (s UserSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan decodes a JSONB column. Missing keys keep their defaults.
func (s *UserSettings) Scan(src interface{}) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan user settings: %w", err)
	}
	settings := DefaultUserSettings()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return err
		}
	}
	*s = settings
	return nil
}

// User is a row of the users table.
type User struct {
	ID           string       `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	FullName     string       `db:"full_name" json:"full_name"`
	Role         UserRole     `db:"role" json:"role"`
	Active       bool         `db:"active" json:"active"`
	Settings     UserSettings `db:"settings" json:"settings"`
	LastLoginAt  *time.Time   `db:"last_login_at" json:"last_login_at,omitempty"`
	DeletedAt    *time.Time   `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Deleted reports whether the account was soft deleted.
func (u User) Deleted() bool {
	return u.DeletedAt != nil
}

// Info returns the public projection of the user.
func (u User) Info() UserInfo {
	settings := u.Settings
	return UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, Settings: &settings}
}

// UserFilter scopes admin user listings. Soft deleted users are never listed.
type UserFilter struct {
	Search   string
	Role     UserRole
	Page     int
	PageSize int
}

// UserActivity summarises what a user has stored.
type UserActivity struct {
	Enrollments  int        `db:"enrollments" json:"enrollments"`
	PastGrades   int        `db:"past_grades" json:"past_grades"`
	LastActivity *time.Time `db:"last_activity" json:"last_activity,omitempty"`
}

// UserDetail is the admin view of one user.
type UserDetail struct {
	User *User `json:"user"`
	UserActivity
}

// SystemStats are the headline counts shown to administrators.
type SystemStats struct {
	Users       int `db:"users" json:"total_users"`
	Courses     int `db:"courses" json:"total_courses"`
	Enrollments int `db:"enrollments" json:"total_enrollments"`
	PastGrades  int `db:"past_grades" json:"total_past_grades"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
