// Package settings stores the single global configuration row edited by admins.
package settings

import "time"

// GlobalID is the fixed primary key of the only settings row.
const GlobalID = "global"

// Report ranges accepted by ReportDefaults.DefaultRange.
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

type NotificationPreferences struct {
	NewComplaint  bool `gorm:"not null" json:"new_complaint"`
	StatusUpdates bool `gorm:"not null" json:"status_updates"`
	HighPriority  bool `gorm:"not null" json:"high_priority"`
}

type ReportDefaults struct {
	DefaultRange string `gorm:"type:varchar(10);not null" json:"default_range" binding:"required,oneof=week month year"`
}

// Settings is the global admin configuration.
type Settings struct {
	ID                       string                  `gorm:"type:varchar(20);primaryKey" json:"id"`
	AdminEmail               string                  `gorm:"type:varchar(255);not null" json:"admin_email" binding:"omitempty,email"`
	AutoEscalationEnabled    bool                    `gorm:"not null" json:"auto_escalation_enabled"`
	EscalationThresholdHours int                     `gorm:"not null" json:"escalation_threshold_hours" binding:"gte=1"`
	NotificationPreferences  NotificationPreferences `gorm:"embedded;embeddedPrefix:notify_" json:"notification_preferences"`
	ReportDefaults           ReportDefaults          `gorm:"embedded;embeddedPrefix:report_" json:"report_defaults"`
	CreatedAt                time.Time               `json:"created_at"`
	UpdatedAt                time.Time               `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Settings) TableName() string {
	return "settings"
}

// Defaults returns the settings a fresh deployment starts with.
func Defaults() Settings {
	return Settings{
		ID:                       GlobalID,
		EscalationThresholdHours: 48,
		NotificationPreferences: NotificationPreferences{
			NewComplaint:  true,
			StatusUpdates: true,
			HighPriority:  true,
		},
		ReportDefaults: ReportDefaults{DefaultRange: RangeMonth},
	}
}

// EscalationThreshold converts the configured hours to a duration.
func (s *Settings) EscalationThreshold() time.Duration {
	return time.Duration(s.EscalationThresholdHours) * time.Hour
}

// ReportWindow returns the default report period ending at now.
func (s *Settings) ReportWindow(now time.Time) (time.Time, time.Time) {
	switch s.ReportDefaults.DefaultRange {
	case RangeWeek:
		return now.AddDate(0, 0, -7), now
	case RangeYear:
		return now.AddDate(-1, 0, 0), now
	default:
		return now.AddDate(0, -1, 0), now
	}
}
