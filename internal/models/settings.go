package models

import "time"

// SchoolProfile describes the institution.
type SchoolProfile struct {
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// AcademicSettings holds the academic calendar.
type AcademicSettings struct {
	CurrentYear   string    `json:"currentYear"`
	YearStart     time.Time `json:"yearStart"`
	YearEnd       time.Time `json:"yearEnd"`
	Terms         []string  `json:"terms,omitempty"`
	GradingScheme string    `json:"gradingScheme,omitempty"`
}

// AttendanceSettings holds time and attendance thresholds.
type AttendanceSettings struct {
	SchoolStart        string  `json:"schoolStart"`
	SchoolEnd          string  `json:"schoolEnd"`
	LateAfterMinutes   int     `json:"lateAfterMinutes"`
	MinimumPercentage  float64 `json:"minimumPercentage"`
	WorkingDaysPerWeek int     `json:"workingDaysPerWeek"`
}

// FeeSettings holds fee preferences.
type FeeSettings struct {
	Currency          string  `json:"currency"`
	LateFeePercentage float64 `json:"lateFeePercentage"`
	GracePeriodDays   int     `json:"gracePeriodDays"`
	AllowPartial      bool    `json:"allowPartial"`
}

// NotificationSettings holds notification channels.
type NotificationSettings struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// SecuritySettings holds account security policy.
type SecuritySettings struct {
	PasswordMinLength     int  `json:"passwordMinLength"`
	SessionTimeoutMinutes int  `json:"sessionTimeoutMinutes"`
	TwoFactorEnabled      bool `json:"twoFactorEnabled"`
	MaxLoginAttempts      int  `json:"maxLoginAttempts"`
}

// AppearanceSettings holds UI preferences.
type AppearanceSettings struct {
	Theme        string `json:"theme"`
	PrimaryColor string `json:"primaryColor,omitempty"`
	Language     string `json:"language"`
	DateFormat   string `json:"dateFormat,omitempty"`
}

// SystemSettings is the per-institution singleton.
type SystemSettings struct {
	ID            string               `json:"id,omitempty"`
	School        SchoolProfile        `json:"school"`
	Academic      AcademicSettings     `json:"academic"`
	Attendance    AttendanceSettings   `json:"attendance"`
	Fees          FeeSettings          `json:"fees"`
	Notifications NotificationSettings `json:"notifications"`
	Security      SecuritySettings     `json:"security"`
	Appearance    AppearanceSettings   `json:"appearance"`
	UpdatedAt     time.Time            `json:"updatedAt,omitempty"`
}

// Backup describes a server-side backup archive.
type Backup struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
