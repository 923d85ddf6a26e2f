package dto

import "github.com/noah-isme/sma-adp-console/internal/models"

// SettingsPatch is a partial settings update; nil sections are left untouched.
type SettingsPatch struct {
	School        *models.SchoolProfile        `json:"school,omitempty"`
	Academic      *models.AcademicSettings     `json:"academic,omitempty"`
	Attendance    *models.AttendanceSettings   `json:"attendance,omitempty"`
	Fees          *models.FeeSettings          `json:"fees,omitempty"`
	Notifications *models.NotificationSettings `json:"notifications,omitempty"`
	Security      *models.SecuritySettings     `json:"security,omitempty"`
	Appearance    *models.AppearanceSettings   `json:"appearance,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.School == nil && p.Academic == nil && p.Attendance == nil && p.Fees == nil &&
		p.Notifications == nil && p.Security == nil && p.Appearance == nil
}
