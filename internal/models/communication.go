package models

import "time"

// NoticeAudience defines who a notice is addressed to.
type NoticeAudience string

const (
	AudienceAll      NoticeAudience = "all"
	AudienceStudents NoticeAudience = "students"
	AudienceTeachers NoticeAudience = "teachers"
	AudienceParents  NoticeAudience = "parents"
	AudienceStaff    NoticeAudience = "staff"
)

// AudienceFor maps a role to the audience addressing it.
func AudienceFor(role UserRole) NoticeAudience {
	switch role {
	case RoleStudent:
		return AudienceStudents
	case RoleTeacher:
		return AudienceTeachers
	case RoleParent:
		return AudienceParents
	default:
		return AudienceStaff
	}
}

// NoticePriority orders notices.
type NoticePriority string

const (
	PriorityLow    NoticePriority = "low"
	PriorityMedium NoticePriority = "medium"
	PriorityHigh   NoticePriority = "high"
)

// Notice is a broadcast announcement.
type Notice struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	TargetAudience NoticeAudience `json:"targetAudience"`
	Priority       NoticePriority `json:"priority,omitempty"`
	IsActive       bool           `json:"isActive"`
	PublishDate    time.Time      `json:"publishDate"`
	ExpiryDate     *time.Time     `json:"expiryDate,omitempty"`
	CreatedBy      *UserRef       `json:"createdBy,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Visible reports whether the notice is active at now.
func (n Notice) Visible(now time.Time) bool {
	if !n.IsActive {
		return false
	}
	if !n.PublishDate.IsZero() && now.Before(n.PublishDate) {
		return false
	}
	if n.ExpiryDate != nil && now.After(*n.ExpiryDate) {
		return false
	}
	return true
}

// Addresses reports whether the notice targets the given role.
func (n Notice) Addresses(role UserRole) bool {
	return n.TargetAudience == AudienceAll || n.TargetAudience == AudienceFor(role)
}

// Message is a direct message between two users.
type Message struct {
	ID            string    `json:"id"`
	Sender        UserRef   `json:"sender"`
	Receiver      UserRef   `json:"receiver"`
	Subject       string    `json:"subject,omitempty"`
	Content       string    `json:"content"`
	IsRead        bool      `json:"isRead"`
	ParentMessage string    `json:"parentMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UnreadCount is returned by the unread counter endpoint.
type UnreadCount struct {
	Count int `json:"count"`
}
