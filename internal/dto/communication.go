package dto

import (
	"net/url"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// NoticeFilter narrows the notices list.
type NoticeFilter struct {
	Audience models.NoticeAudience `json:"audience,omitempty"`
	Active   *bool                 `json:"active,omitempty"`
	PageQuery
}

// Values encodes the filter as query parameters.
func (f NoticeFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "audience", string(f.Audience))
	setBool(v, "active", f.Active)
	f.PageQuery.apply(v)
	return v
}

// NoticeRequest creates or replaces a notice.
type NoticeRequest struct {
	Title          string                `json:"title" validate:"required"`
	Content        string                `json:"content" validate:"required"`
	TargetAudience models.NoticeAudience `json:"targetAudience" validate:"required,oneof=all students teachers parents staff"`
	Priority       models.NoticePriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	IsActive       bool                  `json:"isActive"`
	PublishDate    string                `json:"publishDate,omitempty"`
	ExpiryDate     string                `json:"expiryDate,omitempty"`
}

// MessageRequest sends a direct message.
type MessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Subject    string `json:"subject,omitempty"`
	Content    string `json:"content" validate:"required"`
}

// ReplyRequest answers a message in its thread.
type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
}
