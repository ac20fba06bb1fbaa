package notification

import (
	"time"

	"github.com/google/uuid"
)

// CreateInput describes a notice to store
type CreateInput struct {
	UserID   uuid.UUID
	Type     Type
	Title    string
	Body     string
	Data     *NotificationData
	Priority Priority
	// TTL of zero means the notice never expires
	TTL time.Duration
}

// NotificationResponse for API
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      *string           `json:"body,omitempty"`
	Data      *NotificationData `json:"data,omitempty"`
	Priority  string            `json:"priority"`
	IsRead    bool              `json:"is_read"`
	ExpiresAt *string           `json:"expires_at,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// NotificationResponseFromEntity converts entity to response
func NotificationResponseFromEntity(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Priority:  string(n.Priority),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}

	if n.Body.Valid {
		resp.Body = &n.Body.String
	}
	if n.ExpiresAt.Valid {
		expires := n.ExpiresAt.Time.Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}

	if len(n.Data) > 0 {
		resp.Data = n.GetData()
	}

	return resp
}

// UnreadCountResponse for unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
