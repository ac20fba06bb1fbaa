package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeSolicitacaoPendente Type = "solicitacao_pendente" // Supervisor: request awaiting review
	TypeSolicitacaoEnviada  Type = "solicitacao_enviada"  // Leader: request submitted
	TypeSolicitacaoStatus   Type = "solicitacao_status"   // Subject and leader: status changed
)

// Priority of a notice
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	Priority  Priority        `db:"priority" json:"priority"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	ExpiresAt sql.NullTime    `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationData links a notice to the entities it is about
type NotificationData struct {
	TrilhaID      *uuid.UUID `json:"trilha_id,omitempty"`
	SolicitacaoID *uuid.UUID `json:"solicitacao_id,omitempty"`
	AreaID        *uuid.UUID `json:"area_id,omitempty"`
	Status        string     `json:"status,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *NotificationData {
	if n.Data == nil {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}

// Expired reports whether the notice should no longer be shown at now
func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiresAt.Valid && !n.ExpiresAt.Time.After(now)
}
