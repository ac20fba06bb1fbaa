package admin

import (
	"time"
)

// DashboardStats for GET /admin/dashboard
type DashboardStats struct {
	Users         UserStats         `json:"users"`
	Igrejas       int               `json:"igrejas"`
	Celulas       int               `json:"celulas"`
	Solicitacoes  SolicitacaoStats  `json:"solicitacoes"`
	Credits       CreditStats       `json:"credits"`
	Notifications NotificationStats `json:"notifications"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

type UserStats struct {
	Total       int            `json:"total"`
	ByRole      map[string]int `json:"by_role"`
	Admins      int            `json:"admins"`
	NewThisWeek int            `json:"new_this_week"`
}

type SolicitacaoStats struct {
	Pendentes  int `json:"pendentes"`
	Aprovadas  int `json:"aprovadas"`
	Rejeitadas int `json:"rejeitadas"`
}

type CreditStats struct {
	InCirculation    int `json:"in_circulation"`
	Balances         int `json:"balances"`
	UsageEventsWeek  int `json:"usage_events_last_7_days"`
	ConsumedLastWeek int `json:"consumed_last_7_days"`
}

type NotificationStats struct {
	Unread int `json:"unread"`
}

// UpdateUserRequest is the body of PATCH /admin/users/{id}
type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,role"`
	IgrejaID *string `json:"igreja_id,omitempty" validate:"omitempty,uuid"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

// UserResponse represents a user in the admin console
type UserResponse struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	IgrejaID   *string `json:"igreja_id,omitempty"`
	IsAdmin    bool    `json:"is_admin"`
	CreatedAt  string  `json:"created_at"`
}
