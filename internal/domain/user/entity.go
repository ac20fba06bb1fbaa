package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain profile linked 1:1 to an identity-provider account
type User struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	ExternalID string        `db:"external_id" json:"external_id"`
	Email      string        `db:"email" json:"email"`
	Name       string        `db:"name" json:"name"`
	Role       Role          `db:"role" json:"role"`
	IgrejaID   uuid.NullUUID `db:"igreja_id" json:"-"`
	IsAdmin    bool          `db:"is_admin" json:"is_admin"`

	// Timestamps
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChurchID returns the church affiliation, if any
func (u *User) ChurchID() (uuid.UUID, bool) {
	if u == nil || !u.IgrejaID.Valid {
		return uuid.Nil, false
	}
	return u.IgrejaID.UUID, true
}

// IsLeaderOrAbove reports whether the user leads a cell or supervises leaders
func (u *User) IsLeaderOrAbove() bool {
	return HasRole(u, RoleLiderCelula, RoleSupervisor, RolePastor)
}

// CanResolveAdvancement reports whether the user may approve or reject advancement requests
func (u *User) CanResolveAdvancement() bool {
	return HasRole(u, RoleSupervisor, RolePastor)
}
