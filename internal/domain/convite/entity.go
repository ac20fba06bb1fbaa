package convite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Convite is a shareable invitation to join a church, optionally a cell
type Convite struct {
	ID            uuid.UUID     `db:"id"`
	Token         string        `db:"token"`
	IgrejaID      uuid.UUID     `db:"igreja_id"`
	CelulaID      uuid.NullUUID `db:"celula_id"`
	CriadoPor     uuid.UUID     `db:"criado_por"`
	Email         string        `db:"email"`
	Visualizacoes int           `db:"visualizacoes"`
	ExpiresAt     time.Time     `db:"expires_at"`
	CreatedAt     time.Time     `db:"created_at"`

	IgrejaNome sql.NullString `db:"igreja_nome"`
	CelulaNome sql.NullString `db:"celula_nome"`
}

// Expired reports whether the invitation can no longer be opened
func (c *Convite) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
