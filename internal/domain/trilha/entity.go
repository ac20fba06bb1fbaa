package trilha

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status of an advancement request
type Status string

const (
	StatusPendente  Status = "PENDENTE"
	StatusAprovada  Status = "APROVADA"
	StatusRejeitada Status = "REJEITADA"
)

// ParseStatus maps a submitted string onto a Status
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPendente, StatusAprovada, StatusRejeitada:
		return Status(s), true
	}
	return "", false
}

// Trilha is a growth track members advance through
type Trilha struct {
	ID        uuid.UUID `db:"id"`
	IgrejaID  uuid.UUID `db:"igreja_id"`
	Nome      string    `db:"nome"`
	Descricao string    `db:"descricao"`
	Ordem     int       `db:"ordem"`
	CreatedAt time.Time `db:"created_at"`
}

// Area is a supervision area; SupervisorID may be unset
type Area struct {
	ID           uuid.UUID     `db:"id"`
	IgrejaID     uuid.UUID     `db:"igreja_id"`
	Nome         string        `db:"nome"`
	SupervisorID uuid.NullUUID `db:"supervisor_id"`
	CreatedAt    time.Time     `db:"created_at"`
}

// Solicitacao asks for UsuarioID to advance on a track.
// LiderID is who filed it; SupervisorID is who last resolved it.
type Solicitacao struct {
	ID           uuid.UUID     `db:"id"`
	TrilhaID     uuid.UUID     `db:"trilha_id"`
	UsuarioID    uuid.UUID     `db:"usuario_id"`
	LiderID      uuid.UUID     `db:"lider_id"`
	AreaID       uuid.UUID     `db:"area_id"`
	Status       Status        `db:"status"`
	Observacao   string        `db:"observacao"`
	SupervisorID uuid.NullUUID `db:"supervisor_id"`
	DataResposta sql.NullTime  `db:"data_resposta"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}
