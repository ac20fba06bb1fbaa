package igreja

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DiaSemana is the weekday a cell meets on
type DiaSemana string

const (
	Domingo DiaSemana = "domingo"
	Segunda DiaSemana = "segunda"
	Terca   DiaSemana = "terca"
	Quarta  DiaSemana = "quarta"
	Quinta  DiaSemana = "quinta"
	Sexta   DiaSemana = "sexta"
	Sabado  DiaSemana = "sabado"
)

// Igreja is a church tenant
type Igreja struct {
	ID        uuid.UUID `db:"id"`
	Nome      string    `db:"nome"`
	Cidade    string    `db:"cidade"`
	CreatedAt time.Time `db:"created_at"`

	// Aggregates
	TotalMembros int `db:"total_membros"`
	TotalCelulas int `db:"total_celulas"`
}

// Celula is a small group meeting weekly under a leader
type Celula struct {
	ID        uuid.UUID     `db:"id"`
	IgrejaID  uuid.UUID     `db:"igreja_id"`
	AreaID    uuid.NullUUID `db:"area_id"`
	LiderID   uuid.NullUUID `db:"lider_id"`
	Nome      string        `db:"nome"`
	DiaSemana DiaSemana     `db:"dia_semana"`
	Horario   string        `db:"horario"`
	CreatedAt time.Time     `db:"created_at"`

	LiderNome sql.NullString `db:"lider_nome"`
}

// Membro is a church member as seen by its leaders
type Membro struct {
	ID    uuid.UUID `db:"id"`
	Name  string    `db:"name"`
	Email string    `db:"email"`
	Role  string    `db:"role"`
}
