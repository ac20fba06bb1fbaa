package leitura

import (
	"time"

	"github.com/google/uuid"
)

// Plano is a reading plan of TotalCapitulos chapters
type Plano struct {
	ID             uuid.UUID `db:"id"`
	Nome           string    `db:"nome"`
	Descricao      string    `db:"descricao"`
	TotalCapitulos int       `db:"total_capitulos"`
	CreatedAt      time.Time `db:"created_at"`
}

// Meta is a member's progress on a plan; one per member and plan
type Meta struct {
	ID             uuid.UUID `db:"id"`
	UsuarioID      uuid.UUID `db:"usuario_id"`
	PlanoID        uuid.UUID `db:"plano_id"`
	CapitulosLidos int       `db:"capitulos_lidos"`
	Concluida      bool      `db:"concluida"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// joined from planos_leitura
	TotalCapitulos int `db:"total_capitulos"`
}

// Progresso returns completion as a percentage in [0, 100]
func (m *Meta) Progresso() float64 {
	if m.TotalCapitulos <= 0 {
		return 0
	}
	p := float64(m.CapitulosLidos) * 100 / float64(m.TotalCapitulos)
	if p > 100 {
		return 100
	}
	return p
}

// Registro is one chapter read; the log is append-only
type Registro struct {
	ID        uuid.UUID `db:"id"`
	MetaID    uuid.UUID `db:"meta_id"`
	UsuarioID uuid.UUID `db:"usuario_id"`
	Livro     string    `db:"livro"`
	Capitulo  int       `db:"capitulo"`
	LidoEm    time.Time `db:"lido_em"`
	CreatedAt time.Time `db:"created_at"`
}
