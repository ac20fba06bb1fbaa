package leitura

import (
	"time"
)

// IniciarMetaRequest is the body of POST /leitura/metas
type IniciarMetaRequest struct {
	PlanoID string `json:"plano_id" validate:"required,uuid"`
}

// RegistroRequest is the body of POST /leitura/metas/{id}/registros
type RegistroRequest struct {
	Livro    string     `json:"livro" validate:"required,max=50"`
	Capitulo int        `json:"capitulo" validate:"required,gte=1,lte=150"`
	LidoEm   *time.Time `json:"lido_em,omitempty"`
}

// PlanoResponse for API
type PlanoResponse struct {
	ID             string `json:"id"`
	Nome           string `json:"nome"`
	Descricao      string `json:"descricao"`
	TotalCapitulos int    `json:"total_capitulos"`
}

func PlanoResponseFromEntity(p *Plano) *PlanoResponse {
	return &PlanoResponse{
		ID:             p.ID.String(),
		Nome:           p.Nome,
		Descricao:      p.Descricao,
		TotalCapitulos: p.TotalCapitulos,
	}
}

// MetaResponse for API
type MetaResponse struct {
	ID             string  `json:"id"`
	PlanoID        string  `json:"plano_id"`
	CapitulosLidos int     `json:"capitulos_lidos"`
	TotalCapitulos int     `json:"total_capitulos"`
	Progresso      float64 `json:"progresso"`
	Concluida      bool    `json:"concluida"`
	UpdatedAt      string  `json:"updated_at"`
}

func MetaResponseFromEntity(m *Meta) *MetaResponse {
	return &MetaResponse{
		ID:             m.ID.String(),
		PlanoID:        m.PlanoID.String(),
		CapitulosLidos: m.CapitulosLidos,
		TotalCapitulos: m.TotalCapitulos,
		Progresso:      m.Progresso(),
		Concluida:      m.Concluida,
		UpdatedAt:      m.UpdatedAt.Format(time.RFC3339),
	}
}

// RegistroResponse for API
type RegistroResponse struct {
	ID       string `json:"id"`
	Livro    string `json:"livro"`
	Capitulo int    `json:"capitulo"`
	LidoEm   string `json:"lido_em"`
}

func RegistroResponseFromEntity(r *Registro) *RegistroResponse {
	return &RegistroResponse{
		ID:       r.ID.String(),
		Livro:    r.Livro,
		Capitulo: r.Capitulo,
		LidoEm:   r.LidoEm.Format(time.RFC3339),
	}
}
