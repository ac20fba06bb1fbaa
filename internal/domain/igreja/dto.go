package igreja

import (
	"time"
)

// CreateCelulaRequest is the body of POST /igrejas/me/celulas
type CreateCelulaRequest struct {
	Nome      string `json:"nome" validate:"required,min=2,max=100"`
	DiaSemana string `json:"dia_semana" validate:"required,oneof=domingo segunda terca quarta quinta sexta sabado"`
	Horario   string `json:"horario" validate:"omitempty,datetime=15:04"`
	AreaID    string `json:"area_id" validate:"omitempty,uuid"`
	LiderID   string `json:"lider_id" validate:"omitempty,uuid"`
}

// IgrejaResponse for API
type IgrejaResponse struct {
	ID           string `json:"id"`
	Nome         string `json:"nome"`
	Cidade       string `json:"cidade,omitempty"`
	TotalMembros int    `json:"total_membros"`
	TotalCelulas int    `json:"total_celulas"`
	CreatedAt    string `json:"created_at"`
}

func ToIgrejaResponse(ig *Igreja) *IgrejaResponse {
	return &IgrejaResponse{
		ID:           ig.ID.String(),
		Nome:         ig.Nome,
		Cidade:       ig.Cidade,
		TotalMembros: ig.TotalMembros,
		TotalCelulas: ig.TotalCelulas,
		CreatedAt:    ig.CreatedAt.Format(time.RFC3339),
	}
}

// CelulaResponse for API
type CelulaResponse struct {
	ID        string  `json:"id"`
	Nome      string  `json:"nome"`
	DiaSemana string  `json:"dia_semana"`
	Horario   string  `json:"horario,omitempty"`
	AreaID    *string `json:"area_id,omitempty"`
	LiderID   *string `json:"lider_id,omitempty"`
	LiderNome string  `json:"lider_nome,omitempty"`
}

func ToCelulaResponse(c *Celula) *CelulaResponse {
	resp := &CelulaResponse{
		ID:        c.ID.String(),
		Nome:      c.Nome,
		DiaSemana: string(c.DiaSemana),
		Horario:   c.Horario,
		LiderNome: c.LiderNome.String,
	}
	if c.AreaID.Valid {
		id := c.AreaID.UUID.String()
		resp.AreaID = &id
	}
	if c.LiderID.Valid {
		id := c.LiderID.UUID.String()
		resp.LiderID = &id
	}
	return resp
}

// MembroResponse for API
type MembroResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func ToMembroResponse(m *Membro) *MembroResponse {
	return &MembroResponse{ID: m.ID.String(), Name: m.Name, Email: m.Email, Role: m.Role}
}
