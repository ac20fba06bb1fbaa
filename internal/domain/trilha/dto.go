package trilha

import (
	"time"
)

// CreateSolicitacaoRequest is the body of POST /trilhas/{id}/solicitacoes.
// UsuarioID defaults to the caller.
type CreateSolicitacaoRequest struct {
	UsuarioID  string `json:"usuario_id" validate:"omitempty,uuid"`
	AreaID     string `json:"area_id" validate:"required,uuid"`
	Observacao string `json:"observacao" validate:"max=1000"`
}

// UpdateStatusRequest is the body of PATCH /trilhas/{id}/solicitacoes/{solicitacaoID}
type UpdateStatusRequest struct {
	Status     string  `json:"status" validate:"required,solicitacao_status"`
	Observacao *string `json:"observacao,omitempty" validate:"omitempty,max=1000"`
}

// TrilhaResponse for API
type TrilhaResponse struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Ordem     int    `json:"ordem"`
}

// TrilhaResponseFromEntity converts entity to response
func TrilhaResponseFromEntity(t *Trilha) *TrilhaResponse {
	return &TrilhaResponse{
		ID:        t.ID.String(),
		Nome:      t.Nome,
		Descricao: t.Descricao,
		Ordem:     t.Ordem,
	}
}

// SolicitacaoResponse for API
type SolicitacaoResponse struct {
	ID           string  `json:"id"`
	TrilhaID     string  `json:"trilha_id"`
	UsuarioID    string  `json:"usuario_id"`
	LiderID      string  `json:"lider_id"`
	AreaID       string  `json:"area_id"`
	Status       string  `json:"status"`
	Observacao   string  `json:"observacao"`
	SupervisorID *string `json:"supervisor_id,omitempty"`
	DataResposta *string `json:"data_resposta,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// SolicitacaoResponseFromEntity converts entity to response
func SolicitacaoResponseFromEntity(s *Solicitacao) *SolicitacaoResponse {
	resp := &SolicitacaoResponse{
		ID:         s.ID.String(),
		TrilhaID:   s.TrilhaID.String(),
		UsuarioID:  s.UsuarioID.String(),
		LiderID:    s.LiderID.String(),
		AreaID:     s.AreaID.String(),
		Status:     string(s.Status),
		Observacao: s.Observacao,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
	if s.SupervisorID.Valid {
		id := s.SupervisorID.UUID.String()
		resp.SupervisorID = &id
	}
	if s.DataResposta.Valid {
		at := s.DataResposta.Time.Format(time.RFC3339)
		resp.DataResposta = &at
	}
	return resp
}
