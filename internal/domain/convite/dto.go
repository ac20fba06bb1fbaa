package convite

import (
	"time"
)

// CreateRequest is the body of POST /convites
type CreateRequest struct {
	CelulaID      string `json:"celula_id" validate:"omitempty,uuid"`
	Email         string `json:"email" validate:"omitempty,email,max=255"`
	ExpiraEmHoras int    `json:"expira_em_horas" validate:"omitempty,gte=1,lte=720"`
}

// ConviteResponse is what the creator sees
type ConviteResponse struct {
	ID            string  `json:"id"`
	Token         string  `json:"token"`
	IgrejaID      string  `json:"igreja_id"`
	CelulaID      *string `json:"celula_id,omitempty"`
	Email         string  `json:"email,omitempty"`
	Visualizacoes int     `json:"visualizacoes"`
	ExpiresAt     string  `json:"expires_at"`
	CreatedAt     string  `json:"created_at"`
}

func ConviteResponseFromEntity(c *Convite) *ConviteResponse {
	resp := &ConviteResponse{
		ID:            c.ID.String(),
		Token:         c.Token,
		IgrejaID:      c.IgrejaID.String(),
		Email:         c.Email,
		Visualizacoes: c.Visualizacoes,
		ExpiresAt:     c.ExpiresAt.Format(time.RFC3339),
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
	if c.CelulaID.Valid {
		id := c.CelulaID.UUID.String()
		resp.CelulaID = &id
	}
	return resp
}

// PublicConviteResponse is what anyone holding the link sees
type PublicConviteResponse struct {
	IgrejaNome string `json:"igreja_nome"`
	CelulaNome string `json:"celula_nome,omitempty"`
	ExpiresAt  string `json:"expires_at"`
}

func PublicConviteResponseFromEntity(c *Convite) *PublicConviteResponse {
	return &PublicConviteResponse{
		IgrejaNome: c.IgrejaNome.String,
		CelulaNome: c.CelulaNome.String,
		ExpiresAt:  c.ExpiresAt.Format(time.RFC3339),
	}
}
