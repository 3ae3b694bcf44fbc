package identity

import (
	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
)

// MeResponse is the authenticated profile with what it may open and do
type MeResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	RoleName     string     `json:"role_name"`
	DivisiID     *uuid.UUID `json:"divisi_id,omitempty"`
	GangID       *uuid.UUID `json:"gang_id,omitempty"`
	EstateWide   bool       `json:"estate_wide"`
	Capabilities []string   `json:"capabilities"`
	Permissions  []string   `json:"permissions"`
}

// ToMeResponse converts a profile to its response form
func ToMeResponse(p *identity.Profile) *MeResponse {
	caps := p.Role.Capabilities()
	capabilities := make([]string, len(caps))
	for i, c := range caps {
		capabilities[i] = string(c)
	}
	actions := p.Role.Permissions()
	permissions := make([]string, len(actions))
	for i, a := range actions {
		permissions[i] = string(a)
	}
	return &MeResponse{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role.String(),
		RoleName:     p.Role.DisplayName(),
		DivisiID:     p.DivisiID,
		GangID:       p.GangID,
		EstateWide:   p.Role.IsEstateWide(),
		Capabilities: capabilities,
		Permissions:  permissions,
	}
}
