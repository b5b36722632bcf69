package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

type Program struct {
	Name           string
	Description    string
	OrganizationID uuid.UUID
	Model
	Type          types.ProgramType       `gorm:"type:text"`
	Visibility    types.ProgramVisibility `gorm:"type:text"`
	Scope         datatypes.JSONSlice[string]
	OutOfScope    datatypes.JSONSlice[string]
	RewardRange   types.RewardRange `gorm:"type:jsonb;serializer:json"`
	InvitedEmails datatypes.JSONSlice[string]
	// Denormalized counters, moved only through atomic increments
	ReportCount     int
	ResolvedReports int
	Active          datatypes.Null[bool]
}

func (Program) TableName() string {
	return "program"
}

func (p Program) GetID() uuid.UUID {
	return p.ID
}

func (p *Program) IsActive() bool {
	return p.Active.Valid && p.Active.V
}

// Invited checks the private-program invite list. Emails are matched
// case-insensitively since invites are typed by humans.
func (p *Program) Invited(email string) bool {
	for _, invited := range p.InvitedEmails {
		if strings.EqualFold(invited, email) {
			return true
		}
	}

	return false
}
