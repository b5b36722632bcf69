package models

import (
	"github.com/google/uuid"
)

// Researcher carries the reputation ledger. Counter columns are only ever
// moved through atomic increments; handlers never write absolute values.
type Researcher struct {
	Name  string
	Email string
	Model
	ReputationScore  int
	ReportsSubmitted int
	ReportsAccepted  int
	ReportsRejected  int
	DuplicateReports int
	BountiesEarned   float64
}

func (Researcher) TableName() string {
	return "researcher"
}

func (r Researcher) GetID() uuid.UUID {
	return r.ID
}
