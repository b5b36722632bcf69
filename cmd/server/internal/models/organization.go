package models

import (
	"github.com/google/uuid"
)

type Organization struct {
	Name  string
	Email string
	Model
}

func (Organization) TableName() string {
	return "organization"
}

func (o Organization) GetID() uuid.UUID {
	return o.ID
}
