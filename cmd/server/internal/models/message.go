package models

import (
	"github.com/google/uuid"

	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

// SubmissionMessage is one entry of the append-only discussion thread on a
// submission. Rows are never updated or deleted.
type SubmissionMessage struct {
	SenderName string
	Body       string
	Model
	SubmissionID uuid.UUID
	SenderID     uuid.UUID
	SenderKind   types.ActorKind `gorm:"type:text"`
}

func (SubmissionMessage) TableName() string {
	return "submission_message"
}

func (m SubmissionMessage) GetID() uuid.UUID {
	return m.ID
}

func (m *SubmissionMessage) ToResponse() types.MessageResponse {
	return types.MessageResponse{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		SenderKind: m.SenderKind,
		SenderName: m.SenderName,
		Message:    m.Body,
		SentAt:     m.CreatedAt,
	}
}
