package audit

import (
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

var schemaVersion = "0.1.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtSubmissionCreated  EventType = "submission_created"
	EvtStatusChanged      EventType = "status_changed"
	EvtSeverityChanged    EventType = "severity_changed"
	EvtRewardGranted      EventType = "reward_granted"
	EvtMessageAppended    EventType = "message_appended"
	EvtLedgerUpdateFailed EventType = "ledger_update_failed"
	EvtFileStored         EventType = "file_stored"
)

type Message struct {
	ProgramID    *string     `json:"program_id"`
	SubmissionID *string     `json:"submission_id"`
	ActorKind    string      `json:"actor_kind"  validate:"required"`
	ActorID      string      `json:"actor_id"    validate:"required"`
	LogContext   string      `json:"log_context" validate:"required"`
	SchemaVersion string     `json:"version"     validate:"required"`
	Disposition  Disposition `json:"disposition" validate:"required"`
	Type         EventType   `json:"event_type"  validate:"required"`

	Timestamp types.UnixMilli `json:"timestamp" validate:"required"`
}

type SubmissionCreatedEvent struct {
	ResearcherID string `json:"researcher_id" validate:"required"`
	Title        string `json:"title"         validate:"required"`
	Category     string `json:"category"`
	FileCount    int    `json:"file_count"`
}

type SubmissionCreated struct {
	Event SubmissionCreatedEvent `json:"event" validate:"required"`
	Message
}

type StatusChangedEvent struct {
	From types.SubmissionStatus `json:"from" validate:"required"`
	To   types.SubmissionStatus `json:"to"   validate:"required"`
}

type StatusChanged struct {
	Event StatusChangedEvent `json:"event" validate:"required"`
	Message
}

type SeverityChangedEvent struct {
	From        types.Severity `json:"from"`
	To          types.Severity `json:"to"`
	PointsDelta int            `json:"points_delta"`
}

type SeverityChanged struct {
	Event SeverityChangedEvent `json:"event" validate:"required"`
	Message
}

type RewardGrantedEvent struct {
	ResearcherID string  `json:"researcher_id" validate:"required"`
	Amount       float64 `json:"amount"`
}

type RewardGranted struct {
	Event RewardGrantedEvent `json:"event" validate:"required"`
	Message
}

type MessageAppendedEvent struct {
	MessageID  string `json:"message_id"  validate:"required"`
	SenderKind string `json:"sender_kind" validate:"required"`
}

type MessageAppended struct {
	Event MessageAppendedEvent `json:"event" validate:"required"`
	Message
}

type LedgerUpdateFailedEvent struct {
	Entity   string `json:"entity"   validate:"required"`
	EntityID string `json:"entity_id" validate:"required"`
	Column   string `json:"column"   validate:"required"`
	Reason   string `json:"reason"   validate:"required"`
}

type LedgerUpdateFailed struct {
	Event LedgerUpdateFailedEvent `json:"event" validate:"required"`
	Message
}

type FileStoredEvent struct {
	BucketName string `json:"bucket_name" validate:"required"`
	ObjectName string `json:"object_name" validate:"required"`
	FileName   string `json:"file_name"   validate:"required"`
	FileSize   int64  `json:"file_size"`
}

type FileStored struct {
	Event FileStoredEvent `json:"event" validate:"required"`
	Message
}
