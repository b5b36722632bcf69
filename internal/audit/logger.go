package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/logger"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

type Context struct {
	ProgramID    *string
	SubmissionID *string
	ActorKind    string
	ActorID      string
}

func dispForStatus(status types.SubmissionStatus) Disposition {
	switch status {
	case types.SubmissionStatusResolved:
		return DispositionGood
	case types.SubmissionStatusRejected:
		return DispositionBad
	case types.SubmissionStatusUnresolved:
		return DispositionBad
	case types.SubmissionStatusPending,
		types.SubmissionStatusTriaged,
		types.SubmissionStatusAccepted,
		types.SubmissionStatusDuplicated:
		return DispositionNeutral
	default:
		return DispositionNeutral
	}
}

func fill(m *Message, c Context, disp Disposition, evt EventType) {
	m.Type = evt
	m.LogContext = logContext
	m.SchemaVersion = schemaVersion
	m.Timestamp = types.UnixMilli(time.Now().UTC().UnixMilli())
	m.ProgramID = c.ProgramID
	m.SubmissionID = c.SubmissionID
	m.ActorKind = c.ActorKind
	m.ActorID = c.ActorID
	m.Disposition = disp
}

func emit(event any, name string, attrs ...any) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error("could not serialize "+name+" event", attrs...)
		return
	}

	// TODO: should this go to stderr?
	fmt.Println(string(evtStr))
}

func LogSubmissionCreated(c Context, researcherID, title, category string, fileCount int) {
	event := SubmissionCreated{}
	fill(&event.Message, c, DispositionNeutral, EvtSubmissionCreated)

	event.Event.ResearcherID = researcherID
	event.Event.Title = title
	event.Event.Category = category
	event.Event.FileCount = fileCount

	emit(event, "SubmissionCreated",
		"researcherID", researcherID,
		"title", title,
		"category", category,
		"fileCount", fileCount,
	)
}

func LogStatusChanged(c Context, from, to types.SubmissionStatus) {
	event := StatusChanged{}
	fill(&event.Message, c, dispForStatus(to), EvtStatusChanged)

	event.Event.From = from
	event.Event.To = to

	emit(event, "StatusChanged", "from", from, "to", to)
}

func LogSeverityChanged(c Context, from, to types.Severity, pointsDelta int) {
	disp := DispositionNeutral
	switch {
	case pointsDelta > 0:
		disp = DispositionGood
	case pointsDelta < 0:
		disp = DispositionBad
	}

	event := SeverityChanged{}
	fill(&event.Message, c, disp, EvtSeverityChanged)

	event.Event.From = from
	event.Event.To = to
	event.Event.PointsDelta = pointsDelta

	emit(event, "SeverityChanged", "from", from, "to", to, "pointsDelta", pointsDelta)
}

func LogRewardGranted(c Context, researcherID string, amount float64) {
	event := RewardGranted{}
	fill(&event.Message, c, DispositionGood, EvtRewardGranted)

	event.Event.ResearcherID = researcherID
	event.Event.Amount = amount

	emit(event, "RewardGranted", "researcherID", researcherID, "amount", amount)
}

func LogMessageAppended(c Context, messageID, senderKind string) {
	event := MessageAppended{}
	fill(&event.Message, c, DispositionNeutral, EvtMessageAppended)

	event.Event.MessageID = messageID
	event.Event.SenderKind = senderKind

	emit(event, "MessageAppended", "messageID", messageID, "senderKind", senderKind)
}

func LogLedgerUpdateFailed(c Context, entity, entityID, column, reason string) {
	event := LedgerUpdateFailed{}
	fill(&event.Message, c, DispositionBad, EvtLedgerUpdateFailed)

	event.Event.Entity = entity
	event.Event.EntityID = entityID
	event.Event.Column = column
	event.Event.Reason = reason

	emit(event, "LedgerUpdateFailed",
		"entity", entity,
		"entityID", entityID,
		"column", column,
		"reason", reason,
	)
}

func LogFileStored(c Context, bucketName, objectName, fileName string, fileSize int64) {
	event := FileStored{}
	fill(&event.Message, c, DispositionNeutral, EvtFileStored)

	event.Event.BucketName = bucketName
	event.Event.ObjectName = objectName
	event.Event.FileName = fileName
	event.Event.FileSize = fileSize

	emit(event, "FileStored",
		"bucketName", bucketName,
		"objectName", objectName,
		"fileName", fileName,
		"fileSize", fileSize,
	)
}
