package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/audit"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/logger"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/taxonomy"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

const name string = "github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/lifecycle"

var tracer = otel.Tracer(name)

// ValidationError carries the offending field for the error payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Engine owns the business rules of the submission lifecycle. Handlers do
// transport and parsing; every classification and ledger consequence goes
// through here.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Update is a parsed partial update. Absent fields are left untouched.
type Update struct {
	Title       types.Optional[string]
	Description types.Optional[string]
	Target      types.Optional[string]
	Category    types.Optional[string]
	Severity    types.Optional[types.Severity]
	Status      types.Optional[types.SubmissionStatus]
	Reward      types.Optional[float64]
	Evidence    types.Optional[[]models.EvidenceFile]
}

func containsFold(haystack []string, needle string) bool {
	for _, entry := range haystack {
		if strings.EqualFold(entry, needle) {
			return true
		}
	}

	return false
}

// CreateSubmission files a new report against the program. The report always
// starts pending, unrated, with zero points regardless of payload.
func (e *Engine) CreateSubmission(
	ctx context.Context,
	actor types.Actor,
	program *models.Program,
	req *types.SubmissionCreate,
	evidence []models.EvidenceFile,
) (*models.Submission, error) {
	ctx, span := tracer.Start(ctx, "Engine.CreateSubmission")
	defer span.End()

	if err := CanSubmit(actor, program); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "actor may not submit to program")
		return nil, err
	}

	category, ok := taxonomy.Canonical(req.Category)
	if !ok {
		span.AddEvent("unknown category")
		return nil, &ValidationError{Field: "category", Reason: "unknown vulnerability category"}
	}

	if req.Target != "" && !containsFold(program.Scope, req.Target) {
		span.AddEvent("target out of scope")
		return nil, &ValidationError{Field: "target", Reason: "target is not in the program scope"}
	}

	submission := models.Submission{
		ProgramID:     program.ID,
		ResearcherID:  actor.ID,
		Title:         req.Title,
		Description:   req.Description,
		Target:        req.Target,
		Category:      category,
		VulnerableURL: req.VulnerableURL,
		Severity:      types.SeverityUnset,
		Status:        types.SubmissionStatusPending,
		Points:        0,
		Collaborators: req.Collaborators,
		Evidence:      evidence,
	}

	span.AddEvent("creating submission")
	if err := e.db.WithContext(ctx).Create(&submission).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create submission")
		return nil, err
	}

	auditCtx := auditContext(actor, program, &submission)

	// Creation counters are best effort: the report exists even if a ledger
	// write is lost.
	e.incrementProgram(ctx, auditCtx, program, "report_count", 1)
	e.incrementResearcher(ctx, auditCtx, submission.ResearcherID.String(), "reports_submitted", 1)

	audit.LogSubmissionCreated(
		auditCtx,
		submission.ResearcherID.String(),
		submission.Title,
		submission.Category,
		len(evidence),
	)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "created submission")
	return &submission, nil
}

// UpdateSubmission applies a partial update and its ledger consequences. The
// submission save is authoritative; ledger updates that fail afterwards are
// logged and never surfaced to the caller.
func (e *Engine) UpdateSubmission(
	ctx context.Context,
	actor types.Actor,
	program *models.Program,
	submission *models.Submission,
	update Update,
) (*models.Submission, error) {
	ctx, span := tracer.Start(ctx, "Engine.UpdateSubmission", trace.WithAttributes(
		attribute.String("submissionID", submission.ID.String()),
	))
	defer span.End()

	touchesClassification := update.Severity.Defined || update.Status.Defined ||
		update.Reward.Defined
	touchesContent := update.Title.Defined || update.Description.Defined ||
		update.Target.Defined || update.Category.Defined || update.Evidence.Defined

	if touchesClassification && !CanAdminister(actor, program) {
		span.AddEvent("actor may not reclassify")
		return nil, ErrNotAuthorized
	}

	if touchesContent && !actor.IsAdmin() && actor.ID != submission.ResearcherID {
		span.AddEvent("actor may not edit report content")
		return nil, ErrNotAuthorized
	}

	if update.Category.Defined && update.Category.Value != nil {
		category, ok := taxonomy.Canonical(*update.Category.Value)
		if !ok {
			return nil, &ValidationError{
				Field:  "category",
				Reason: "unknown vulnerability category",
			}
		}
		update.Category = types.NewFromVal(category)
	}

	if update.Target.Defined && update.Target.Value != nil && *update.Target.Value != "" &&
		!containsFold(program.Scope, *update.Target.Value) {
		return nil, &ValidationError{Field: "target", Reason: "target is not in the program scope"}
	}

	if update.Reward.Defined && update.Reward.Value != nil {
		if *update.Reward.Value < 0 {
			return nil, &ValidationError{Field: "reward", Reason: "reward must not be negative"}
		}
		if program.Type != types.ProgramTypeBugBounty && *update.Reward.Value > 0 {
			return nil, &ValidationError{Field: "reward", Reason: "program does not pay bounties"}
		}
	}

	stored := Stored{
		Status:   submission.Status,
		Severity: submission.Severity,
		Points:   submission.Points,
		Reward:   models.PtrFromNull(submission.Reward),
		Resolved: submission.ResolvedAt.Valid,
	}
	effects := Compute(stored, Change{
		Status:   update.Status,
		Severity: update.Severity,
		Reward:   update.Reward,
	})

	applyOptional(&submission.Title, update.Title)
	applyOptional(&submission.Description, update.Description)
	applyOptional(&submission.Target, update.Target)
	applyOptional(&submission.Category, update.Category)
	applyOptional(&submission.Severity, update.Severity)
	applyOptional(&submission.Status, update.Status)

	if update.Reward.Defined && update.Reward.Value != nil {
		submission.Reward = models.NewNullFromData(*update.Reward.Value)
	}

	if update.Evidence.Defined && update.Evidence.Value != nil {
		submission.Evidence = *update.Evidence.Value
	}

	submission.Points = effects.Points
	if effects.SetResolvedAt {
		submission.ResolvedAt = models.NewNullFromData(time.Now().UTC())
	}

	span.AddEvent("saving submission")
	if err := e.db.WithContext(ctx).Save(submission).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save submission")
		return nil, err
	}

	e.applyLedger(ctx, actor, program, submission, stored, effects)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "updated submission")
	return submission, nil
}

// AppendMessage adds one entry to the submission thread. The sender identity
// is taken from the authenticated actor, never from the payload.
func (e *Engine) AppendMessage(
	ctx context.Context,
	actor types.Actor,
	program *models.Program,
	submission *models.Submission,
	body string,
) (*models.SubmissionMessage, error) {
	ctx, span := tracer.Start(ctx, "Engine.AppendMessage", trace.WithAttributes(
		attribute.String("submissionID", submission.ID.String()),
	))
	defer span.End()

	if !CanParticipate(actor, program, submission) {
		span.AddEvent("actor may not message on submission")
		return nil, ErrNotAuthorized
	}

	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Field: "message", Reason: "message must not be blank"}
	}

	message := models.SubmissionMessage{
		SubmissionID: submission.ID,
		SenderID:     actor.ID,
		SenderKind:   actor.Kind,
		SenderName:   actor.Name,
		Body:         body,
	}

	span.AddEvent("creating message")
	if err := e.db.WithContext(ctx).Create(&message).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create message")
		return nil, err
	}

	audit.LogMessageAppended(
		auditContext(actor, program, submission),
		message.ID.String(),
		string(message.SenderKind),
	)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "appended message")
	return &message, nil
}

// Thread returns the full message thread, oldest first.
func (e *Engine) Thread(
	ctx context.Context,
	actor types.Actor,
	program *models.Program,
	submission *models.Submission,
) ([]models.SubmissionMessage, error) {
	ctx, span := tracer.Start(ctx, "Engine.Thread")
	defer span.End()

	if !CanParticipate(actor, program, submission) {
		span.AddEvent("actor may not view submission thread")
		return nil, ErrNotAuthorized
	}

	var messages []models.SubmissionMessage
	err := e.db.WithContext(ctx).
		Where("submission_id = ?", submission.ID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list messages")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed messages")
	return messages, nil
}

func applyOptional[T any](dst *T, src types.Optional[T]) {
	if src.Defined && src.Value != nil {
		*dst = *src.Value
	}
}

func auditContext(
	actor types.Actor,
	program *models.Program,
	submission *models.Submission,
) audit.Context {
	programID := program.ID.String()
	submissionID := submission.ID.String()

	return audit.Context{
		ProgramID:    &programID,
		SubmissionID: &submissionID,
		ActorKind:    string(actor.Kind),
		ActorID:      actor.ID.String(),
	}
}

// applyLedger walks the effect set sequentially. Each increment stands alone:
// a failure is audit logged and the walk continues.
func (e *Engine) applyLedger(
	ctx context.Context,
	actor types.Actor,
	program *models.Program,
	submission *models.Submission,
	stored Stored,
	effects Effects,
) {
	ctx, span := tracer.Start(ctx, "Engine.applyLedger")
	defer span.End()

	auditCtx := auditContext(actor, program, submission)
	researcherID := submission.ResearcherID.String()

	if effects.SeverityChanged {
		audit.LogSeverityChanged(
			auditCtx,
			stored.Severity,
			submission.Severity,
			effects.ReputationDelta,
		)
	}
	if effects.StatusChanged {
		audit.LogStatusChanged(auditCtx, stored.Status, submission.Status)
	}

	if effects.ReputationDelta != 0 {
		e.incrementResearcher(ctx, auditCtx, researcherID, "reputation_score", effects.ReputationDelta)
	}
	if effects.ReportsAccepted != 0 {
		e.incrementResearcher(ctx, auditCtx, researcherID, "reports_accepted", effects.ReportsAccepted)
	}
	if effects.ReportsRejected != 0 {
		e.incrementResearcher(ctx, auditCtx, researcherID, "reports_rejected", effects.ReportsRejected)
	}
	if effects.DuplicateReports != 0 {
		e.incrementResearcher(ctx, auditCtx, researcherID, "duplicate_reports", effects.DuplicateReports)
	}
	if effects.ProgramResolvedReports != 0 {
		e.incrementProgram(ctx, auditCtx, program, "resolved_reports", effects.ProgramResolvedReports)
	}

	if effects.BountyChanged {
		err := e.db.WithContext(ctx).Model(&models.Researcher{}).
			Where("id = ?", submission.ResearcherID).
			UpdateColumn(
				"bounties_earned",
				gorm.Expr("GREATEST(bounties_earned + ?, 0)", effects.BountyDelta),
			).Error
		if err != nil {
			span.AddEvent("bounty ledger update failed")
			logger.Logger.ErrorContext(ctx, "bounty ledger update failed",
				"researcherID", researcherID,
				"error", err,
			)
			audit.LogLedgerUpdateFailed(
				auditCtx,
				"researcher",
				researcherID,
				"bounties_earned",
				err.Error(),
			)
		} else {
			audit.LogRewardGranted(auditCtx, researcherID, submission.Reward.V)
		}
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "applied ledger effects")
}

func (e *Engine) incrementResearcher(
	ctx context.Context,
	auditCtx audit.Context,
	researcherID string,
	column string,
	amount int,
) {
	err := e.db.WithContext(ctx).Model(&models.Researcher{}).
		Where("id = ?", researcherID).
		UpdateColumn(column, gorm.Expr(column+" + ?", amount)).Error
	if err != nil {
		logger.Logger.ErrorContext(ctx, "researcher ledger update failed",
			"researcherID", researcherID,
			"column", column,
			"error", err,
		)
		audit.LogLedgerUpdateFailed(auditCtx, "researcher", researcherID, column, err.Error())
	}
}

func (e *Engine) incrementProgram(
	ctx context.Context,
	auditCtx audit.Context,
	program *models.Program,
	column string,
	amount int,
) {
	err := e.db.WithContext(ctx).Model(&models.Program{}).
		Where("id = ?", program.ID).
		UpdateColumn(column, gorm.Expr(column+" + ?", amount)).Error
	if err != nil {
		logger.Logger.ErrorContext(ctx, "program ledger update failed",
			"programID", program.ID.String(),
			"column", column,
			"error", err,
		)
		audit.LogLedgerUpdateFailed(auditCtx, "program", program.ID.String(), column, err.Error())
	}
}
