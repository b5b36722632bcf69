package v1

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/lifecycle"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/response"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/audit"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/upload"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/validator"
)

// Maps lifecycle errors onto HTTP errors. Authorization failures surface as
// not found so callers cannot probe for submission existence.
func engineHTTPError(span trace.Span, err error) error {
	var validationErr *lifecycle.ValidationError

	switch {
	case errors.As(err, &validationErr):
		span.RecordError(err)
		span.SetStatus(codes.Ok, "validation error")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.FieldError(validationErr.Field, validationErr.Reason),
		)
	case errors.Is(err, lifecycle.ErrNotAuthorized):
		span.RecordError(err)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	case errors.Is(err, lifecycle.ErrProgramNotActive):
		span.RecordError(err)
		span.SetStatus(codes.Ok, "program not active")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("program is not accepting reports"),
		)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "lifecycle operation failed")
		return response.InternalServerError
	}
}

// Decodes and stores inline evidence uploads, returning the stored file
// records for the submission row.
func (h *Handler) storeEvidence(
	ctx context.Context,
	auditCtx audit.Context,
	files []types.EvidenceUpload,
) ([]models.EvidenceFile, error) {
	ctx, span := tracer.Start(ctx, "storeEvidence", trace.WithAttributes(
		attribute.Int("files", len(files)),
	))
	defer span.End()

	stored := make([]models.EvidenceFile, 0, len(files))
	for _, file := range files {
		span.AddEvent("validating evidence is within size limit")
		if !validator.ValidateEvidenceSize(len(file.Data)) {
			span.SetStatus(codes.Ok, "evidence file was too large")
			span.RecordError(nil)
			return nil, echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("files", "each file must be <= 8mb"),
			)
		}

		span.AddEvent("decoding evidence base64")
		data, err := base64.StdEncoding.DecodeString(file.Data)
		if err != nil {
			span.SetStatus(codes.Ok, "failed to decode evidence")
			span.RecordError(err)
			return nil, echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("files", "must be valid base64"),
			)
		}

		span.AddEvent("uploading evidence")
		objectName, err := upload.Hashed(
			ctx,
			h.evidenceUploader,
			bytes.NewReader(data),
			int64(len(data)),
		)
		if err != nil {
			span.SetStatus(codes.Error, "failed to upload evidence")
			span.RecordError(err)
			return nil, response.InternalServerError
		}

		bucket, err := h.evidenceUploader.StoreIdentifier(ctx)
		if err != nil {
			span.SetStatus(codes.Error, "failed to get store identifier")
			span.RecordError(err)
			return nil, response.InternalServerError
		}

		audit.LogFileStored(auditCtx, bucket, objectName, file.FileName, int64(len(data)))

		stored = append(stored, models.EvidenceFile{
			FileName:   file.FileName,
			ObjectName: objectName,
			FileSize:   int64(len(data)),
		})
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "stored evidence")
	return stored, nil
}

func (h *Handler) submissionResponse(
	ctx context.Context,
	submission *models.Submission,
	messages []models.SubmissionMessage,
) (*types.SubmissionResponse, error) {
	files, err := submission.GetEvidenceURLs(ctx, h.evidenceUploader, h.config.EvidenceReadURLTTL())
	if err != nil {
		return nil, err
	}

	messageResponses := make([]types.MessageResponse, 0, len(messages))
	for i := range messages {
		messageResponses = append(messageResponses, messages[i].ToResponse())
	}

	return &types.SubmissionResponse{
		ID:            submission.ID.String(),
		ProgramID:     submission.ProgramID.String(),
		ResearcherID:  submission.ResearcherID.String(),
		Title:         submission.Title,
		Description:   submission.Description,
		Target:        submission.Target,
		Category:      submission.Category,
		VulnerableURL: submission.VulnerableURL,
		Severity:      submission.Severity,
		Status:        submission.Status,
		Reward:        models.PtrFromNull(submission.Reward),
		Points:        submission.Points,
		Collaborators: []string(submission.Collaborators),
		Files:         files,
		Messages:      messageResponses,
		SubmittedAt:   submission.CreatedAt,
		ResolvedAt:    models.PtrFromNull(submission.ResolvedAt),
	}, nil
}

func (h *Handler) CreateSubmission(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "CreateSubmission")
	defer span.End()

	span.AddEvent("received submission request")

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	program, err := programFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("program.id", program.ID.String()),
	)

	var rdata types.SubmissionCreate

	span.AddEvent("parsing request body")
	err = c.Bind(&rdata)
	if err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("failed to parse request data"),
		)
	}

	span.AddEvent("validating request body")
	err = c.Validate(rdata)
	if err != nil {
		span.SetStatus(codes.Ok, "failed to validate request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	programID := program.ID.String()
	auditCtx := audit.Context{
		ProgramID: &programID,
		ActorKind: string(actor.Kind),
		ActorID:   actor.ID.String(),
	}

	evidence, err := h.storeEvidence(ctx, auditCtx, rdata.Files)
	if err != nil {
		return err
	}

	span.AddEvent("filing submission")
	submission, err := h.engine.CreateSubmission(ctx, actor, program, &rdata, evidence)
	if err != nil {
		return engineHTTPError(span, err)
	}

	span.SetAttributes(attribute.String("submission.id", submission.ID.String()))

	resp, err := h.submissionResponse(ctx, submission, nil)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build response")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "created submission")
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetSubmission(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "GetSubmission")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	submission, err := submissionFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("submission.id", submission.ID.String()),
	)

	program, err := models.ByID[models.Program](ctx, db, submission.ProgramID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch program for submission")
		span.RecordError(err)
		return response.InternalServerError
	}

	if !lifecycle.CanParticipate(actor, program, submission) {
		span.AddEvent("actor may not view submission")
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	}

	messages, err := h.engine.Thread(ctx, actor, program, submission)
	if err != nil {
		return engineHTTPError(span, err)
	}

	resp, err := h.submissionResponse(ctx, submission, messages)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build response")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched submission")
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateSubmission(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "UpdateSubmission")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	submission, err := submissionFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("submission.id", submission.ID.String()),
	)

	var rdata types.SubmissionUpdate

	span.AddEvent("parsing request body")
	err = c.Bind(&rdata)
	if err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("failed to parse request data"),
		)
	}

	span.AddEvent("validating request body")
	err = c.Validate(rdata)
	if err != nil {
		span.SetStatus(codes.Ok, "failed to validate request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	program, err := models.ByID[models.Program](ctx, db, submission.ProgramID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch program for submission")
		span.RecordError(err)
		return response.InternalServerError
	}

	if !lifecycle.CanParticipate(actor, program, submission) {
		span.AddEvent("actor may not view submission")
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	}

	update := lifecycle.Update{
		Title:       rdata.Title,
		Description: rdata.Description,
		Target:      rdata.Target,
		Category:    rdata.Category,
		Reward:      rdata.Reward,
	}

	if rdata.Severity.Defined && rdata.Severity.Value != nil {
		severity, ok := types.ParseSeverity(*rdata.Severity.Value)
		if !ok {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "unknown severity")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("severity", "must be one of P1..P5"),
			)
		}
		update.Severity = types.NewFromVal(severity)
	}

	if rdata.Status.Defined && rdata.Status.Value != nil {
		status, ok := types.ParseSubmissionStatus(*rdata.Status.Value)
		if !ok {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "unknown status")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("status", "unknown submission status"),
			)
		}
		update.Status = types.NewFromVal(status)
	}

	if rdata.Files.Defined && rdata.Files.Value != nil {
		submissionID := submission.ID.String()
		programID := program.ID.String()
		auditCtx := audit.Context{
			ProgramID:    &programID,
			SubmissionID: &submissionID,
			ActorKind:    string(actor.Kind),
			ActorID:      actor.ID.String(),
		}

		evidence, err := h.storeEvidence(ctx, auditCtx, *rdata.Files.Value)
		if err != nil {
			return err
		}

		update.Evidence = types.NewFromVal(evidence)
	}

	span.AddEvent("applying update")
	updated, err := h.engine.UpdateSubmission(ctx, actor, program, submission, update)
	if err != nil {
		return engineHTTPError(span, err)
	}

	resp, err := h.submissionResponse(ctx, updated, nil)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build response")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "updated submission")
	return c.JSON(http.StatusOK, resp)
}

// ListProgramSubmissions lists every report filed against the program, newest
// first. Restricted to the owning organization and admins; anyone else sees
// the same not-found an unknown program would produce.
func (h *Handler) ListProgramSubmissions(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "ListProgramSubmissions")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	program, err := programFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("program.id", program.ID.String()),
	)

	if !lifecycle.CanAdminister(actor, program) {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	}

	var submissions []models.Submission
	err = db.Where("program_id = ?", program.ID).
		Order("created_at DESC, id DESC").
		Find(&submissions).Error
	if err != nil {
		span.SetStatus(codes.Error, "failed to list submissions")
		span.RecordError(err)
		return response.InternalServerError
	}

	responses := make([]types.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp, err := h.submissionResponse(ctx, &submissions[i], nil)
		if err != nil {
			span.SetStatus(codes.Error, "failed to build response")
			span.RecordError(err)
			return response.InternalServerError
		}

		responses = append(responses, *resp)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed submissions")
	return c.JSON(http.StatusOK, responses)
}
