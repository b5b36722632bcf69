package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/response"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

func (h *Handler) AddMessage(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "AddMessage")
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

	var rdata types.MessageCreate

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

	message, err := h.engine.AppendMessage(ctx, actor, program, submission, rdata.Message)
	if err != nil {
		return engineHTTPError(span, err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "appended message")
	return c.JSON(http.StatusOK, message.ToResponse())
}

func (h *Handler) ListMessages(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "ListMessages")
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

	messages, err := h.engine.Thread(ctx, actor, program, submission)
	if err != nil {
		return engineHTTPError(span, err)
	}

	responses := make([]types.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed messages")
	return c.JSON(http.StatusOK, responses)
}
