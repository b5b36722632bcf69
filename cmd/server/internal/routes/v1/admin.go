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

// AdminListSubmissions lists every submission on the platform, optionally
// filtered by status or program.
func (h *Handler) AdminListSubmissions(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "AdminListSubmissions")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String("actor.id", actor.ID.String()))

	query := db.Model(&models.Submission{})

	if raw := c.QueryParam("status"); raw != "" {
		status, ok := types.ParseSubmissionStatus(raw)
		if !ok {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "unknown status filter")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("status", "unknown submission status"),
			)
		}

		query = query.Where("status = ?", status)
	}

	if programID := c.QueryParam("program_id"); programID != "" {
		query = query.Where("program_id = ?", programID)
	}

	var submissions []models.Submission
	err = query.Order("created_at DESC, id DESC").Find(&submissions).Error
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
