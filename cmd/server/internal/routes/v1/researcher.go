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

// Me returns the caller's reputation ledger.
func (h *Handler) Me(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Me")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String("actor.id", actor.ID.String()))

	researcher, err := models.ByID[models.Researcher](ctx, db, actor.ID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch researcher")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched ledger")
	return c.JSON(http.StatusOK, types.ResearcherLedgerResponse{
		ID:               researcher.ID.String(),
		Username:         researcher.Name,
		Email:            researcher.Email,
		ReputationScore:  int64(researcher.ReputationScore),
		ReportsSubmitted: int64(researcher.ReportsSubmitted),
		ReportsAccepted:  int64(researcher.ReportsAccepted),
		ReportsRejected:  int64(researcher.ReportsRejected),
		DuplicateReports: int64(researcher.DuplicateReports),
		BountiesEarned:   researcher.BountiesEarned,
	})
}

// MySubmissions lists the caller's own reports, newest first.
func (h *Handler) MySubmissions(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MySubmissions")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String("actor.id", actor.ID.String()))

	var submissions []models.Submission
	err = db.Where("researcher_id = ?", actor.ID).
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

// Researchers with a score at or below this never make the leaderboard.
const leaderboardMinScore = 10

// TopResearchers returns the reputation leaderboard, highest score first.
// Visible to any authenticated actor.
func (h *Handler) TopResearchers(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "TopResearchers")
	defer span.End()

	db := h.DB.WithContext(ctx)

	var researchers []models.Researcher
	err := db.Where("reputation_score > ?", leaderboardMinScore).
		Order("reputation_score DESC, id ASC").
		Find(&researchers).Error
	if err != nil {
		span.SetStatus(codes.Error, "failed to list researchers")
		span.RecordError(err)
		return response.InternalServerError
	}

	ranks := make([]types.ResearcherRankResponse, 0, len(researchers))
	for i := range researchers {
		ranks = append(ranks, types.ResearcherRankResponse{
			Username:        researchers[i].Name,
			Email:           researchers[i].Email,
			ReputationScore: int64(researchers[i].ReputationScore),
		})
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed leaderboard")
	return c.JSON(http.StatusOK, ranks)
}
