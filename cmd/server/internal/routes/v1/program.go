package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/lifecycle"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/response"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

func programStatus(p *models.Program) string {
	if p.IsActive() {
		return "active"
	}

	return "inactive"
}

func (h *Handler) programResponse(ctx context.Context, program *models.Program) (*types.ProgramResponse, error) {
	db := h.DB.WithContext(ctx)

	var organization models.Organization
	err := db.First(&organization, program.OrganizationID).Error
	if err != nil {
		return nil, err
	}

	var duplicates int64
	err = db.Model(&models.Submission{}).
		Where("program_id = ? AND status = ?", program.ID, types.SubmissionStatusDuplicated).
		Count(&duplicates).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ProgramResponse{
		ID:               program.ID.String(),
		OrganizationID:   program.OrganizationID.String(),
		OrganizationName: organization.Name,
		Name:             program.Name,
		Description:      program.Description,
		Type:             program.Type,
		Visibility:       program.Visibility,
		Scope:            []string(program.Scope),
		OutOfScope:       []string(program.OutOfScope),
		ReportCount:      int64(program.ReportCount),
		ResolvedReports:  int64(program.ResolvedReports),
		DuplicateReports: duplicates,
		Status:           programStatus(program),
	}

	// Disclosure programs do not pay, so the all-zero band set stays hidden.
	if program.Type == types.ProgramTypeBugBounty {
		rewardRange := program.RewardRange
		resp.RewardRange = &rewardRange
	}

	return resp, nil
}

func (h *Handler) CreateProgram(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "CreateProgram")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String("actor.id", actor.ID.String()))

	var rdata types.ProgramCreate

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

	if rdata.Visibility == "" {
		rdata.Visibility = types.ProgramVisibilityPublic
	}

	program := models.Program{
		Name:           rdata.Name,
		Description:    rdata.Description,
		OrganizationID: actor.ID,
		Type:           rdata.Type,
		Visibility:     rdata.Visibility,
		Scope:          datatypes.NewJSONSlice(rdata.Scope),
		OutOfScope:     datatypes.NewJSONSlice(rdata.OutOfScope),
		Active:         models.NewNullFromData(true),
	}

	if rdata.RewardRange != nil {
		if rdata.Type != types.ProgramTypeBugBounty {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "reward range on non bounty program")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("reward_range", "only bug_bounty programs carry a reward range"),
			)
		}

		program.RewardRange = *rdata.RewardRange
	}

	span.AddEvent("creating program")
	err = db.Create(&program).Error
	if err != nil {
		span.SetStatus(codes.Error, "failed to create program")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.SetAttributes(attribute.String("program.id", program.ID.String()))

	resp, err := h.programResponse(ctx, &program)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build response")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "created program")
	return c.JSON(http.StatusOK, resp)
}

// ListPrograms returns the programs visible to the caller as summaries.
// Private programs the caller is not invited to are filtered out rather
// than erroring, so the listing never leaks their existence.
func (h *Handler) ListPrograms(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "ListPrograms")
	defer span.End()

	db := h.DB.WithContext(ctx)

	actor, err := actorFromContext(c, span)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String("actor.id", actor.ID.String()))

	var programs []models.Program
	err = db.Order("created_at ASC, id ASC").Find(&programs).Error
	if err != nil {
		span.SetStatus(codes.Error, "failed to list programs")
		span.RecordError(err)
		return response.InternalServerError
	}

	summaries := make([]types.ProgramSummary, 0, len(programs))
	for i := range programs {
		program := &programs[i]
		if !lifecycle.CanView(actor, program) {
			continue
		}

		summary := types.ProgramSummary{
			ID:          program.ID.String(),
			Name:        program.Name,
			Description: program.Description,
		}

		if program.Type == types.ProgramTypeBugBounty {
			summary.MinReward = program.RewardRange.P5.Min
			summary.MaxReward = program.RewardRange.P1.Max
		}

		summaries = append(summaries, summary)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed programs")
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) GetProgram(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "GetProgram")
	defer span.End()

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

	if !lifecycle.CanView(actor, program) {
		span.AddEvent("actor may not view program")
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	}

	resp, err := h.programResponse(ctx, program)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build response")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched program")
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateProgram(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "UpdateProgram")
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
		span.AddEvent("actor may not administer program")
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	}

	var rdata types.ProgramUpdate

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

	if rdata.Name.Defined && rdata.Name.Value != nil {
		program.Name = *rdata.Name.Value
	}

	if rdata.Description.Defined && rdata.Description.Value != nil {
		program.Description = *rdata.Description.Value
	}

	if rdata.Visibility.Defined && rdata.Visibility.Value != nil {
		switch types.ProgramVisibility(*rdata.Visibility.Value) {
		case types.ProgramVisibilityPublic, types.ProgramVisibilityPrivate:
			program.Visibility = types.ProgramVisibility(*rdata.Visibility.Value)
		default:
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "unknown visibility")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("visibility", "must be public or private"),
			)
		}
	}

	if rdata.Scope.Defined && rdata.Scope.Value != nil {
		program.Scope = datatypes.NewJSONSlice(*rdata.Scope.Value)
	}

	if rdata.OutOfScope.Defined && rdata.OutOfScope.Value != nil {
		program.OutOfScope = datatypes.NewJSONSlice(*rdata.OutOfScope.Value)
	}

	if rdata.RewardRange.Defined && rdata.RewardRange.Value != nil {
		if program.Type != types.ProgramTypeBugBounty {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "reward range on non bounty program")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("reward_range", "only bug_bounty programs carry a reward range"),
			)
		}

		program.RewardRange = *rdata.RewardRange.Value
	}

	if rdata.Status.Defined && rdata.Status.Value != nil {
		switch *rdata.Status.Value {
		case "active":
			program.Active = models.NewNullFromData(true)
		case "inactive":
			program.Active = models.NewNullFromData(false)
		default:
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "unknown program status")
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.FieldError("status", "must be active or inactive"),
			)
		}
	}

	span.AddEvent("saving program")
	err = db.Save(program).Error
	if err != nil {
		span.SetStatus(codes.Error, "failed to save program")
		span.RecordError(err)
		return response.InternalServerError
	}

	resp, err := h.programResponse(ctx, program)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build response")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "updated program")
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) InviteResearcher(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "InviteResearcher")
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
		span.AddEvent("actor may not administer program")
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "not authorized")
		return response.NotFoundError
	}

	var rdata types.ProgramInvite

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

	if program.Visibility != types.ProgramVisibilityPrivate {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "invite on public program")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("only private programs carry an invite list"),
		)
	}

	if program.Invited(rdata.Email) {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "duplicate invite")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.FieldError("email", "researcher is already invited"),
		)
	}

	program.InvitedEmails = append(program.InvitedEmails, strings.ToLower(rdata.Email))

	span.AddEvent("saving invite list")
	err = db.Model(program).
		UpdateColumn("invited_emails", program.InvitedEmails).Error
	if err != nil {
		span.SetStatus(codes.Error, "failed to save invite list")
		span.RecordError(err)
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "invited researcher")
	return c.JSON(http.StatusOK, map[string]string{"status": "invited"})
}
