package v1

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	srverr "github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/error"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/response"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

// Pulls the resolved actor off the request context. Failure here means a
// wiring bug, not a client error.
func actorFromContext(c echo.Context, span trace.Span) (types.Actor, error) {
	actor, ok := c.Get("actor").(types.Actor)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("actor: %s", srverr.ErrTypeAssertMismatch))
		return types.Actor{}, response.InternalServerError
	}

	return actor, nil
}

func programFromContext(c echo.Context, span trace.Span) (*models.Program, error) {
	program, ok := c.Get("program").(*models.Program)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("program: %s", srverr.ErrTypeAssertMismatch))
		return nil, response.InternalServerError
	}

	return program, nil
}

func submissionFromContext(c echo.Context, span trace.Span) (*models.Submission, error) {
	submission, ok := c.Get("submission").(*models.Submission)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("submission: %s", srverr.ErrTypeAssertMismatch))
		return nil, response.InternalServerError
	}

	return submission, nil
}
